package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles de usuario.
const (
	RolCajero        = "cajero"
	RolSupervisor    = "supervisor"
	RolAdministrador = "administrador"
)

// Usuario stores system users with role-based access.
// Email is the actor identifier carried on every ledger row.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(20);not null"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *Usuario) BeforeCreate(_ *gorm.DB) error {
	assignID(&u.ID)
	return nil
}
