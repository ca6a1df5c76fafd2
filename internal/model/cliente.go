package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente is a registered customer, keyed by DNI. Orders and debts still
// carry a free-text cliente_ref; registered customers let the counter pick
// one from a list.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	DNI       string    `gorm:"column:dni;type:varchar(12);uniqueIndex;not null"`
	Nombres   string    `gorm:"not null"`
	Alias     string
	Email     string
	Celular   string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cliente) BeforeCreate(_ *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
