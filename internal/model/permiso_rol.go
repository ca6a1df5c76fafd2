package model

import "time"

// PermisoRol is an administrator override of the built-in role policy.
// Permitido=false revokes a direct grant; true adds one.
type PermisoRol struct {
	Rol          string `gorm:"type:varchar(20);primaryKey"`
	Objeto       string `gorm:"type:varchar(30);primaryKey"`
	Accion       string `gorm:"type:varchar(30);primaryKey"`
	Permitido    bool   `gorm:"not null"`
	UsuarioEmail string `gorm:"not null"`
	UpdatedAt    time.Time
}

func (PermisoRol) TableName() string { return "permisos_rol" }
