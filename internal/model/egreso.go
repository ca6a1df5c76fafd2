package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipos de egreso.
const (
	EgresoGastoGeneral     = "gasto_general"
	EgresoCompraMercaderia = "compra_mercaderia"
	EgresoRetiroEfectivo   = "retiro_efectivo"
)

// Egreso is money leaving the drawer during a session.
type Egreso struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo         string          `gorm:"type:varchar(30);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion  string          `gorm:"not null"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	UsuarioEmail string          `gorm:"not null"`
	CreatedAt    time.Time
}

func (e *Egreso) BeforeCreate(_ *gorm.DB) error {
	assignID(&e.ID)
	return nil
}
