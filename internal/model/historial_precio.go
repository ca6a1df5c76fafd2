package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HistorialPrecio registra cada cambio de precio de un producto.
// Los registros son inmutables: nunca se eliminan ni modifican.
type HistorialPrecio struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductoID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostoAntes   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoDespues decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentaAntes   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentaDespues decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	Motivo       string
	CreatedAt    time.Time
}

func (h *HistorialPrecio) BeforeCreate(_ *gorm.DB) error {
	assignID(&h.ID)
	return nil
}
