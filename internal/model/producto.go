package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is an inventory item sold at the counter.
// StockActual is only mutated through movimientos_stock (see InventarioService).
type Producto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SKU          string          `gorm:"column:sku;uniqueIndex;not null"`
	CodigoBarras *string         `gorm:"index"`
	Nombre       string          `gorm:"index;not null"`
	Categoria    string          `gorm:"not null;default:'General'"`
	PrecioCosto  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual  int             `gorm:"not null;default:0"`
	StockMinimo  int             `gorm:"not null;default:0"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Producto) BeforeCreate(_ *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// StockBajo reports whether an active product reached its minimum level.
func (p *Producto) StockBajo() bool {
	return p.Activo && p.StockActual <= p.StockMinimo
}
