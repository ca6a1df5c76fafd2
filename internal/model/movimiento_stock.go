package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos de movimiento de stock.
const (
	MovIngreso            = "ingreso"
	MovReservaVenta       = "reserva_venta"
	MovReversaCancelacion = "reversa_cancelacion"
	MovAjusteManual       = "ajuste_manual"
)

// MovimientoStock registra cada cambio de stock en un producto.
// Append-only: stock_actual of a product is always the sum of its Cantidad.
type MovimientoStock struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductoID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	SKU           string     `gorm:"column:sku;not null;index"`
	SesionCajaID  *uuid.UUID `gorm:"type:uuid;index"`
	Tipo          string     `gorm:"type:varchar(30);not null"`
	Cantidad      int        `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int        `gorm:"not null"`
	StockNuevo    int        `gorm:"not null"`
	UsuarioID     uuid.UUID  `gorm:"type:uuid;not null"`
	Motivo        string
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"` // venta_id when the movement comes from an order
	CreatedAt     time.Time
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }

func (m *MovimientoStock) BeforeCreate(_ *gorm.DB) error {
	assignID(&m.ID)
	return nil
}
