package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados de una orden de venta.
const (
	VentaPendiente  = "pendiente"
	VentaConfirmada = "confirmada"
	VentaCancelada  = "cancelada"
)

// Métodos de pago. The bank channels are direct deposits to the store's
// accounts; only Yape and Plin count as digital sales at close-out.
const (
	MetodoEfectivo      = "efectivo"
	MetodoYape          = "yape"
	MetodoPlin          = "plin"
	MetodoTransferencia = "transferencia"
	MetodoTarjeta       = "tarjeta"
	MetodoInterbank     = "interbank"
	MetodoBBVA          = "bbva"
	MetodoBCP           = "bcp"
	MetodoScotiabank    = "scotiabank"
)

// MetodosPago lists every accepted payment method.
var MetodosPago = []string{
	MetodoEfectivo, MetodoYape, MetodoPlin, MetodoTransferencia, MetodoTarjeta,
	MetodoInterbank, MetodoBBVA, MetodoBCP, MetodoScotiabank,
}

// EsDigital reports whether a payment method settles through a wallet app
// instead of the drawer.
func EsDigital(metodo string) bool {
	return metodo == MetodoYape || metodo == MetodoPlin
}

// Venta is a sales order. Stock is reserved on creation; Pendiente moves to
// Confirmada or Cancelada and never back.
type Venta struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Numero       int             `gorm:"uniqueIndex;not null"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteRef   string
	PcRef        string
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	MetodoPago   *string         `gorm:"type:varchar(20)"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	UsuarioEmail string          `gorm:"not null"`
	Motivo       *string
	CreatedAt    time.Time
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time

	Items []VentaItem `gorm:"foreignKey:VentaID"`
}

func (v *Venta) BeforeCreate(_ *gorm.DB) error {
	assignID(&v.ID)
	return nil
}

// VentaItem is one line of a Venta. Prices are snapshotted at order time.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	SKU            string          `gorm:"column:sku;not null"`
	Nombre         string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoUnitario  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (i *VentaItem) BeforeCreate(_ *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
