package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Vencimiento labels of a pending debt. They are derived on read and never
// stored.
const (
	VencimientoVencida   = "vencida"
	VencimientoPorVencer = "por_vencer"
	VencimientoNormal    = "normal"
)

// Deuda is store credit granted to a customer. 0 <= Saldo <= MontoOriginal.
type Deuda struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteRef       string          `gorm:"index;not null"`
	MontoOriginal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Saldo            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FechaVencimiento *time.Time
	Notas            string
	SesionCajaID     uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID        uuid.UUID `gorm:"type:uuid;not null"`
	UsuarioEmail     string    `gorm:"not null"`
	CreatedAt        time.Time
}

func (d *Deuda) BeforeCreate(_ *gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// PagoDeuda is an immutable repayment against a Deuda.
type PagoDeuda struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DeudaID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Metodo       string          `gorm:"type:varchar(20);not null"`
	Notas        string
	UsuarioID    uuid.UUID `gorm:"type:uuid;not null"`
	UsuarioEmail string    `gorm:"not null"`
	CreatedAt    time.Time
}

func (PagoDeuda) TableName() string { return "pagos_deuda" }

func (p *PagoDeuda) BeforeCreate(_ *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
