package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Origen de un pago manual. Sólo los registros manuales pueden eliminarse.
const (
	OrigenManual     = "manual"
	OrigenAutomatico = "automatico"
)

// PagoManual is an ad-hoc payment journal entry (cash or wallet transfer)
// not tied to a sales order.
type PagoManual struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Fecha        time.Time       `gorm:"not null;index"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ClienteRef   string
	Metodo       string `gorm:"type:varchar(20);not null"`
	Codigo       string `gorm:"index"`
	Referencia   string
	Nota         string
	Origen       string    `gorm:"type:varchar(20);not null;default:'manual'"`
	UsuarioID    uuid.UUID `gorm:"type:uuid;not null"`
	UsuarioEmail string    `gorm:"not null"`
	CreatedAt    time.Time
}

func (PagoManual) TableName() string { return "pagos_manuales" }

func (p *PagoManual) BeforeCreate(_ *gorm.DB) error {
	assignID(&p.ID)
	if p.Fecha.IsZero() {
		p.Fecha = time.Now()
	}
	return nil
}
