package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados de una sesión de caja. Una sesión cerrada nunca se reabre.
const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// Clasificación del cuadre al cierre.
const (
	CuadreCuadrada = "cuadrada"
	CuadreSobrante = "sobrante"
	CuadreFaltante = "faltante"
)

// SesionCaja represents the lifecycle of a cash register shift.
// At most one row may have Estado = "abierta" (uniq_sesion_abierta).
type SesionCaja struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioEmail  string          `gorm:"not null"`
	MontoInicial  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	OpenedAt      time.Time       `gorm:"not null"`
	ClosedAt      *time.Time
	CerradoPorID  *uuid.UUID `gorm:"type:uuid"`
	CerradoPor    *string
	MontoPOS      *decimal.Decimal `gorm:"column:monto_pos;type:decimal(12,2)"`
	MontoContado  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoEsperado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Diferencia = MontoContado - MontoEsperado (signed)
	Diferencia    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Clasificacion *string          `gorm:"type:varchar(20)"`
	Notas         *string
}

// TableName keeps the Spanish plural used by the SQL migrations.
func (SesionCaja) TableName() string { return "sesiones_caja" }

func (s *SesionCaja) BeforeCreate(_ *gorm.DB) error {
	assignID(&s.ID)
	if s.OpenedAt.IsZero() {
		s.OpenedAt = time.Now()
	}
	return nil
}

// Abierta reports whether the session still accepts money movements.
func (s *SesionCaja) Abierta() bool { return s.Estado == SesionAbierta }

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
