package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearDeudaRequest struct {
	SesionCajaID     string          `json:"sesion_caja_id"    validate:"required,uuid"`
	ClienteRef       string          `json:"cliente_ref"       validate:"required,max=120"`
	Monto            decimal.Decimal `json:"monto"             validate:"required,gt=0"`
	FechaVencimiento *string         `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
	Notas            string          `json:"notas"             validate:"max=500"`
}

type PagarDeudaRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	// Metodo defaults to efectivo when empty.
	Metodo string `json:"metodo" validate:"omitempty,oneof=efectivo yape plin transferencia tarjeta interbank bbva bcp scotiabank"`
	Notas  string `json:"notas"  validate:"max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CrearDeudaResponse struct {
	DeudaID string          `json:"deuda_id"`
	Monto   decimal.Decimal `json:"monto"`
}

type DeudaResponse struct {
	ID               string          `json:"id"`
	ClienteRef       string          `json:"cliente_ref"`
	MontoOriginal    decimal.Decimal `json:"monto_original"`
	Saldo            decimal.Decimal `json:"saldo"`
	FechaVencimiento *string         `json:"fecha_vencimiento"`
	Notas            string          `json:"notas"`
	SesionCajaID     string          `json:"sesion_caja_id"`
	UsuarioEmail     string          `json:"usuario_email"`
	CreatedAt        string          `json:"created_at"`
	// Vencimiento is only set on pending debts: vencida | por_vencer | normal.
	Vencimiento string `json:"vencimiento,omitempty"`
}

type PagoDeudaResponse struct {
	ID            string          `json:"id"`
	DeudaID       string          `json:"deuda_id"`
	SesionCajaID  string          `json:"sesion_caja_id"`
	Monto         decimal.Decimal `json:"monto"`
	Metodo        string          `json:"metodo"`
	Notas         string          `json:"notas"`
	SaldoRestante decimal.Decimal `json:"saldo_restante"`
	UsuarioEmail  string          `json:"usuario_email"`
	CreatedAt     string          `json:"created_at"`
}

type HistorialDeudasResponse struct {
	Deudas []DeudaResponse     `json:"deudas"`
	Pagos  []PagoDeudaResponse `json:"pagos"`
}
