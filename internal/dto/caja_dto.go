package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCajaRequest struct {
	// MontoPOS is the amount reported by the external POS/billing system.
	MontoPOS     decimal.Decimal `json:"monto_pos"     validate:"min=0"`
	MontoContado decimal.Decimal `json:"monto_contado" validate:"min=0"`
	Notas        string          `json:"notas"         validate:"max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionCajaResponse struct {
	ID            string           `json:"id"`
	UsuarioEmail  string           `json:"usuario_email"`
	MontoInicial  decimal.Decimal  `json:"monto_inicial"`
	Estado        string           `json:"estado"`
	OpenedAt      string           `json:"opened_at"`
	ClosedAt      *string          `json:"closed_at"`
	CerradoPor    *string          `json:"cerrado_por"`
	MontoPOS      *decimal.Decimal `json:"monto_pos"`
	MontoContado  *decimal.Decimal `json:"monto_contado"`
	MontoEsperado *decimal.Decimal `json:"monto_esperado"`
	Diferencia    *decimal.Decimal `json:"diferencia"`
	Clasificacion *string          `json:"clasificacion"`
	Notas         *string          `json:"notas"`
}

// ResumenCierreResponse aggregates every ledger of a session for close-out.
type ResumenCierreResponse struct {
	SesionCajaID        string          `json:"sesion_caja_id"`
	MontoInicial        decimal.Decimal `json:"monto_inicial"`
	TotalVentasApp      decimal.Decimal `json:"total_ventas_app"`
	QVentas             int64           `json:"q_ventas"`
	CobrosDeudaEfectivo decimal.Decimal `json:"cobros_deuda_efectivo"`
	VentasDigitales     decimal.Decimal `json:"ventas_digitales"`
	TotalDeudasNuevas   decimal.Decimal `json:"total_deudas_nuevas"`
	TotalGastos         decimal.Decimal `json:"total_gastos"`
}

type CierreResponse struct {
	SesionCajaID  string                `json:"sesion_caja_id"`
	Resumen       ResumenCierreResponse `json:"resumen"`
	MontoPOS      decimal.Decimal       `json:"monto_pos"`
	MontoContado  decimal.Decimal       `json:"monto_contado"`
	MontoEsperado decimal.Decimal       `json:"monto_esperado"`
	Diferencia    decimal.Decimal       `json:"diferencia"`
	Clasificacion string                `json:"clasificacion"`
	ClosedAt      string                `json:"closed_at"`
}

type SesionCajaListResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
