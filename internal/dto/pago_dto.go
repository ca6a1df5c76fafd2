package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarPagoRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	Fecha        *string         `json:"fecha"          validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	ClienteRef   string          `json:"cliente_ref"    validate:"max=120"`
	Metodo       string          `json:"metodo"         validate:"required,oneof=efectivo yape plin transferencia tarjeta interbank bbva bcp scotiabank"`
	Codigo       string          `json:"codigo"         validate:"max=60"`
	Referencia   string          `json:"referencia"     validate:"max=120"`
	Nota         string          `json:"nota"           validate:"max=500"`
}

// NotificacionPagoRequest is posted by the wallet notification relay.
type NotificacionPagoRequest struct {
	Metodo     string          `json:"metodo"      validate:"required,oneof=yape plin"`
	Monto      decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	ClienteRef string          `json:"cliente_ref" validate:"max=120"`
	Codigo     string          `json:"codigo"      validate:"required,max=60"`
	Fecha      *string         `json:"fecha"       validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// RangoFilter is bound from ?desde=YYYY-MM-DD&hasta=YYYY-MM-DD.
type RangoFilter struct {
	SesionCajaID string `form:"sesion_caja_id" validate:"omitempty,uuid"`
	Desde        string `form:"desde"          validate:"omitempty,datetime=2006-01-02"`
	Hasta        string `form:"hasta"          validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoManualResponse struct {
	ID           string          `json:"id"`
	SesionCajaID string          `json:"sesion_caja_id"`
	Fecha        string          `json:"fecha"`
	Monto        decimal.Decimal `json:"monto"`
	ClienteRef   string          `json:"cliente_ref"`
	Metodo       string          `json:"metodo"`
	Codigo       string          `json:"codigo"`
	Referencia   string          `json:"referencia"`
	Nota         string          `json:"nota"`
	Origen       string          `json:"origen"`
	UsuarioEmail string          `json:"usuario_email"`
}

type PagoManualListResponse struct {
	Data      []PagoManualResponse       `json:"data"`
	Total     decimal.Decimal            `json:"total"`
	PorMetodo map[string]decimal.Decimal `json:"por_metodo"`
}
