package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	SesionCajaID string `form:"sesion_caja_id" validate:"omitempty,uuid"`
	Estado       string `form:"estado"         validate:"omitempty,oneof=pendiente confirmada cancelada all"`
	Desde        string `form:"desde"` // YYYY-MM-DD
	Hasta        string `form:"hasta"` // YYYY-MM-DD, inclusive
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	SKU            string          `json:"sku"             validate:"required"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

type CrearOrdenRequest struct {
	SesionCajaID string             `json:"sesion_caja_id" validate:"required,uuid"`
	ClienteRef   string             `json:"cliente_ref"    validate:"max=120"`
	PcRef        string             `json:"pc_ref"         validate:"max=40"`
	Items        []ItemVentaRequest `json:"items"          validate:"required,min=1,dive"`
}

type ConfirmarOrdenRequest struct {
	// MetodoPago defaults to efectivo when empty.
	MetodoPago string `json:"metodo_pago" validate:"omitempty,oneof=efectivo yape plin transferencia tarjeta interbank bbva bcp scotiabank"`
}

type CancelarOrdenRequest struct {
	Motivo string `json:"motivo" validate:"max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CrearOrdenResponse struct {
	VentaID string          `json:"venta_id"`
	Numero  int             `json:"numero"`
	Total   decimal.Decimal `json:"total"`
}

type ItemVentaResponse struct {
	SKU            string          `json:"sku"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID           string              `json:"id"`
	Numero       int                 `json:"numero"`
	SesionCajaID string              `json:"sesion_caja_id"`
	ClienteRef   string              `json:"cliente_ref"`
	PcRef        string              `json:"pc_ref"`
	Items        []ItemVentaResponse `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	Estado       string              `json:"estado"`
	MetodoPago   *string             `json:"metodo_pago"`
	UsuarioEmail string              `json:"usuario_email"`
	Motivo       *string             `json:"motivo,omitempty"`
	CreatedAt    string              `json:"created_at"`
	ConfirmedAt  *string             `json:"confirmed_at,omitempty"`
	CancelledAt  *string             `json:"cancelled_at,omitempty"`
}
