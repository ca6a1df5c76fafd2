package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MovimientoStockRequest struct {
	SKU      string `json:"sku"      validate:"required"`
	Cantidad int    `json:"cantidad" validate:"required"` // signed delta
	Tipo     string `json:"tipo"     validate:"required,oneof=ingreso ajuste_manual"`
	Motivo   string `json:"motivo"   validate:"max=255"`
	// Forzar allows an ajuste_manual to drive stock below zero (supervisor only).
	Forzar bool `json:"forzar"`
}

// MovimientoStockFilter is bound from query string of GET /v1/inventario/movimientos.
type MovimientoStockFilter struct {
	SKU          string `form:"sku"`
	Tipo         string `form:"tipo" validate:"omitempty,oneof=ingreso reserva_venta reversa_cancelacion ajuste_manual"`
	SesionCajaID string `form:"sesion_caja_id" validate:"omitempty,uuid"`
	Page         int    `form:"page,default=1"    validate:"min=1"`
	Limit        int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoStockResponse struct {
	ID            string  `json:"id"`
	SKU           string  `json:"sku"`
	Tipo          string  `json:"tipo"`
	Cantidad      int     `json:"cantidad"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	Motivo        string  `json:"motivo"`
	SesionCajaID  *string `json:"sesion_caja_id"`
	ReferenciaID  *string `json:"referencia_id"`
	CreatedAt     string  `json:"created_at"`
}

type MovimientoStockListResponse struct {
	Data  []MovimientoStockResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	SKU         string `json:"sku"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
}
