package dto

import "github.com/shopspring/decimal"

// ProductoVendidoResponse is one row of the per-session product summary.
type ProductoVendidoResponse struct {
	SKU      string          `json:"sku"`
	Nombre   string          `json:"nombre"`
	Cantidad int64           `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
}

type FlujoDineroResponse struct {
	Desde             string          `json:"desde"`
	Hasta             string          `json:"hasta"`
	IngresosPorVentas decimal.Decimal `json:"ingresos_por_ventas"`
	IngresosPorDeudas decimal.Decimal `json:"ingresos_por_deudas"`
	IngresosManuales  decimal.Decimal `json:"ingresos_manuales"`
	TotalEgresos      decimal.Decimal `json:"total_egresos"`
	CreditosOtorgados decimal.Decimal `json:"creditos_otorgados"`
	FlujoNeto         decimal.Decimal `json:"flujo_neto"`
}

type RentabilidadResponse struct {
	Desde                string          `json:"desde"`
	Hasta                string          `json:"hasta"`
	TotalVentasBrutas    decimal.Decimal `json:"total_ventas_brutas"`
	TotalCostoMercaderia decimal.Decimal `json:"total_costo_mercaderia"`
	UtilidadBruta        decimal.Decimal `json:"utilidad_bruta"`
	TotalEgresos         decimal.Decimal `json:"total_egresos"`
	UtilidadNeta         decimal.Decimal `json:"utilidad_neta"`
}

// ─── Métricas de negocio ─────────────────────────────────────────────────────

type ProductoMetrica struct {
	SKU      string          `json:"sku"`
	Nombre   string          `json:"nombre"`
	Cantidad int64           `json:"cantidad"`
	Monto    decimal.Decimal `json:"monto"`
}

type CategoriaMetrica struct {
	Categoria string          `json:"categoria"`
	Cantidad  int64           `json:"cantidad"`
	Monto     decimal.Decimal `json:"monto"`
}

// HoraMetrica is the activity of one hour of the day (0-23), local time.
type HoraMetrica struct {
	Hora   int             `json:"hora"`
	Ventas int64           `json:"ventas"`
	Monto  decimal.Decimal `json:"monto"`
}

type MetricasBIResponse struct {
	Desde                string             `json:"desde"`
	Hasta                string             `json:"hasta"`
	TopProductosMonto    []ProductoMetrica  `json:"top_productos_monto"`
	TopProductosCantidad []ProductoMetrica  `json:"top_productos_cantidad"`
	VentasPorCategoria   []CategoriaMetrica `json:"ventas_por_categoria"`
	ActividadPorHora     []HoraMetrica      `json:"actividad_por_hora"`
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

// PuntoDiario is one day of the performance chart.
type PuntoDiario struct {
	Fecha   string          `json:"fecha"`
	Ventas  decimal.Decimal `json:"ventas"`
	Egresos decimal.Decimal `json:"egresos"`
}

type DashboardResponse struct {
	Desde       string               `json:"desde"`
	Hasta       string               `json:"hasta"`
	Cierres     []SesionCajaResponse `json:"cierres"`
	Rendimiento []PuntoDiario        `json:"rendimiento"`
}
