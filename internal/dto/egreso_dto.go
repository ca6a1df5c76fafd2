package dto

import "github.com/shopspring/decimal"

type RegistrarEgresoRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	Tipo         string          `json:"tipo"           validate:"required,oneof=gasto_general compra_mercaderia retiro_efectivo"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Descripcion  string          `json:"descripcion"    validate:"required,min=3,max=255"`
}

type EgresoResponse struct {
	ID           string          `json:"id"`
	SesionCajaID string          `json:"sesion_caja_id"`
	Tipo         string          `json:"tipo"`
	Monto        decimal.Decimal `json:"monto"`
	Descripcion  string          `json:"descripcion"`
	UsuarioEmail string          `json:"usuario_email"`
	CreatedAt    string          `json:"created_at"`
}

type EgresoListResponse struct {
	Data    []EgresoResponse           `json:"data"`
	Total   decimal.Decimal            `json:"total"`
	PorTipo map[string]decimal.Decimal `json:"por_tipo"`
}
