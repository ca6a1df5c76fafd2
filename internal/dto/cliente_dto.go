package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarClienteRequest struct {
	DNI     string `json:"dni"     validate:"required,numeric,min=8,max=12"`
	Nombres string `json:"nombres" validate:"required,min=2,max=150"`
	Alias   string `json:"alias"   validate:"max=60"`
	Email   string `json:"email"   validate:"omitempty,email,max=150"`
	Celular string `json:"celular" validate:"omitempty,numeric,max=20"`
}

type ActualizarClienteRequest struct {
	Nombres *string `json:"nombres" validate:"omitempty,min=2,max=150"`
	Alias   *string `json:"alias"   validate:"omitempty,max=60"`
	Email   *string `json:"email"   validate:"omitempty,email,max=150"`
	Celular *string `json:"celular" validate:"omitempty,numeric,max=20"`
}

type ClienteFilter struct {
	Buscar string `form:"q" validate:"max=60"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ClienteResponse carries Texto, the label shown in customer pickers:
// "nombres (alias)".
type ClienteResponse struct {
	ID      string `json:"id"`
	DNI     string `json:"dni"`
	Nombres string `json:"nombres"`
	Alias   string `json:"alias"`
	Email   string `json:"email"`
	Celular string `json:"celular"`
	Texto   string `json:"texto"`
}
