package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CambioPermiso struct {
	Objeto    string `json:"objeto"    validate:"required,max=30"`
	Accion    string `json:"accion"    validate:"required,max=30"`
	Permitido bool   `json:"permitido"`
}

type GuardarPermisosRequest struct {
	Cambios []CambioPermiso `json:"cambios" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// PermisoResponse is one row of a role's permission table. Heredado marks a
// permission that comes from a lower role and cannot be revoked here.
type PermisoResponse struct {
	Objeto    string `json:"objeto"`
	Accion    string `json:"accion"`
	Permitido bool   `json:"permitido"`
	Heredado  bool   `json:"heredado"`
}

type PermisosRolResponse struct {
	Rol      string            `json:"rol"`
	Permisos []PermisoResponse `json:"permisos"`
}
