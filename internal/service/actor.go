package service

import (
	"github.com/machelox/Proyecto-Cyberia/internal/authz"

	"github.com/google/uuid"
)

// Actor identifies the authenticated user performing an operation.
// Services never trust the caller: every mutation re-checks the actor's role.
type Actor struct {
	ID    uuid.UUID
	Email string
	Rol   string
}

func (a Actor) valido() bool {
	return a.ID != uuid.Nil && a.Email != "" && a.Rol != ""
}

// autorizar rejects anonymous actors and roles the policy does not allow.
func autorizar(e *authz.Enforcer, a Actor, obj, act string) error {
	if !a.valido() || !e.Permitido(a.Rol, obj, act) {
		return ErrForbidden
	}
	return nil
}

// parseID turns a path or body id into a uuid, reporting INVALID_INPUT.
func parseID(raw, campo string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalido("%s inválido", campo)
	}
	return id, nil
}
