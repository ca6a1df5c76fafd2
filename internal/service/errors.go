package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorKind classifies domain failures so the HTTP layer can map them to
// status codes without inspecting messages.
type ErrorKind string

const (
	KindInvalidInput           ErrorKind = "INVALID_INPUT"
	KindSessionClosed          ErrorKind = "SESSION_CLOSED"
	KindSessionAlreadyOpen     ErrorKind = "SESSION_ALREADY_OPEN"
	KindInsufficientStock      ErrorKind = "INSUFFICIENT_STOCK"
	KindOverPayment            ErrorKind = "OVER_PAYMENT"
	KindInvalidStateTransition ErrorKind = "INVALID_STATE_TRANSITION"
	KindConcurrencyConflict    ErrorKind = "CONCURRENCY_CONFLICT"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
)

// Error is a domain error. Two errors match under errors.Is when their kinds
// are equal, so callers compare against the Err* sentinels below.
type Error struct {
	Kind ErrorKind
	Msg  string
	// SKU names the offending product for INSUFFICIENT_STOCK.
	SKU string
}

func (e *Error) Error() string {
	if e.SKU != "" {
		return fmt.Sprintf("%s (sku %s)", e.Msg, e.SKU)
	}
	return e.Msg
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidInput           = &Error{Kind: KindInvalidInput, Msg: "datos inválidos"}
	ErrSessionClosed          = &Error{Kind: KindSessionClosed, Msg: "la sesión de caja está cerrada"}
	ErrSessionAlreadyOpen     = &Error{Kind: KindSessionAlreadyOpen, Msg: "ya existe una sesión de caja abierta"}
	ErrInsufficientStock      = &Error{Kind: KindInsufficientStock, Msg: "stock insuficiente"}
	ErrOverPayment            = &Error{Kind: KindOverPayment, Msg: "el pago excede el saldo de la deuda"}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition, Msg: "transición de estado inválida"}
	ErrConcurrencyConflict    = &Error{Kind: KindConcurrencyConflict, Msg: "conflicto de concurrencia, reintente"}
	ErrNotFound               = &Error{Kind: KindNotFound, Msg: "recurso no encontrado"}
	ErrForbidden              = &Error{Kind: KindForbidden, Msg: "operación no permitida para el rol"}
	ErrUnauthorized           = &Error{Kind: KindUnauthorized, Msg: "credenciales inválidas"}
)

func invalido(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func noEncontrado(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func transicionInvalida(format string, args ...any) error {
	return &Error{Kind: KindInvalidStateTransition, Msg: fmt.Sprintf(format, args...)}
}

func stockInsuficiente(sku string) error {
	return &Error{Kind: KindInsufficientStock, Msg: "stock insuficiente", SKU: sku}
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND domain error and wraps
// anything else as an infrastructure error.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return noEncontrado("%s no encontrado", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
