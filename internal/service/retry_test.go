package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConReintento_ReintentaConflictos(t *testing.T) {
	intentos := 0
	err := conReintento(context.Background(), 3, func() error {
		intentos++
		if intentos < 3 {
			return &pgconn.PgError{Code: pgSerializationFailure}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, intentos)
}

func TestConReintento_AgotaIntentos(t *testing.T) {
	intentos := 0
	err := conReintento(context.Background(), 2, func() error {
		intentos++
		return &pgconn.PgError{Code: pgDeadlockDetected}
	})
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.Equal(t, 3, intentos)
}

func TestConReintento_NoReintentaErroresDeDominio(t *testing.T) {
	intentos := 0
	err := conReintento(context.Background(), 5, func() error {
		intentos++
		return ErrOverPayment
	})
	assert.ErrorIs(t, err, ErrOverPayment)
	assert.Equal(t, 1, intentos)

	intentos = 0
	err = conReintento(context.Background(), 5, func() error {
		intentos++
		return errors.New("conexión rechazada")
	})
	assert.EqualError(t, err, "conexión rechazada")
	assert.Equal(t, 1, intentos)
}

func TestEsConflicto(t *testing.T) {
	assert.True(t, esConflicto(ErrConcurrencyConflict))
	assert.True(t, esConflicto(&pgconn.PgError{Code: pgLockNotAvailable}))
	assert.False(t, esConflicto(&pgconn.PgError{Code: "23505"}))
	assert.False(t, esConflicto(ErrSessionClosed))
}
