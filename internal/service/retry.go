package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATEs that mean "another transaction got in the way".
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

func esConflicto(err error) bool {
	if errors.Is(err, ErrConcurrencyConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
	}
	return false
}

// conReintento runs fn and retries it with exponential backoff while it fails
// with a concurrency conflict. Any other error stops immediately. When the
// attempts run out the conflict is reported as ErrConcurrencyConflict.
func conReintento(ctx context.Context, maxReintentos int, fn func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 20 * time.Millisecond
	exp.MaxInterval = 500 * time.Millisecond
	exp.MaxElapsedTime = 5 * time.Second

	var b backoff.BackOff = exp
	if maxReintentos >= 0 {
		b = backoff.WithMaxRetries(exp, uint64(maxReintentos))
	}

	err := backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if esConflicto(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))

	if err != nil && esConflicto(err) && !errors.Is(err, ErrConcurrencyConflict) {
		return &Error{Kind: KindConcurrencyConflict, Msg: ErrConcurrencyConflict.Msg + ": " + err.Error()}
	}
	return err
}
