// Package repository holds the GORM data access layer. Methods suffixed Tx run
// on the transaction handed in by the service; the rest use the base handle.
package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row lock strengths understood by conBloqueo.
const (
	LockShare  = "SHARE"
	LockUpdate = "UPDATE"
)

// conBloqueo adds FOR SHARE / FOR UPDATE on Postgres. SQLite serializes
// writers on its own and rejects the clause, so it is skipped there.
func conBloqueo(tx *gorm.DB, strength string) *gorm.DB {
	if strength == "" || tx.Dialector.Name() != "postgres" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: strength})
}

// Rango is a half-open [Desde, Hasta) time window.
type Rango struct {
	Desde time.Time
	Hasta time.Time
}

func (r Rango) aplicar(q *gorm.DB, col string) *gorm.DB {
	if !r.Desde.IsZero() {
		q = q.Where(col+" >= ?", r.Desde)
	}
	if !r.Hasta.IsZero() {
		q = q.Where(col+" < ?", r.Hasta)
	}
	return q
}

func paginar(page, limit, def, max int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > max {
		limit = def
	}
	return page, limit, (page - 1) * limit
}

// sumar returns COALESCE(SUM(col), 0) rounded to cents. SQLite stores
// decimals as REAL, so the rounding removes float noise there.
func sumar(q *gorm.DB, col string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.Select("COALESCE(SUM(" + col + "), 0)").Row().Scan(&total)
	return total.Round(2), err
}
