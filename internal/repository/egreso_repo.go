package repository

import (
	"context"

	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EgresoRepository interface {
	CreateTx(tx *gorm.DB, e *model.Egreso) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Egreso, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) (int64, error)
	List(ctx context.Context, sesionID *uuid.UUID, rango Rango) ([]model.Egreso, error)
	SumPorTipo(ctx context.Context, sesionID *uuid.UUID, rango Rango) (map[string]decimal.Decimal, error)
	SumSesionTx(tx *gorm.DB, sesionID uuid.UUID) (decimal.Decimal, error)
	Sum(ctx context.Context, rango Rango) (decimal.Decimal, error)
	DB() *gorm.DB
}

type egresoRepo struct{ db *gorm.DB }

func NewEgresoRepository(db *gorm.DB) EgresoRepository { return &egresoRepo{db: db} }

func (r *egresoRepo) DB() *gorm.DB { return r.db }

func (r *egresoRepo) CreateTx(tx *gorm.DB, e *model.Egreso) error {
	return tx.Create(e).Error
}

func (r *egresoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Egreso, error) {
	var e model.Egreso
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	return &e, err
}

func (r *egresoRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Where("id = ?", id).Delete(&model.Egreso{})
	return res.RowsAffected, res.Error
}

func (r *egresoRepo) filtrar(ctx context.Context, sesionID *uuid.UUID, rango Rango) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Egreso{})
	if sesionID != nil {
		q = q.Where("sesion_caja_id = ?", *sesionID)
	}
	return rango.aplicar(q, "created_at")
}

func (r *egresoRepo) List(ctx context.Context, sesionID *uuid.UUID, rango Rango) ([]model.Egreso, error) {
	var egresos []model.Egreso
	err := r.filtrar(ctx, sesionID, rango).Order("created_at DESC").Find(&egresos).Error
	return egresos, err
}

func (r *egresoRepo) SumPorTipo(ctx context.Context, sesionID *uuid.UUID, rango Rango) (map[string]decimal.Decimal, error) {
	rows, err := r.filtrar(ctx, sesionID, rango).
		Select("tipo, COALESCE(SUM(monto), 0)").
		Group("tipo").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var tipo string
		var total decimal.Decimal
		if err := rows.Scan(&tipo, &total); err != nil {
			return nil, err
		}
		out[tipo] = total.Round(2)
	}
	return out, rows.Err()
}

func (r *egresoRepo) SumSesionTx(tx *gorm.DB, sesionID uuid.UUID) (decimal.Decimal, error) {
	return sumar(tx.Model(&model.Egreso{}).Where("sesion_caja_id = ?", sesionID), "monto")
}

func (r *egresoRepo) Sum(ctx context.Context, rango Rango) (decimal.Decimal, error) {
	return sumar(r.filtrar(ctx, nil, rango), "monto")
}
