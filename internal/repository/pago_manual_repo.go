package repository

import (
	"context"

	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PagoManualRepository interface {
	CreateTx(tx *gorm.DB, p *model.PagoManual) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PagoManual, error)
	// DeleteManualTx removes the row only when origen = manual.
	DeleteManualTx(tx *gorm.DB, id uuid.UUID) (int64, error)
	// ExisteCodigoTx reports whether an operation code was already journaled
	// for metodo. The partial unique index uniq_pagos_automaticos_codigo
	// backs it for automatic rows.
	ExisteCodigoTx(tx *gorm.DB, metodo, codigo string) (bool, error)
	List(ctx context.Context, sesionID *uuid.UUID, rango Rango) ([]model.PagoManual, error)
	SumPorMetodo(ctx context.Context, sesionID *uuid.UUID, rango Rango) (map[string]decimal.Decimal, error)
	SumSesionTx(tx *gorm.DB, sesionID uuid.UUID, metodos []string) (decimal.Decimal, error)
	DB() *gorm.DB
}

type pagoManualRepo struct{ db *gorm.DB }

func NewPagoManualRepository(db *gorm.DB) PagoManualRepository { return &pagoManualRepo{db: db} }

func (r *pagoManualRepo) DB() *gorm.DB { return r.db }

func (r *pagoManualRepo) CreateTx(tx *gorm.DB, p *model.PagoManual) error {
	return tx.Create(p).Error
}

func (r *pagoManualRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PagoManual, error) {
	var p model.PagoManual
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *pagoManualRepo) DeleteManualTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Where("id = ? AND origen = ?", id, model.OrigenManual).Delete(&model.PagoManual{})
	return res.RowsAffected, res.Error
}

func (r *pagoManualRepo) ExisteCodigoTx(tx *gorm.DB, metodo, codigo string) (bool, error) {
	var n int64
	err := tx.Model(&model.PagoManual{}).
		Where("metodo = ? AND codigo = ?", metodo, codigo).
		Count(&n).Error
	return n > 0, err
}

func (r *pagoManualRepo) filtrar(ctx context.Context, sesionID *uuid.UUID, rango Rango) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.PagoManual{})
	if sesionID != nil {
		q = q.Where("sesion_caja_id = ?", *sesionID)
	}
	return rango.aplicar(q, "fecha")
}

func (r *pagoManualRepo) List(ctx context.Context, sesionID *uuid.UUID, rango Rango) ([]model.PagoManual, error) {
	var pagos []model.PagoManual
	err := r.filtrar(ctx, sesionID, rango).Order("fecha DESC").Find(&pagos).Error
	return pagos, err
}

func (r *pagoManualRepo) SumPorMetodo(ctx context.Context, sesionID *uuid.UUID, rango Rango) (map[string]decimal.Decimal, error) {
	rows, err := r.filtrar(ctx, sesionID, rango).
		Select("metodo, COALESCE(SUM(monto), 0)").
		Group("metodo").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var metodo string
		var total decimal.Decimal
		if err := rows.Scan(&metodo, &total); err != nil {
			return nil, err
		}
		out[metodo] = total.Round(2)
	}
	return out, rows.Err()
}

func (r *pagoManualRepo) SumSesionTx(tx *gorm.DB, sesionID uuid.UUID, metodos []string) (decimal.Decimal, error) {
	q := tx.Model(&model.PagoManual{}).Where("sesion_caja_id = ?", sesionID)
	if len(metodos) > 0 {
		q = q.Where("metodo IN ?", metodos)
	}
	return sumar(q, "monto")
}
