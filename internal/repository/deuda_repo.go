package repository

import (
	"context"

	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DeudaRepository interface {
	CreateTx(tx *gorm.DB, d *model.Deuda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Deuda, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Deuda, error)
	// DescontarSaldoTx subtracts monto only while saldo >= monto.
	// Zero rows affected means the payment would overdraw the debt.
	DescontarSaldoTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (int64, error)
	CreatePagoTx(tx *gorm.DB, p *model.PagoDeuda) error
	ListPendientes(ctx context.Context) ([]model.Deuda, error)
	List(ctx context.Context) ([]model.Deuda, error)
	ListPagos(ctx context.Context, deudaID *uuid.UUID) ([]model.PagoDeuda, error)
	SumPagos(ctx context.Context, deudaID uuid.UUID) (decimal.Decimal, error)

	SumNuevasSesionTx(tx *gorm.DB, sesionID uuid.UUID) (decimal.Decimal, error)
	SumCobrosSesionTx(tx *gorm.DB, sesionID uuid.UUID, metodo string) (decimal.Decimal, error)
	SumCobros(ctx context.Context, rango Rango) (decimal.Decimal, error)
	SumOtorgadas(ctx context.Context, rango Rango) (decimal.Decimal, error)
	DB() *gorm.DB
}

type deudaRepo struct{ db *gorm.DB }

func NewDeudaRepository(db *gorm.DB) DeudaRepository { return &deudaRepo{db: db} }

func (r *deudaRepo) DB() *gorm.DB { return r.db }

func (r *deudaRepo) CreateTx(tx *gorm.DB, d *model.Deuda) error {
	return tx.Create(d).Error
}

func (r *deudaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Deuda, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *deudaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Deuda, error) {
	var d model.Deuda
	err := tx.Where("id = ?", id).First(&d).Error
	return &d, err
}

func (r *deudaRepo) DescontarSaldoTx(tx *gorm.DB, id uuid.UUID, monto decimal.Decimal) (int64, error) {
	res := tx.Model(&model.Deuda{}).
		Where("id = ? AND saldo >= ?", id, monto).
		Update("saldo", gorm.Expr("ROUND(saldo - ?, 2)", monto))
	return res.RowsAffected, res.Error
}

func (r *deudaRepo) CreatePagoTx(tx *gorm.DB, p *model.PagoDeuda) error {
	return tx.Create(p).Error
}

func (r *deudaRepo) ListPendientes(ctx context.Context) ([]model.Deuda, error) {
	var deudas []model.Deuda
	err := r.db.WithContext(ctx).
		Where("saldo > 0").
		Order("fecha_vencimiento IS NULL, fecha_vencimiento ASC, created_at ASC").
		Find(&deudas).Error
	return deudas, err
}

func (r *deudaRepo) List(ctx context.Context) ([]model.Deuda, error) {
	var deudas []model.Deuda
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&deudas).Error
	return deudas, err
}

func (r *deudaRepo) ListPagos(ctx context.Context, deudaID *uuid.UUID) ([]model.PagoDeuda, error) {
	q := r.db.WithContext(ctx).Model(&model.PagoDeuda{})
	if deudaID != nil {
		q = q.Where("deuda_id = ?", *deudaID)
	}
	var pagos []model.PagoDeuda
	err := q.Order("created_at DESC").Find(&pagos).Error
	return pagos, err
}

func (r *deudaRepo) SumPagos(ctx context.Context, deudaID uuid.UUID) (decimal.Decimal, error) {
	return sumar(r.db.WithContext(ctx).Model(&model.PagoDeuda{}).Where("deuda_id = ?", deudaID), "monto")
}

func (r *deudaRepo) SumNuevasSesionTx(tx *gorm.DB, sesionID uuid.UUID) (decimal.Decimal, error) {
	return sumar(tx.Model(&model.Deuda{}).Where("sesion_caja_id = ?", sesionID), "monto_original")
}

func (r *deudaRepo) SumCobrosSesionTx(tx *gorm.DB, sesionID uuid.UUID, metodo string) (decimal.Decimal, error) {
	q := tx.Model(&model.PagoDeuda{}).Where("sesion_caja_id = ?", sesionID)
	if metodo != "" {
		q = q.Where("metodo = ?", metodo)
	}
	return sumar(q, "monto")
}

func (r *deudaRepo) SumCobros(ctx context.Context, rango Rango) (decimal.Decimal, error) {
	return sumar(rango.aplicar(r.db.WithContext(ctx).Model(&model.PagoDeuda{}), "created_at"), "monto")
}

func (r *deudaRepo) SumOtorgadas(ctx context.Context, rango Rango) (decimal.Decimal, error) {
	return sumar(rango.aplicar(r.db.WithContext(ctx).Model(&model.Deuda{}), "created_at"), "monto_original")
}
