package repository

import (
	"context"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VentaFilter narrows GET /v1/ventas after the handler parsed the query.
type VentaFilter struct {
	SesionCajaID *uuid.UUID
	Estado       string
	Rango        Rango
	Page         int
	Limit        int
}

// TotalesVentaSesion aggregates the non-cancelled orders of a session.
type TotalesVentaSesion struct {
	Total    decimal.Decimal
	Cantidad int64
	// Digitales is the confirmed yape/plin part of Total.
	Digitales decimal.Decimal
}

// ProductoVendido is one row of the per-session product summary.
type ProductoVendido struct {
	SKU      string
	Nombre   string
	Cantidad int64
	Total    decimal.Decimal
}

// CategoriaVendida groups confirmed sales by product category.
type CategoriaVendida struct {
	Categoria string
	Cantidad  int64
	Total     decimal.Decimal
}

// VentaEnFecha is the timestamp and total of one confirmed order.
type VentaEnFecha struct {
	CreatedAt time.Time
	Total     decimal.Decimal
}

// Orden de TopProductos.
const (
	PorMonto    = "monto"
	PorCantidad = "cantidad"
)

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	NextNumeroTx(tx *gorm.DB) (int, error)
	// TransicionTx moves an order from desde to the state in campos["estado"];
	// zero rows means the order was no longer in desde.
	TransicionTx(tx *gorm.DB, id uuid.UUID, desde string, campos map[string]interface{}) (int64, error)
	List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error)
	TotalesSesionTx(tx *gorm.DB, sesionID uuid.UUID) (TotalesVentaSesion, error)
	ProductosPorSesion(ctx context.Context, sesionID uuid.UUID) ([]ProductoVendido, error)
	// BrutoYCosto sums price and cost snapshots of confirmed orders in rango.
	BrutoYCosto(ctx context.Context, rango Rango) (bruto, costo decimal.Decimal, err error)
	// TopProductos ranks confirmed sales in rango by PorMonto or PorCantidad.
	TopProductos(ctx context.Context, rango Rango, criterio string, limite int) ([]ProductoVendido, error)
	PorCategoria(ctx context.Context, rango Rango) ([]CategoriaVendida, error)
	ConfirmadasEnRango(ctx context.Context, rango Rango) ([]VentaEnFecha, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *ventaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := tx.Preload("Items").Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *ventaRepo) NextNumeroTx(tx *gorm.DB) (int, error) {
	var num int
	if tx.Dialector.Name() == "postgres" {
		// Sequence created by the migrations: atomic across concurrent orders.
		err := tx.Raw("SELECT nextval('ventas_numero_seq')").Scan(&num).Error
		return num, err
	}
	err := tx.Model(&model.Venta{}).Select("COALESCE(MAX(numero), 0) + 1").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) TransicionTx(tx *gorm.DB, id uuid.UUID, desde string, campos map[string]interface{}) (int64, error) {
	res := tx.Model(&model.Venta{}).Where("id = ? AND estado = ?", id, desde).Updates(campos)
	return res.RowsAffected, res.Error
}

func (r *ventaRepo) List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.SesionCajaID != nil {
		q = q.Where("sesion_caja_id = ?", *filter.SesionCajaID)
	}
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	q = filter.Rango.aplicar(q, "created_at")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filter.Page, filter.Limit, 50, 200)
	var ventas []model.Venta
	err := q.Preload("Items").
		Order("numero DESC").
		Offset(offset).Limit(limit).
		Find(&ventas).Error
	return ventas, total, err
}

func (r *ventaRepo) TotalesSesionTx(tx *gorm.DB, sesionID uuid.UUID) (TotalesVentaSesion, error) {
	var t TotalesVentaSesion
	err := tx.Model(&model.Venta{}).
		Select("COALESCE(SUM(total), 0), COUNT(*)").
		Where("sesion_caja_id = ? AND estado IN ?", sesionID, []string{model.VentaPendiente, model.VentaConfirmada}).
		Row().Scan(&t.Total, &t.Cantidad)
	if err != nil {
		return TotalesVentaSesion{}, err
	}

	t.Digitales, err = sumar(tx.Model(&model.Venta{}).
		Where("sesion_caja_id = ? AND estado = ? AND metodo_pago IN ?",
			sesionID, model.VentaConfirmada, []string{model.MetodoYape, model.MetodoPlin}), "total")
	if err != nil {
		return TotalesVentaSesion{}, err
	}
	t.Total = t.Total.Round(2)
	return t, nil
}

func (r *ventaRepo) ProductosPorSesion(ctx context.Context, sesionID uuid.UUID) ([]ProductoVendido, error) {
	var rows []ProductoVendido
	err := r.db.WithContext(ctx).
		Table("venta_items AS i").
		Select("i.sku AS sku, MAX(i.nombre) AS nombre, SUM(i.cantidad) AS cantidad, COALESCE(SUM(i.subtotal), 0) AS total").
		Joins("JOIN ventas v ON v.id = i.venta_id").
		Where("v.sesion_caja_id = ? AND v.estado <> ?", sesionID, model.VentaCancelada).
		Group("i.sku").
		Order("cantidad DESC, sku ASC").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	return rows, err
}

func (r *ventaRepo) BrutoYCosto(ctx context.Context, rango Rango) (decimal.Decimal, decimal.Decimal, error) {
	var bruto, costo decimal.Decimal
	q := r.db.WithContext(ctx).
		Table("venta_items AS i").
		Select("COALESCE(SUM(i.subtotal), 0) AS bruto, COALESCE(SUM(i.costo_unitario * i.cantidad), 0) AS costo").
		Joins("JOIN ventas v ON v.id = i.venta_id").
		Where("v.estado = ?", model.VentaConfirmada)
	err := rango.aplicar(q, "v.created_at").Row().Scan(&bruto, &costo)
	return bruto.Round(2), costo.Round(2), err
}

func (r *ventaRepo) TopProductos(ctx context.Context, rango Rango, criterio string, limite int) ([]ProductoVendido, error) {
	orden := "SUM(i.subtotal) DESC"
	if criterio == PorCantidad {
		orden = "SUM(i.cantidad) DESC"
	}
	var rows []ProductoVendido
	q := r.db.WithContext(ctx).
		Table("venta_items AS i").
		Select("i.sku AS sku, MAX(i.nombre) AS nombre, SUM(i.cantidad) AS cantidad, COALESCE(SUM(i.subtotal), 0) AS total").
		Joins("JOIN ventas v ON v.id = i.venta_id").
		Where("v.estado = ?", model.VentaConfirmada)
	err := rango.aplicar(q, "v.created_at").
		Group("i.sku").
		Order(orden + ", i.sku ASC").
		Limit(limite).
		Scan(&rows).Error
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	return rows, err
}

func (r *ventaRepo) PorCategoria(ctx context.Context, rango Rango) ([]CategoriaVendida, error) {
	var rows []CategoriaVendida
	q := r.db.WithContext(ctx).
		Table("venta_items AS i").
		Select("p.categoria AS categoria, SUM(i.cantidad) AS cantidad, COALESCE(SUM(i.subtotal), 0) AS total").
		Joins("JOIN ventas v ON v.id = i.venta_id").
		Joins("JOIN productos p ON p.id = i.producto_id").
		Where("v.estado = ?", model.VentaConfirmada)
	err := rango.aplicar(q, "v.created_at").
		Group("p.categoria").
		Order("SUM(i.subtotal) DESC, p.categoria ASC").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	return rows, err
}

func (r *ventaRepo) ConfirmadasEnRango(ctx context.Context, rango Rango) ([]VentaEnFecha, error) {
	var rows []VentaEnFecha
	q := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("created_at, total").
		Where("estado = ?", model.VentaConfirmada)
	err := rango.aplicar(q, "created_at").Order("created_at ASC").Scan(&rows).Error
	return rows, err
}
