package repository

import (
	"context"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	CreateTx(tx *gorm.DB, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	FindBySKU(ctx context.Context, sku string) (*model.Producto, error)
	FindBySKUTx(tx *gorm.DB, sku string) (*model.Producto, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	UpdateTx(tx *gorm.DB, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Categorias(ctx context.Context) ([]string, error)
	BajoMinimo(ctx context.Context) ([]model.Producto, error)

	// ReservarTx decrements stock only when the product is active and has at
	// least qty units. Zero rows affected means the reservation was refused.
	ReservarTx(tx *gorm.DB, sku string, qty int) (int64, error)
	// AjustarStockTx applies delta; unless permitirNegativo the update is
	// refused (zero rows) when the result would go below zero.
	AjustarStockTx(tx *gorm.DB, sku string, delta int, permitirNegativo bool) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *productoRepo) FindBySKU(ctx context.Context, sku string) (*model.Producto, error) {
	return r.FindBySKUTx(r.db.WithContext(ctx), sku)
}

func (r *productoRepo) FindBySKUTx(tx *gorm.DB, sku string) (*model.Producto, error) {
	var p model.Producto
	err := tx.Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productoRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo_barras = ? AND activo = ?", barcode, true).First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = ?", false)
	case "all":
	default:
		q = q.Where("activo = ?", true)
	}

	if filter.Barcode != "" {
		q = q.Where("codigo_barras = ?", filter.Barcode)
	}
	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre) LIKE LOWER(?)", "%"+filter.Nombre+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filter.Page, filter.Limit, 20, 100)
	err := q.Order("nombre ASC").Limit(limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) UpdateTx(tx *gorm.DB, p *model.Producto) error {
	// stock_actual is owned by the inventory ledger and never written here.
	return tx.Model(&model.Producto{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"nombre":        p.Nombre,
		"codigo_barras": p.CodigoBarras,
		"categoria":     p.Categoria,
		"precio_costo":  p.PrecioCosto,
		"precio_venta":  p.PrecioVenta,
		"stock_minimo":  p.StockMinimo,
		"activo":        p.Activo,
	}).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) Categorias(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("activo = ?", true).
		Distinct("categoria").
		Order("categoria ASC").
		Pluck("categoria", &cats).Error
	return cats, err
}

func (r *productoRepo) BajoMinimo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = ? AND stock_actual <= stock_minimo", true).
		Order("stock_actual ASC, nombre ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ReservarTx(tx *gorm.DB, sku string, qty int) (int64, error) {
	res := tx.Model(&model.Producto{}).
		Where("sku = ? AND activo = ? AND stock_actual >= ?", sku, true, qty).
		Update("stock_actual", gorm.Expr("stock_actual - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *productoRepo) AjustarStockTx(tx *gorm.DB, sku string, delta int, permitirNegativo bool) (int64, error) {
	q := tx.Model(&model.Producto{}).Where("sku = ?", sku)
	if !permitirNegativo {
		q = q.Where("stock_actual + ? >= 0", delta)
	}
	res := q.Update("stock_actual", gorm.Expr("stock_actual + ?", delta))
	return res.RowsAffected, res.Error
}
