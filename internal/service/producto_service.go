package service

import (
	"context"
	"errors"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// barcodeCacheTTL bounds how long a barcode → product id mapping is trusted.
// Prices and stock are always read from the database.
const barcodeCacheTTL = 4 * time.Hour

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, actor Actor, id uuid.UUID) error
	Categorias(ctx context.Context) ([]string, error)
	HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistorialPrecioListResponse, error)
}

type productoService struct {
	repo       repository.ProductoRepository
	historial  repository.HistorialPrecioRepository
	inventario InventarioService
	authz      *authz.Enforcer
	rdb        *redis.Client
}

func NewProductoService(
	repo repository.ProductoRepository,
	historial repository.HistorialPrecioRepository,
	inventario InventarioService,
	enforcer *authz.Enforcer,
	rdb *redis.Client,
) ProductoService {
	return &productoService{repo: repo, historial: historial, inventario: inventario, authz: enforcer, rdb: rdb}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// The initial stock enters through the inventory ledger as an ingreso, so
// stock_actual = Σ movimientos holds from the first row.

func (s *productoService) Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjProducto, authz.ActGestionar); err != nil {
		return nil, err
	}
	if req.SKU == "" || req.Nombre == "" {
		return nil, invalido("sku y nombre son requeridos")
	}
	if req.PrecioCosto.IsNegative() || req.PrecioVenta.IsNegative() {
		return nil, invalido("los precios no pueden ser negativos")
	}
	if req.StockInicial < 0 || req.StockMinimo < 0 {
		return nil, invalido("el stock no puede ser negativo")
	}
	categoria := req.Categoria
	if categoria == "" {
		categoria = "General"
	}

	p := &model.Producto{
		SKU:          req.SKU,
		CodigoBarras: req.CodigoBarras,
		Nombre:       req.Nombre,
		Categoria:    categoria,
		PrecioCosto:  req.PrecioCosto.Round(2),
		PrecioVenta:  req.PrecioVenta.Round(2),
		StockMinimo:  req.StockMinimo,
		Activo:       true,
	}
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return invalido("ya existe un producto con sku %s", req.SKU)
			}
			return notFoundOr(err, "producto")
		}
		if req.StockInicial == 0 {
			return nil
		}
		_, err := s.inventario.RegistrarTx(tx, model.MovIngreso, MovimientoTx{
			SKU:      p.SKU,
			Cantidad: req.StockInicial,
			Actor:    actor,
			Motivo:   "stock inicial",
		}, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.ObtenerPorID(ctx, p.ID)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "producto")
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorBarcode(ctx context.Context, barcode string) (*dto.ProductoResponse, error) {
	key := barcodeCacheKey(barcode)

	// 1. Try Redis: a hit only saves the barcode lookup.
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			if id, err := uuid.Parse(cached); err == nil {
				if p, err := s.repo.FindByID(ctx, id); err == nil && p.Activo {
					return productoToResponse(p), nil
				}
			}
		}
	}

	// 2. Cache miss
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, notFoundOr(err, "producto")
	}

	// 3. Populate cache, best effort
	if s.rdb != nil {
		if err := s.rdb.Set(context.Background(), key, p.ID.String(), barcodeCacheTTL).Err(); err != nil {
			log.Debug().Err(err).Str("barcode", barcode).Msg("barcode cache set failed")
		}
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, notFoundOr(err, "productos")
	}
	out := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		out[i] = *productoToResponse(&productos[i])
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	return &dto.ProductoListResponse{
		Data:       out,
		Total:      total,
		Page:       filter.Page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *productoService) Categorias(ctx context.Context) ([]string, error) {
	cats, err := s.repo.Categorias(ctx)
	if err != nil {
		return nil, notFoundOr(err, "categorías")
	}
	return cats, nil
}

func (s *productoService) HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistorialPrecioListResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "producto")
	}
	rows, total, err := s.historial.ListByProducto(ctx, id, page, limit)
	if err != nil {
		return nil, notFoundOr(err, "historial de precios")
	}
	data := make([]dto.HistorialPrecioItem, len(rows))
	for i := range rows {
		data[i] = historialToDTO(&rows[i])
	}
	return &dto.HistorialPrecioListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Stock is not editable here; use the inventory ledger. A price change writes
// a historial_precios row in the same transaction.

func (s *productoService) Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjProducto, authz.ActGestionar); err != nil {
		return nil, err
	}
	if (req.PrecioCosto != nil && req.PrecioCosto.IsNegative()) || (req.PrecioVenta != nil && req.PrecioVenta.IsNegative()) {
		return nil, invalido("los precios no pueden ser negativos")
	}

	var anterior *string
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFoundOr(err, "producto")
		}
		anterior = p.CodigoBarras
		costoAntes, ventaAntes := p.PrecioCosto, p.PrecioVenta

		if req.Nombre != nil {
			p.Nombre = *req.Nombre
		}
		if req.CodigoBarras != nil {
			p.CodigoBarras = req.CodigoBarras
		}
		if req.Categoria != nil {
			p.Categoria = *req.Categoria
		}
		if req.PrecioCosto != nil {
			p.PrecioCosto = req.PrecioCosto.Round(2)
		}
		if req.PrecioVenta != nil {
			p.PrecioVenta = req.PrecioVenta.Round(2)
		}
		if req.StockMinimo != nil {
			p.StockMinimo = *req.StockMinimo
		}
		if req.Activo != nil {
			p.Activo = *req.Activo
		}
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return notFoundOr(err, "producto")
		}

		if p.PrecioCosto.Equal(costoAntes) && p.PrecioVenta.Equal(ventaAntes) {
			return nil
		}
		if err := s.historial.CreateTx(tx, &model.HistorialPrecio{
			ProductoID:   p.ID,
			CostoAntes:   costoAntes,
			CostoDespues: p.PrecioCosto,
			VentaAntes:   ventaAntes,
			VentaDespues: p.PrecioVenta,
			UsuarioID:    actor.ID,
			Motivo:       "actualización manual",
		}); err != nil {
			return notFoundOr(err, "historial de precios")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidarBarcode(ctx, anterior)
	return s.ObtenerPorID(ctx, id)
}

func (s *productoService) Desactivar(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := autorizar(s.authz, actor, authz.ObjProducto, authz.ActGestionar); err != nil {
		return err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "producto")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(err, "producto")
	}
	s.invalidarBarcode(ctx, p.CodigoBarras)
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func barcodeCacheKey(barcode string) string { return "producto:barcode:" + barcode }

func (s *productoService) invalidarBarcode(ctx context.Context, barcode *string) {
	if s.rdb == nil || barcode == nil {
		return
	}
	_ = s.rdb.Del(ctx, barcodeCacheKey(*barcode)).Err()
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		SKU:          p.SKU,
		CodigoBarras: p.CodigoBarras,
		Nombre:       p.Nombre,
		Categoria:    p.Categoria,
		PrecioCosto:  p.PrecioCosto,
		PrecioVenta:  p.PrecioVenta,
		StockActual:  p.StockActual,
		StockMinimo:  p.StockMinimo,
		Activo:       p.Activo,
	}
}

func historialToDTO(h *model.HistorialPrecio) dto.HistorialPrecioItem {
	return dto.HistorialPrecioItem{
		ID:           h.ID.String(),
		ProductoID:   h.ProductoID.String(),
		CostoAntes:   h.CostoAntes,
		CostoDespues: h.CostoDespues,
		VentaAntes:   h.VentaAntes,
		VentaDespues: h.VentaDespues,
		Motivo:       h.Motivo,
		CreatedAt:    h.CreatedAt.Format(time.RFC3339),
	}
}
