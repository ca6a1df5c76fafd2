package service

import (
	"context"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/metrics"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoTx describes one stock change applied inside a caller's transaction.
type MovimientoTx struct {
	SKU          string
	Cantidad     int // units; Reservar/Liberar apply the sign themselves
	SesionID     *uuid.UUID
	Actor        Actor
	ReferenciaID *uuid.UUID
	Motivo       string
}

// InventarioService is the only writer of productos.stock_actual. Every change
// is paired with a movimientos_stock row in the same transaction.
type InventarioService interface {
	AplicarMovimiento(ctx context.Context, actor Actor, req dto.MovimientoStockRequest) (*dto.MovimientoStockResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error)
	Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error)

	// RegistrarTx applies a signed delta of type tipo. Unless permitirNegativo
	// the change is refused with INSUFFICIENT_STOCK when stock would drop below zero.
	RegistrarTx(tx *gorm.DB, tipo string, m MovimientoTx, permitirNegativo bool) (*model.MovimientoStock, error)
	// Reservar takes m.Cantidad units for an order. Inactive or unknown
	// products and short stock all report INSUFFICIENT_STOCK for m.SKU.
	Reservar(tx *gorm.DB, m MovimientoTx) (*model.Producto, error)
	// Liberar returns m.Cantidad units reserved by a cancelled order.
	Liberar(tx *gorm.DB, m MovimientoTx) error
}

type inventarioService struct {
	repo       repository.ProductoRepository
	movRepo    repository.MovimientoStockRepository
	authz      *authz.Enforcer
	metrics    *metrics.Metrics
	reintentos int
}

func NewInventarioService(
	repo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	enforcer *authz.Enforcer,
	m *metrics.Metrics,
	reintentos int,
) InventarioService {
	return &inventarioService{repo: repo, movRepo: movRepo, authz: enforcer, metrics: m, reintentos: reintentos}
}

// ── AplicarMovimiento ─────────────────────────────────────────────────────────
// Manual stock entry (ingreso) or correction (ajuste_manual).

func (s *inventarioService) AplicarMovimiento(ctx context.Context, actor Actor, req dto.MovimientoStockRequest) (*dto.MovimientoStockResponse, error) {
	act := authz.ActAjustar
	switch req.Tipo {
	case model.MovIngreso:
		act = authz.ActIngresar
	case model.MovAjusteManual:
	default:
		return nil, invalido("tipo de movimiento inválido: %q", req.Tipo)
	}
	if err := autorizar(s.authz, actor, authz.ObjInventario, act); err != nil {
		return nil, err
	}
	if req.Forzar {
		if req.Tipo != model.MovAjusteManual {
			return nil, invalido("solo un ajuste manual puede forzarse")
		}
		if err := autorizar(s.authz, actor, authz.ObjInventario, authz.ActForzar); err != nil {
			return nil, err
		}
	}
	if req.SKU == "" {
		return nil, invalido("sku requerido")
	}
	if req.Cantidad == 0 {
		return nil, invalido("la cantidad no puede ser cero")
	}
	if req.Tipo == model.MovIngreso && req.Cantidad < 0 {
		return nil, invalido("un ingreso debe ser positivo")
	}

	var mov *model.MovimientoStock
	err := conReintento(ctx, s.reintentos, func() error {
		return s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			mov, err = s.RegistrarTx(tx, req.Tipo, MovimientoTx{
				SKU:      req.SKU,
				Cantidad: req.Cantidad,
				Actor:    actor,
				Motivo:   req.Motivo,
			}, req.Forzar)
			return err
		})
	})
	if err != nil {
		s.metrics.Operacion("movimiento_stock", "error")
		return nil, err
	}
	s.metrics.Operacion("movimiento_stock", "ok")
	return movimientoToResponse(mov), nil
}

// ── Tx primitives ─────────────────────────────────────────────────────────────

func (s *inventarioService) RegistrarTx(tx *gorm.DB, tipo string, m MovimientoTx, permitirNegativo bool) (*model.MovimientoStock, error) {
	n, err := s.repo.AjustarStockTx(tx, m.SKU, m.Cantidad, permitirNegativo)
	if err != nil {
		return nil, notFoundOr(err, "producto")
	}
	if n == 0 {
		if _, err := s.repo.FindBySKUTx(tx, m.SKU); err != nil {
			return nil, notFoundOr(err, "producto "+m.SKU)
		}
		return nil, stockInsuficiente(m.SKU)
	}
	return s.anotar(tx, tipo, m, m.Cantidad)
}

func (s *inventarioService) Reservar(tx *gorm.DB, m MovimientoTx) (*model.Producto, error) {
	if m.Cantidad <= 0 {
		return nil, invalido("la cantidad debe ser mayor que cero")
	}
	n, err := s.repo.ReservarTx(tx, m.SKU, m.Cantidad)
	if err != nil {
		return nil, notFoundOr(err, "producto")
	}
	if n == 0 {
		return nil, stockInsuficiente(m.SKU)
	}
	return s.anotarReserva(tx, m)
}

func (s *inventarioService) Liberar(tx *gorm.DB, m MovimientoTx) error {
	n, err := s.repo.AjustarStockTx(tx, m.SKU, m.Cantidad, true)
	if err != nil {
		return notFoundOr(err, "producto")
	}
	if n == 0 {
		return noEncontrado("producto %s no encontrado", m.SKU)
	}
	_, err = s.anotar(tx, model.MovReversaCancelacion, m, m.Cantidad)
	return err
}

func (s *inventarioService) anotarReserva(tx *gorm.DB, m MovimientoTx) (*model.Producto, error) {
	p, err := s.repo.FindBySKUTx(tx, m.SKU)
	if err != nil {
		return nil, notFoundOr(err, "producto "+m.SKU)
	}
	if err := s.movRepo.CreateTx(tx, nuevoMovimiento(p, model.MovReservaVenta, m, -m.Cantidad)); err != nil {
		return nil, notFoundOr(err, "movimiento de stock")
	}
	return p, nil
}

// anotar writes the movement row for a delta already applied to the product.
func (s *inventarioService) anotar(tx *gorm.DB, tipo string, m MovimientoTx, delta int) (*model.MovimientoStock, error) {
	p, err := s.repo.FindBySKUTx(tx, m.SKU)
	if err != nil {
		return nil, notFoundOr(err, "producto "+m.SKU)
	}
	mov := nuevoMovimiento(p, tipo, m, delta)
	if err := s.movRepo.CreateTx(tx, mov); err != nil {
		return nil, notFoundOr(err, "movimiento de stock")
	}
	return mov, nil
}

// nuevoMovimiento builds the ledger row from the product as read after the update.
func nuevoMovimiento(p *model.Producto, tipo string, m MovimientoTx, delta int) *model.MovimientoStock {
	return &model.MovimientoStock{
		ProductoID:    p.ID,
		SKU:           p.SKU,
		SesionCajaID:  m.SesionID,
		Tipo:          tipo,
		Cantidad:      delta,
		StockAnterior: p.StockActual - delta,
		StockNuevo:    p.StockActual,
		UsuarioID:     m.Actor.ID,
		Motivo:        m.Motivo,
		ReferenciaID:  m.ReferenciaID,
	}
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error) {
	movs, total, err := s.movRepo.List(ctx, filter)
	if err != nil {
		return nil, notFoundOr(err, "movimientos de stock")
	}
	out := make([]dto.MovimientoStockResponse, len(movs))
	for i := range movs {
		out[i] = *movimientoToResponse(&movs[i])
	}
	return &dto.MovimientoStockListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventarioService) Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.repo.BajoMinimo(ctx)
	if err != nil {
		return nil, notFoundOr(err, "productos")
	}
	out := make([]dto.AlertaStockResponse, len(productos))
	for i, p := range productos {
		out[i] = dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			SKU:         p.SKU,
			Nombre:      p.Nombre,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
		}
	}
	return out, nil
}

func movimientoToResponse(m *model.MovimientoStock) *dto.MovimientoStockResponse {
	return &dto.MovimientoStockResponse{
		ID:            m.ID.String(),
		SKU:           m.SKU,
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		Motivo:        m.Motivo,
		SesionCajaID:  uuidPtrString(m.SesionCajaID),
		ReferenciaID:  uuidPtrString(m.ReferenciaID),
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
