package service

import (
	"context"
	"slices"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/metrics"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	CrearOrden(ctx context.Context, actor Actor, req dto.CrearOrdenRequest) (*dto.CrearOrdenResponse, error)
	ConfirmarOrden(ctx context.Context, actor Actor, id uuid.UUID, req dto.ConfirmarOrdenRequest) (*dto.VentaResponse, error)
	CancelarOrden(ctx context.Context, actor Actor, id uuid.UUID, req dto.CancelarOrdenRequest) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo       repository.VentaRepository
	inventario InventarioService
	caja       CajaService
	authz      *authz.Enforcer
	metrics    *metrics.Metrics
}

func NewVentaService(
	repo repository.VentaRepository,
	inventario InventarioService,
	caja CajaService,
	enforcer *authz.Enforcer,
	m *metrics.Metrics,
) VentaService {
	return &ventaService{
		repo:       repo,
		inventario: inventario,
		caja:       caja,
		authz:      enforcer,
		metrics:    m,
	}
}

// ── CrearOrden ────────────────────────────────────────────────────────────────
// One transaction inside the session gate:
//   1. next numero
//   2. reserve every line (CAS on stock), snapshotting name and cost
//   3. insert venta + items
// Any failed reservation rolls back the ones already taken.

func (s *ventaService) CrearOrden(ctx context.Context, actor Actor, req dto.CrearOrdenRequest) (*dto.CrearOrdenResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjVenta, authz.ActCrear); err != nil {
		return nil, err
	}
	sesionID, err := parseID(req.SesionCajaID, "sesion_caja_id")
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, invalido("la orden debe tener al menos un ítem")
	}
	for _, it := range req.Items {
		if it.SKU == "" {
			return nil, invalido("sku requerido en cada ítem")
		}
		if it.Cantidad <= 0 {
			return nil, invalido("cantidad inválida para %s", it.SKU)
		}
		if it.PrecioUnitario.IsNegative() {
			return nil, invalido("precio inválido para %s", it.SKU)
		}
	}

	var venta *model.Venta
	err = s.caja.EnSesionAbierta(ctx, sesionID, func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumeroTx(tx)
		if err != nil {
			return notFoundOr(err, "numeración de ventas")
		}

		venta = &model.Venta{
			ID:           uuid.New(),
			Numero:       numero,
			SesionCajaID: sesionID,
			ClienteRef:   req.ClienteRef,
			PcRef:        req.PcRef,
			Estado:       model.VentaPendiente,
			UsuarioID:    actor.ID,
			UsuarioEmail: actor.Email,
		}

		total := decimal.Zero
		for _, it := range req.Items {
			p, err := s.inventario.Reservar(tx, MovimientoTx{
				SKU:          it.SKU,
				Cantidad:     it.Cantidad,
				SesionID:     &sesionID,
				Actor:        actor,
				ReferenciaID: &venta.ID,
				Motivo:       "orden",
			})
			if err != nil {
				return err
			}
			precio := it.PrecioUnitario.Round(2)
			subtotal := precio.Mul(decimal.NewFromInt(int64(it.Cantidad))).Round(2)
			total = total.Add(subtotal)
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     p.ID,
				SKU:            p.SKU,
				Nombre:         p.Nombre,
				Cantidad:       it.Cantidad,
				PrecioUnitario: precio,
				CostoUnitario:  p.PrecioCosto,
				Subtotal:       subtotal,
			})
		}
		venta.Total = total

		if err := s.repo.CreateTx(tx, venta); err != nil {
			return notFoundOr(err, "venta")
		}
		return nil
	})
	if err != nil {
		s.metrics.Operacion("crear_orden", "error")
		return nil, err
	}

	s.metrics.Operacion("crear_orden", "ok")
	log.Info().Str("venta_id", venta.ID.String()).Int("numero", venta.Numero).
		Str("total", venta.Total.StringFixed(2)).Msg("orden creada")
	return &dto.CrearOrdenResponse{VentaID: venta.ID.String(), Numero: venta.Numero, Total: venta.Total}, nil
}

// ── ConfirmarOrden ────────────────────────────────────────────────────────────
// Confirmation only fixes the payment method; stock was taken at creation.

func (s *ventaService) ConfirmarOrden(ctx context.Context, actor Actor, id uuid.UUID, req dto.ConfirmarOrdenRequest) (*dto.VentaResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjVenta, authz.ActGestionar); err != nil {
		return nil, err
	}
	metodo := req.MetodoPago
	if metodo == "" {
		metodo = model.MetodoEfectivo
	}
	if !metodoValido(metodo) {
		return nil, invalido("método de pago inválido: %q", metodo)
	}

	return s.transicion(ctx, id, "confirmar_orden", func(tx *gorm.DB, v *model.Venta) error {
		now := time.Now()
		n, err := s.repo.TransicionTx(tx, v.ID, model.VentaPendiente, map[string]interface{}{
			"estado":       model.VentaConfirmada,
			"metodo_pago":  metodo,
			"confirmed_at": now,
		})
		if err != nil {
			return notFoundOr(err, "venta")
		}
		if n == 0 {
			return transicionInvalida("la orden ya no está pendiente")
		}
		return nil
	})
}

// ── CancelarOrden ─────────────────────────────────────────────────────────────

func (s *ventaService) CancelarOrden(ctx context.Context, actor Actor, id uuid.UUID, req dto.CancelarOrdenRequest) (*dto.VentaResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjVenta, authz.ActGestionar); err != nil {
		return nil, err
	}

	return s.transicion(ctx, id, "cancelar_orden", func(tx *gorm.DB, v *model.Venta) error {
		campos := map[string]interface{}{
			"estado":       model.VentaCancelada,
			"cancelled_at": time.Now(),
		}
		if req.Motivo != "" {
			campos["motivo"] = req.Motivo
		}
		n, err := s.repo.TransicionTx(tx, v.ID, model.VentaPendiente, campos)
		if err != nil {
			return notFoundOr(err, "venta")
		}
		if n == 0 {
			return transicionInvalida("la orden ya no está pendiente")
		}

		for _, it := range v.Items {
			if err := s.inventario.Liberar(tx, MovimientoTx{
				SKU:          it.SKU,
				Cantidad:     it.Cantidad,
				SesionID:     &v.SesionCajaID,
				Actor:        actor,
				ReferenciaID: &v.ID,
				Motivo:       "cancelación de orden",
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// transicion checks the order is pendiente before touching the session so a
// terminal order reports INVALID_STATE_TRANSITION even after close.
func (s *ventaService) transicion(ctx context.Context, id uuid.UUID, op string, fn func(tx *gorm.DB, v *model.Venta) error) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "venta")
	}
	if v.Estado != model.VentaPendiente {
		return nil, transicionInvalida("la orden está %s", v.Estado)
	}

	err = s.caja.EnSesionAbierta(ctx, v.SesionCajaID, func(tx *gorm.DB) error {
		return fn(tx, v)
	})
	if err != nil {
		s.metrics.Operacion(op, "error")
		return nil, err
	}
	s.metrics.Operacion(op, "ok")

	actualizada, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "venta")
	}
	return ventaToResponse(actualizada), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "venta")
	}
	return ventaToResponse(v), nil
}

func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	f := repository.VentaFilter{Estado: filter.Estado, Page: filter.Page, Limit: filter.Limit}
	if filter.SesionCajaID != "" {
		id, err := parseID(filter.SesionCajaID, "sesion_caja_id")
		if err != nil {
			return nil, err
		}
		f.SesionCajaID = &id
	}
	rango, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	f.Rango = rango

	ventas, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, notFoundOr(err, "ventas")
	}
	out := make([]dto.VentaResponse, len(ventas))
	for i := range ventas {
		out[i] = *ventaToResponse(&ventas[i])
	}
	return &dto.VentaListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func metodoValido(m string) bool {
	return slices.Contains(model.MetodosPago, m)
}

// parseRango reads YYYY-MM-DD bounds; hasta is inclusive, so the window ends
// at the start of the following day.
func parseRango(desde, hasta string) (repository.Rango, error) {
	var r repository.Rango
	if desde != "" {
		t, err := time.ParseInLocation("2006-01-02", desde, time.Local)
		if err != nil {
			return r, invalido("fecha desde inválida, use YYYY-MM-DD")
		}
		r.Desde = t
	}
	if hasta != "" {
		t, err := time.ParseInLocation("2006-01-02", hasta, time.Local)
		if err != nil {
			return r, invalido("fecha hasta inválida, use YYYY-MM-DD")
		}
		r.Hasta = t.AddDate(0, 0, 1)
	}
	if !r.Desde.IsZero() && !r.Hasta.IsZero() && !r.Desde.Before(r.Hasta) {
		return r, invalido("el rango de fechas está invertido")
	}
	return r, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, len(v.Items))
	for i, it := range v.Items {
		items[i] = dto.ItemVentaResponse{
			SKU:            it.SKU,
			Nombre:         it.Nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		}
	}
	return &dto.VentaResponse{
		ID:           v.ID.String(),
		Numero:       v.Numero,
		SesionCajaID: v.SesionCajaID.String(),
		ClienteRef:   v.ClienteRef,
		PcRef:        v.PcRef,
		Items:        items,
		Total:        v.Total,
		Estado:       v.Estado,
		MetodoPago:   v.MetodoPago,
		UsuarioEmail: v.UsuarioEmail,
		Motivo:       v.Motivo,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		ConfirmedAt:  formatTimePtr(v.ConfirmedAt),
		CancelledAt:  formatTimePtr(v.CancelledAt),
	}
}
