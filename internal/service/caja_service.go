package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/metrics"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"
	"github.com/machelox/Proyecto-Cyberia/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// toleranciaCuadre is the absolute difference still classified as cuadrada.
var toleranciaCuadre = decimal.New(10, -2)

// ToleranciaCuadre returns the reconciliation tolerance (0.10).
func ToleranciaCuadre() decimal.Decimal { return toleranciaCuadre }

type CajaService interface {
	Abrir(ctx context.Context, actor Actor, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	// Actual returns nil (and no error) when no session is open.
	Actual(ctx context.Context) (*dto.SesionCajaResponse, error)
	ResumenCierre(ctx context.Context, sesionID uuid.UUID) (*dto.ResumenCierreResponse, error)
	Cerrar(ctx context.Context, actor Actor, sesionID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreResponse, error)
	Historial(ctx context.Context, page, limit int) (*dto.SesionCajaListResponse, error)

	// EnSesionAbierta runs fn in a transaction after checking that sesionID
	// is open. Every session-scoped writer goes through here, so a close
	// never interleaves with a write to the same session.
	EnSesionAbierta(ctx context.Context, sesionID uuid.UUID, fn func(tx *gorm.DB) error) error
	// SesionAbiertaID returns the id of the open session or SESSION_CLOSED.
	SesionAbiertaID(ctx context.Context) (uuid.UUID, error)
}

// Ledgers groups the repositories the close-out aggregates over.
type Ledgers struct {
	Ventas  repository.VentaRepository
	Deudas  repository.DeudaRepository
	Pagos   repository.PagoManualRepository
	Egresos repository.EgresoRepository
}

type cajaService struct {
	repo       repository.CajaRepository
	ledgers    Ledgers
	authz      *authz.Enforcer
	dispatcher *worker.Dispatcher
	metrics    *metrics.Metrics
	reintentos int

	// Writers hold the read side for the length of their transaction;
	// Abrir and Cerrar take the write side.
	mu sync.RWMutex
}

func NewCajaService(
	repo repository.CajaRepository,
	ledgers Ledgers,
	enforcer *authz.Enforcer,
	dispatcher *worker.Dispatcher,
	m *metrics.Metrics,
	reintentos int,
) CajaService {
	return &cajaService{
		repo:       repo,
		ledgers:    ledgers,
		authz:      enforcer,
		dispatcher: dispatcher,
		metrics:    m,
		reintentos: reintentos,
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, actor Actor, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjCaja, authz.ActAbrir); err != nil {
		return nil, err
	}
	if req.MontoInicial.IsNegative() {
		return nil, invalido("el monto inicial no puede ser negativo")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.FindAbierta(ctx); err == nil {
		return nil, ErrSessionAlreadyOpen
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundOr(err, "sesión de caja")
	}

	sesion := &model.SesionCaja{
		UsuarioID:    actor.ID,
		UsuarioEmail: actor.Email,
		MontoInicial: req.MontoInicial.Round(2),
		Estado:       model.SesionAbierta,
		OpenedAt:     time.Now(),
	}
	if err := s.repo.Create(ctx, sesion); err != nil {
		// Another process won the race: the partial unique index rejected us.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSessionAlreadyOpen
		}
		return nil, notFoundOr(err, "sesión de caja")
	}

	s.metrics.SesionAbierta(true)
	s.metrics.Operacion("abrir_caja", "ok")
	log.Info().Str("sesion_caja_id", sesion.ID.String()).Str("usuario", actor.Email).Msg("caja abierta")
	return sesionToResponse(sesion), nil
}

// ── Actual / Historial ────────────────────────────────────────────────────────

func (s *cajaService) Actual(ctx context.Context) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindAbierta(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, notFoundOr(err, "sesión de caja")
	}
	return sesionToResponse(sesion), nil
}

func (s *cajaService) SesionAbiertaID(ctx context.Context) (uuid.UUID, error) {
	sesion, err := s.repo.FindAbierta(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrSessionClosed
	}
	if err != nil {
		return uuid.Nil, notFoundOr(err, "sesión de caja")
	}
	return sesion.ID, nil
}

func (s *cajaService) Historial(ctx context.Context, page, limit int) (*dto.SesionCajaListResponse, error) {
	sesiones, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, notFoundOr(err, "sesiones de caja")
	}
	out := make([]dto.SesionCajaResponse, len(sesiones))
	for i := range sesiones {
		out[i] = *sesionToResponse(&sesiones[i])
	}
	return &dto.SesionCajaListResponse{Data: out, Total: total, Page: page, Limit: limit}, nil
}

// ── Gate ──────────────────────────────────────────────────────────────────────

func (s *cajaService) EnSesionAbierta(ctx context.Context, sesionID uuid.UUID, fn func(tx *gorm.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return conReintento(ctx, s.reintentos, func() error {
		return s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			sesion, err := s.repo.FindByIDTx(tx, sesionID, repository.LockShare)
			if err != nil {
				return notFoundOr(err, "sesión de caja")
			}
			if !sesion.Abierta() {
				return ErrSessionClosed
			}
			return fn(tx)
		})
	})
}

// ── Resumen ───────────────────────────────────────────────────────────────────

func (s *cajaService) ResumenCierre(ctx context.Context, sesionID uuid.UUID) (*dto.ResumenCierreResponse, error) {
	db := s.repo.DB().WithContext(ctx)
	sesion, err := s.repo.FindByIDTx(db, sesionID, "")
	if err != nil {
		return nil, notFoundOr(err, "sesión de caja")
	}
	return s.resumenTx(db, sesion)
}

// resumenTx reads every ledger of the session through tx.
func (s *cajaService) resumenTx(tx *gorm.DB, sesion *model.SesionCaja) (*dto.ResumenCierreResponse, error) {
	ventas, err := s.ledgers.Ventas.TotalesSesionTx(tx, sesion.ID)
	if err != nil {
		return nil, notFoundOr(err, "totales de ventas")
	}
	cobros, err := s.ledgers.Deudas.SumCobrosSesionTx(tx, sesion.ID, model.MetodoEfectivo)
	if err != nil {
		return nil, notFoundOr(err, "cobros de deuda")
	}
	pagosDigitales, err := s.ledgers.Pagos.SumSesionTx(tx, sesion.ID, []string{model.MetodoYape, model.MetodoPlin})
	if err != nil {
		return nil, notFoundOr(err, "pagos digitales")
	}
	deudas, err := s.ledgers.Deudas.SumNuevasSesionTx(tx, sesion.ID)
	if err != nil {
		return nil, notFoundOr(err, "deudas nuevas")
	}
	gastos, err := s.ledgers.Egresos.SumSesionTx(tx, sesion.ID)
	if err != nil {
		return nil, notFoundOr(err, "egresos")
	}

	return &dto.ResumenCierreResponse{
		SesionCajaID:        sesion.ID.String(),
		MontoInicial:        sesion.MontoInicial,
		TotalVentasApp:      ventas.Total,
		QVentas:             ventas.Cantidad,
		CobrosDeudaEfectivo: cobros,
		VentasDigitales:     pagosDigitales.Add(ventas.Digitales),
		TotalDeudasNuevas:   deudas,
		TotalGastos:         gastos,
	}, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Cerrar(ctx context.Context, actor Actor, sesionID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CierreResponse, error) {
	if !actor.valido() {
		return nil, ErrForbidden
	}
	if req.MontoPOS.IsNegative() || req.MontoContado.IsNegative() {
		return nil, invalido("los montos del cierre no pueden ser negativos")
	}
	cualquiera := s.authz.Permitido(actor.Rol, authz.ObjCaja, authz.ActCerrar)
	if !cualquiera && !s.authz.Permitido(actor.Rol, authz.ObjCaja, authz.ActCerrarPropia) {
		return nil, ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var resp *dto.CierreResponse
	err := conReintento(ctx, s.reintentos, func() error {
		return s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			sesion, err := s.repo.FindByIDTx(tx, sesionID, repository.LockUpdate)
			if err != nil {
				return notFoundOr(err, "sesión de caja")
			}
			if !cualquiera && sesion.UsuarioID != actor.ID {
				return ErrForbidden
			}
			if !sesion.Abierta() {
				return transicionInvalida("la sesión de caja ya está cerrada")
			}

			resumen, err := s.resumenTx(tx, sesion)
			if err != nil {
				return err
			}
			esperado, diferencia, clasificacion := Cuadrar(*resumen, req.MontoPOS, req.MontoContado)

			closedAt := time.Now()
			pos := req.MontoPOS.Round(2)
			contado := req.MontoContado.Round(2)
			sesion.ClosedAt = &closedAt
			sesion.CerradoPorID = &actor.ID
			sesion.CerradoPor = &actor.Email
			sesion.MontoPOS = &pos
			sesion.MontoContado = &contado
			sesion.MontoEsperado = &esperado
			sesion.Diferencia = &diferencia
			sesion.Clasificacion = &clasificacion
			if req.Notas != "" {
				sesion.Notas = &req.Notas
			}

			n, err := s.repo.CerrarTx(tx, sesion)
			if err != nil {
				return notFoundOr(err, "sesión de caja")
			}
			if n == 0 {
				return transicionInvalida("la sesión de caja ya está cerrada")
			}

			resp = &dto.CierreResponse{
				SesionCajaID:  sesion.ID.String(),
				Resumen:       *resumen,
				MontoPOS:      pos,
				MontoContado:  contado,
				MontoEsperado: esperado,
				Diferencia:    diferencia,
				Clasificacion: clasificacion,
				ClosedAt:      closedAt.Format(time.RFC3339),
			}
			return nil
		})
	})
	if err != nil {
		s.metrics.Operacion("cerrar_caja", "error")
		return nil, err
	}

	s.metrics.SesionAbierta(false)
	s.metrics.Operacion("cerrar_caja", "ok")
	log.Info().
		Str("sesion_caja_id", resp.SesionCajaID).
		Str("diferencia", resp.Diferencia.StringFixed(2)).
		Str("clasificacion", resp.Clasificacion).
		Msg("caja cerrada")

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueCierre(ctx, worker.CierreJobPayload{Cierre: *resp, Cajero: actor.Email}); err != nil {
			log.Warn().Err(err).Str("sesion_caja_id", resp.SesionCajaID).Msg("no se pudo encolar el reporte de cierre")
		}
	}
	return resp, nil
}

// Cuadrar computes the expected cash, the signed difference and its
// classification:
//
//	esperado = inicial + pos + cobrosDeudaEfectivo − ventasDigitales − deudasNuevas − gastos
//	diferencia = contado − esperado
func Cuadrar(r dto.ResumenCierreResponse, montoPOS, montoContado decimal.Decimal) (decimal.Decimal, decimal.Decimal, string) {
	esperado := r.MontoInicial.
		Add(montoPOS).
		Add(r.CobrosDeudaEfectivo).
		Sub(r.VentasDigitales).
		Sub(r.TotalDeudasNuevas).
		Sub(r.TotalGastos).
		Round(2)
	diferencia := montoContado.Sub(esperado).Round(2)

	switch {
	case diferencia.Abs().LessThanOrEqual(toleranciaCuadre):
		return esperado, diferencia, model.CuadreCuadrada
	case diferencia.IsPositive():
		return esperado, diferencia, model.CuadreSobrante
	default:
		return esperado, diferencia, model.CuadreFaltante
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sesionToResponse(s *model.SesionCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:            s.ID.String(),
		UsuarioEmail:  s.UsuarioEmail,
		MontoInicial:  s.MontoInicial,
		Estado:        s.Estado,
		OpenedAt:      s.OpenedAt.Format(time.RFC3339),
		CerradoPor:    s.CerradoPor,
		MontoPOS:      s.MontoPOS,
		MontoContado:  s.MontoContado,
		MontoEsperado: s.MontoEsperado,
		Diferencia:    s.Diferencia,
		Clasificacion: s.Clasificacion,
		Notas:         s.Notas,
	}
	if s.ClosedAt != nil {
		c := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &c
	}
	return resp
}
