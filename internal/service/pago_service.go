package service

import (
	"context"
	"errors"
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

// EmailNotificador is recorded as the author of automatic wallet payments.
const EmailNotificador = "notificador@sistema"

// errPagoDuplicado aborts the gated transaction when a notification code is
// already journaled. It never leaves the service.
var errPagoDuplicado = errors.New("pago automático duplicado")

// PagoService is the manual payment journal. Automatic rows are written by
// the wallet notification worker and can never be removed.
type PagoService interface {
	Registrar(ctx context.Context, actor Actor, req dto.RegistrarPagoRequest) (*dto.PagoManualResponse, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error
	ListarPorSesion(ctx context.Context, sesionID uuid.UUID) (*dto.PagoManualListResponse, error)
	ListarPorRango(ctx context.Context, desde, hasta string) (*dto.PagoManualListResponse, error)
	Totales(ctx context.Context, desde, hasta string) (map[string]decimal.Decimal, error)

	// RegistrarAutomatico journals a Yape/Plin notification in the open
	// session. A code already journaled for the same method is ignored.
	RegistrarAutomatico(ctx context.Context, n dto.NotificacionPagoRequest) (string, error)
}

type pagoService struct {
	repo    repository.PagoManualRepository
	caja    CajaService
	authz   *authz.Enforcer
	metrics *metrics.Metrics
}

func NewPagoService(repo repository.PagoManualRepository, caja CajaService, enforcer *authz.Enforcer, m *metrics.Metrics) PagoService {
	return &pagoService{repo: repo, caja: caja, authz: enforcer, metrics: m}
}

// ── Registrar ─────────────────────────────────────────────────────────────────

func (s *pagoService) Registrar(ctx context.Context, actor Actor, req dto.RegistrarPagoRequest) (*dto.PagoManualResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjPago, authz.ActCrear); err != nil {
		return nil, err
	}
	sesionID, err := parseID(req.SesionCajaID, "sesion_caja_id")
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, invalido("el monto debe ser mayor que cero")
	}
	if !metodoValido(req.Metodo) {
		return nil, invalido("método de pago inválido: %q", req.Metodo)
	}
	fecha, err := parseFecha(req.Fecha)
	if err != nil {
		return nil, err
	}

	p := &model.PagoManual{
		SesionCajaID: sesionID,
		Fecha:        fecha,
		Monto:        req.Monto.Round(2),
		ClienteRef:   req.ClienteRef,
		Metodo:       req.Metodo,
		Codigo:       req.Codigo,
		Referencia:   req.Referencia,
		Nota:         req.Nota,
		Origen:       model.OrigenManual,
		UsuarioID:    actor.ID,
		UsuarioEmail: actor.Email,
	}
	if err := s.guardar(ctx, p, "registrar_pago"); err != nil {
		return nil, err
	}
	return pagoManualToResponse(p), nil
}

func (s *pagoService) RegistrarAutomatico(ctx context.Context, n dto.NotificacionPagoRequest) (string, error) {
	if !model.EsDigital(n.Metodo) {
		return "", invalido("método de notificación inválido: %q", n.Metodo)
	}
	if !n.Monto.IsPositive() {
		return "", invalido("el monto debe ser mayor que cero")
	}
	if n.Codigo == "" {
		return "", invalido("código de operación requerido")
	}
	fecha, err := parseFecha(n.Fecha)
	if err != nil {
		return "", err
	}
	sesionID, err := s.caja.SesionAbiertaID(ctx)
	if err != nil {
		return "", err
	}

	p := &model.PagoManual{
		SesionCajaID: sesionID,
		Fecha:        fecha,
		Monto:        n.Monto.Round(2),
		ClienteRef:   n.ClienteRef,
		Metodo:       n.Metodo,
		Codigo:       n.Codigo,
		Origen:       model.OrigenAutomatico,
		UsuarioEmail: EmailNotificador,
	}
	// The lookup and the insert share the gated transaction. Two workers that
	// both miss the lookup still collide on uniq_pagos_automaticos_codigo.
	err = s.caja.EnSesionAbierta(ctx, sesionID, func(tx *gorm.DB) error {
		existe, err := s.repo.ExisteCodigoTx(tx, n.Metodo, n.Codigo)
		if err != nil {
			return notFoundOr(err, "pago")
		}
		if existe {
			return errPagoDuplicado
		}
		p.ID = uuid.Nil
		if err := s.repo.CreateTx(tx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errPagoDuplicado
			}
			return notFoundOr(err, "pago")
		}
		return nil
	})
	switch {
	case errors.Is(err, errPagoDuplicado):
		log.Info().Str("metodo", n.Metodo).Str("codigo", n.Codigo).Msg("notificación duplicada, ignorada")
		s.metrics.Operacion("pago_automatico", "duplicado")
		return "", nil
	case err != nil:
		s.metrics.Operacion("pago_automatico", "error")
		return "", err
	}
	s.metrics.Operacion("pago_automatico", "ok")
	return p.ID.String(), nil
}

func (s *pagoService) guardar(ctx context.Context, p *model.PagoManual, op string) error {
	err := s.caja.EnSesionAbierta(ctx, p.SesionCajaID, func(tx *gorm.DB) error {
		p.ID = uuid.Nil
		if err := s.repo.CreateTx(tx, p); err != nil {
			return notFoundOr(err, "pago")
		}
		return nil
	})
	if err != nil {
		s.metrics.Operacion(op, "error")
		return err
	}
	s.metrics.Operacion(op, "ok")
	return nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func (s *pagoService) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := autorizar(s.authz, actor, authz.ObjPago, authz.ActGestionar); err != nil {
		return err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "pago")
	}
	if p.Origen != model.OrigenManual {
		return invalido("los pagos automáticos no se pueden eliminar")
	}

	err = s.caja.EnSesionAbierta(ctx, p.SesionCajaID, func(tx *gorm.DB) error {
		n, err := s.repo.DeleteManualTx(tx, id)
		if err != nil {
			return notFoundOr(err, "pago")
		}
		if n == 0 {
			return noEncontrado("pago no encontrado")
		}
		return nil
	})
	if err != nil {
		s.metrics.Operacion("eliminar_pago", "error")
		return err
	}
	s.metrics.Operacion("eliminar_pago", "ok")
	return nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *pagoService) ListarPorSesion(ctx context.Context, sesionID uuid.UUID) (*dto.PagoManualListResponse, error) {
	return s.listar(ctx, &sesionID, repository.Rango{})
}

func (s *pagoService) ListarPorRango(ctx context.Context, desde, hasta string) (*dto.PagoManualListResponse, error) {
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}
	return s.listar(ctx, nil, rango)
}

func (s *pagoService) Totales(ctx context.Context, desde, hasta string) (map[string]decimal.Decimal, error) {
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}
	totales, err := s.repo.SumPorMetodo(ctx, nil, rango)
	if err != nil {
		return nil, notFoundOr(err, "pagos")
	}
	return totales, nil
}

func (s *pagoService) listar(ctx context.Context, sesionID *uuid.UUID, rango repository.Rango) (*dto.PagoManualListResponse, error) {
	pagos, err := s.repo.List(ctx, sesionID, rango)
	if err != nil {
		return nil, notFoundOr(err, "pagos")
	}
	porMetodo, err := s.repo.SumPorMetodo(ctx, sesionID, rango)
	if err != nil {
		return nil, notFoundOr(err, "pagos")
	}
	resp := &dto.PagoManualListResponse{
		Data:      make([]dto.PagoManualResponse, len(pagos)),
		Total:     sumaMapa(porMetodo),
		PorMetodo: porMetodo,
	}
	for i := range pagos {
		resp.Data[i] = *pagoManualToResponse(&pagos[i])
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// parseFecha reads an optional RFC 3339 timestamp; empty means now.
func parseFecha(raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return time.Time{}, invalido("fecha inválida, use RFC 3339")
	}
	return t, nil
}

func sumaMapa(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total.Round(2)
}

func pagoManualToResponse(p *model.PagoManual) *dto.PagoManualResponse {
	return &dto.PagoManualResponse{
		ID:           p.ID.String(),
		SesionCajaID: p.SesionCajaID.String(),
		Fecha:        p.Fecha.Format(time.RFC3339),
		Monto:        p.Monto,
		ClienteRef:   p.ClienteRef,
		Metodo:       p.Metodo,
		Codigo:       p.Codigo,
		Referencia:   p.Referencia,
		Nota:         p.Nota,
		Origen:       p.Origen,
		UsuarioEmail: p.UsuarioEmail,
	}
}
