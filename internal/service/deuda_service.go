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
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// diasPorVencer is the window, in days, in which a debt is about to fall due.
const diasPorVencer = 3

type DeudaService interface {
	CrearDeuda(ctx context.Context, actor Actor, req dto.CrearDeudaRequest) (*dto.CrearDeudaResponse, error)
	PagarDeuda(ctx context.Context, actor Actor, deudaID uuid.UUID, req dto.PagarDeudaRequest) (*dto.PagoDeudaResponse, error)
	Pendientes(ctx context.Context) ([]dto.DeudaResponse, error)
	Historial(ctx context.Context) (*dto.HistorialDeudasResponse, error)
}

type deudaService struct {
	repo    repository.DeudaRepository
	caja    CajaService
	authz   *authz.Enforcer
	metrics *metrics.Metrics
	ahora   func() time.Time
}

func NewDeudaService(repo repository.DeudaRepository, caja CajaService, enforcer *authz.Enforcer, m *metrics.Metrics) DeudaService {
	return &deudaService{repo: repo, caja: caja, authz: enforcer, metrics: m, ahora: time.Now}
}

// ── CrearDeuda ────────────────────────────────────────────────────────────────

func (s *deudaService) CrearDeuda(ctx context.Context, actor Actor, req dto.CrearDeudaRequest) (*dto.CrearDeudaResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjDeuda, authz.ActCrear); err != nil {
		return nil, err
	}
	sesionID, err := parseID(req.SesionCajaID, "sesion_caja_id")
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, invalido("el monto de la deuda debe ser mayor que cero")
	}
	if req.ClienteRef == "" {
		return nil, invalido("cliente requerido")
	}
	var vence *time.Time
	if req.FechaVencimiento != nil && *req.FechaVencimiento != "" {
		t, err := time.ParseInLocation("2006-01-02", *req.FechaVencimiento, time.Local)
		if err != nil {
			return nil, invalido("fecha de vencimiento inválida, use YYYY-MM-DD")
		}
		vence = &t
	}

	monto := req.Monto.Round(2)
	var deuda *model.Deuda
	err = s.caja.EnSesionAbierta(ctx, sesionID, func(tx *gorm.DB) error {
		deuda = &model.Deuda{
			ClienteRef:       req.ClienteRef,
			MontoOriginal:    monto,
			Saldo:            monto,
			FechaVencimiento: vence,
			Notas:            req.Notas,
			SesionCajaID:     sesionID,
			UsuarioID:        actor.ID,
			UsuarioEmail:     actor.Email,
		}
		if err := s.repo.CreateTx(tx, deuda); err != nil {
			return notFoundOr(err, "deuda")
		}
		return nil
	})
	if err != nil {
		s.metrics.Operacion("crear_deuda", "error")
		return nil, err
	}
	s.metrics.Operacion("crear_deuda", "ok")
	return &dto.CrearDeudaResponse{DeudaID: deuda.ID.String(), Monto: deuda.MontoOriginal}, nil
}

// ── PagarDeuda ────────────────────────────────────────────────────────────────
// saldo is decremented with a compare-and-swap, so two concurrent payments
// can never take it below zero.

func (s *deudaService) PagarDeuda(ctx context.Context, actor Actor, deudaID uuid.UUID, req dto.PagarDeudaRequest) (*dto.PagoDeudaResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjDeuda, authz.ActGestionar); err != nil {
		return nil, err
	}
	sesionID, err := parseID(req.SesionCajaID, "sesion_caja_id")
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, invalido("el monto del pago debe ser mayor que cero")
	}
	metodo := req.Metodo
	if metodo == "" {
		metodo = model.MetodoEfectivo
	}
	if !metodoValido(metodo) {
		return nil, invalido("método de pago inválido: %q", metodo)
	}

	monto := req.Monto.Round(2)
	var pago *model.PagoDeuda
	var restante *model.Deuda
	err = s.caja.EnSesionAbierta(ctx, sesionID, func(tx *gorm.DB) error {
		if _, err := s.repo.FindByIDTx(tx, deudaID); err != nil {
			return notFoundOr(err, "deuda")
		}
		n, err := s.repo.DescontarSaldoTx(tx, deudaID, monto)
		if err != nil {
			return notFoundOr(err, "deuda")
		}
		if n == 0 {
			return ErrOverPayment
		}
		pago = &model.PagoDeuda{
			DeudaID:      deudaID,
			SesionCajaID: sesionID,
			Monto:        monto,
			Metodo:       metodo,
			Notas:        req.Notas,
			UsuarioID:    actor.ID,
			UsuarioEmail: actor.Email,
		}
		if err := s.repo.CreatePagoTx(tx, pago); err != nil {
			return notFoundOr(err, "pago de deuda")
		}
		restante, err = s.repo.FindByIDTx(tx, deudaID)
		if err != nil {
			return notFoundOr(err, "deuda")
		}
		return nil
	})
	if err != nil {
		s.metrics.Operacion("pagar_deuda", "error")
		return nil, err
	}

	s.metrics.Operacion("pagar_deuda", "ok")
	log.Info().Str("deuda_id", deudaID.String()).Str("monto", monto.StringFixed(2)).
		Str("saldo", restante.Saldo.StringFixed(2)).Msg("pago de deuda registrado")
	resp := pagoDeudaToResponse(pago)
	resp.SaldoRestante = restante.Saldo.Round(2)
	return resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *deudaService) Pendientes(ctx context.Context) ([]dto.DeudaResponse, error) {
	deudas, err := s.repo.ListPendientes(ctx)
	if err != nil {
		return nil, notFoundOr(err, "deudas")
	}
	hoy := s.ahora()
	out := make([]dto.DeudaResponse, len(deudas))
	for i := range deudas {
		out[i] = deudaToResponse(&deudas[i])
		out[i].Vencimiento = ClasificarVencimiento(deudas[i].FechaVencimiento, hoy)
	}
	return out, nil
}

func (s *deudaService) Historial(ctx context.Context) (*dto.HistorialDeudasResponse, error) {
	deudas, err := s.repo.List(ctx)
	if err != nil {
		return nil, notFoundOr(err, "deudas")
	}
	pagos, err := s.repo.ListPagos(ctx, nil)
	if err != nil {
		return nil, notFoundOr(err, "pagos de deuda")
	}
	resp := &dto.HistorialDeudasResponse{
		Deudas: make([]dto.DeudaResponse, len(deudas)),
		Pagos:  make([]dto.PagoDeudaResponse, len(pagos)),
	}
	for i := range deudas {
		resp.Deudas[i] = deudaToResponse(&deudas[i])
	}
	for i := range pagos {
		resp.Pagos[i] = *pagoDeudaToResponse(&pagos[i])
	}
	return resp, nil
}

// ClasificarVencimiento compares calendar days: past due is vencida, due
// within diasPorVencer days is por_vencer, anything else (or no date) normal.
func ClasificarVencimiento(fecha *time.Time, hoy time.Time) string {
	if fecha == nil {
		return model.VencimientoNormal
	}
	y, m, d := hoy.Date()
	inicio := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	fy, fm, fd := fecha.Date()
	vence := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)

	dias := int(vence.Sub(inicio).Hours() / 24)
	switch {
	case dias < 0:
		return model.VencimientoVencida
	case dias <= diasPorVencer:
		return model.VencimientoPorVencer
	default:
		return model.VencimientoNormal
	}
}

func deudaToResponse(d *model.Deuda) dto.DeudaResponse {
	resp := dto.DeudaResponse{
		ID:            d.ID.String(),
		ClienteRef:    d.ClienteRef,
		MontoOriginal: d.MontoOriginal,
		Saldo:         d.Saldo.Round(2),
		Notas:         d.Notas,
		SesionCajaID:  d.SesionCajaID.String(),
		UsuarioEmail:  d.UsuarioEmail,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
	}
	if d.FechaVencimiento != nil {
		f := d.FechaVencimiento.Format("2006-01-02")
		resp.FechaVencimiento = &f
	}
	return resp
}

func pagoDeudaToResponse(p *model.PagoDeuda) *dto.PagoDeudaResponse {
	return &dto.PagoDeudaResponse{
		ID:           p.ID.String(),
		DeudaID:      p.DeudaID.String(),
		SesionCajaID: p.SesionCajaID.String(),
		Monto:        p.Monto,
		Metodo:       p.Metodo,
		Notas:        p.Notas,
		UsuarioEmail: p.UsuarioEmail,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
}
