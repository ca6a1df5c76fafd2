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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EgresoService interface {
	Registrar(ctx context.Context, actor Actor, req dto.RegistrarEgresoRequest) (*dto.EgresoResponse, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error
	ListarPorSesion(ctx context.Context, sesionID uuid.UUID) (*dto.EgresoListResponse, error)
	ListarPorRango(ctx context.Context, desde, hasta string) (*dto.EgresoListResponse, error)
	Totales(ctx context.Context, desde, hasta string) (map[string]decimal.Decimal, error)
}

type egresoService struct {
	repo    repository.EgresoRepository
	caja    CajaService
	authz   *authz.Enforcer
	metrics *metrics.Metrics
}

func NewEgresoService(repo repository.EgresoRepository, caja CajaService, enforcer *authz.Enforcer, m *metrics.Metrics) EgresoService {
	return &egresoService{repo: repo, caja: caja, authz: enforcer, metrics: m}
}

func (s *egresoService) Registrar(ctx context.Context, actor Actor, req dto.RegistrarEgresoRequest) (*dto.EgresoResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjEgreso, authz.ActCrear); err != nil {
		return nil, err
	}
	sesionID, err := parseID(req.SesionCajaID, "sesion_caja_id")
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, invalido("el monto del egreso debe ser mayor que cero")
	}
	switch req.Tipo {
	case model.EgresoGastoGeneral, model.EgresoCompraMercaderia, model.EgresoRetiroEfectivo:
	default:
		return nil, invalido("tipo de egreso inválido: %q", req.Tipo)
	}

	var e *model.Egreso
	err = s.caja.EnSesionAbierta(ctx, sesionID, func(tx *gorm.DB) error {
		e = &model.Egreso{
			SesionCajaID: sesionID,
			Tipo:         req.Tipo,
			Monto:        req.Monto.Round(2),
			Descripcion:  req.Descripcion,
			UsuarioID:    actor.ID,
			UsuarioEmail: actor.Email,
		}
		if err := s.repo.CreateTx(tx, e); err != nil {
			return notFoundOr(err, "egreso")
		}
		return nil
	})
	if err != nil {
		s.metrics.Operacion("registrar_egreso", "error")
		return nil, err
	}
	s.metrics.Operacion("registrar_egreso", "ok")
	return egresoToResponse(e), nil
}

// Eliminar removes an expense while its session is still open.
func (s *egresoService) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := autorizar(s.authz, actor, authz.ObjEgreso, authz.ActGestionar); err != nil {
		return err
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "egreso")
	}
	err = s.caja.EnSesionAbierta(ctx, e.SesionCajaID, func(tx *gorm.DB) error {
		n, err := s.repo.DeleteTx(tx, id)
		if err != nil {
			return notFoundOr(err, "egreso")
		}
		if n == 0 {
			return noEncontrado("egreso no encontrado")
		}
		return nil
	})
	if err != nil {
		s.metrics.Operacion("eliminar_egreso", "error")
		return err
	}
	s.metrics.Operacion("eliminar_egreso", "ok")
	return nil
}

func (s *egresoService) ListarPorSesion(ctx context.Context, sesionID uuid.UUID) (*dto.EgresoListResponse, error) {
	return s.listar(ctx, &sesionID, repository.Rango{})
}

func (s *egresoService) ListarPorRango(ctx context.Context, desde, hasta string) (*dto.EgresoListResponse, error) {
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}
	return s.listar(ctx, nil, rango)
}

func (s *egresoService) Totales(ctx context.Context, desde, hasta string) (map[string]decimal.Decimal, error) {
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}
	totales, err := s.repo.SumPorTipo(ctx, nil, rango)
	if err != nil {
		return nil, notFoundOr(err, "egresos")
	}
	return totales, nil
}

func (s *egresoService) listar(ctx context.Context, sesionID *uuid.UUID, rango repository.Rango) (*dto.EgresoListResponse, error) {
	egresos, err := s.repo.List(ctx, sesionID, rango)
	if err != nil {
		return nil, notFoundOr(err, "egresos")
	}
	porTipo, err := s.repo.SumPorTipo(ctx, sesionID, rango)
	if err != nil {
		return nil, notFoundOr(err, "egresos")
	}
	resp := &dto.EgresoListResponse{
		Data:    make([]dto.EgresoResponse, len(egresos)),
		Total:   sumaMapa(porTipo),
		PorTipo: porTipo,
	}
	for i := range egresos {
		resp.Data[i] = *egresoToResponse(&egresos[i])
	}
	return resp, nil
}

func egresoToResponse(e *model.Egreso) *dto.EgresoResponse {
	return &dto.EgresoResponse{
		ID:           e.ID.String(),
		SesionCajaID: e.SesionCajaID.String(),
		Tipo:         e.Tipo,
		Monto:        e.Monto,
		Descripcion:  e.Descripcion,
		UsuarioEmail: e.UsuarioEmail,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}
