package service

import (
	"context"
	"fmt"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"

	"github.com/rs/zerolog/log"
)

// PermisoService lets administrators tune what cajero and supervisor may do.
// Changes are persisted and applied to the live enforcer; Cargar replays them
// on start.
type PermisoService interface {
	Roles(ctx context.Context, actor Actor) ([]string, error)
	PermisosDeRol(ctx context.Context, actor Actor, rol string) (*dto.PermisosRolResponse, error)
	Guardar(ctx context.Context, actor Actor, rol string, req dto.GuardarPermisosRequest) (*dto.PermisosRolResponse, error)
	Cargar(ctx context.Context) error
}

type permisoService struct {
	repo  repository.PermisoRepository
	authz *authz.Enforcer
}

func NewPermisoService(repo repository.PermisoRepository, enforcer *authz.Enforcer) PermisoService {
	return &permisoService{repo: repo, authz: enforcer}
}

func (s *permisoService) Roles(_ context.Context, actor Actor) ([]string, error) {
	if err := autorizar(s.authz, actor, authz.ObjPermiso, authz.ActGestionar); err != nil {
		return nil, err
	}
	return append([]string(nil), authz.Roles...), nil
}

func (s *permisoService) PermisosDeRol(_ context.Context, actor Actor, rol string) (*dto.PermisosRolResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjPermiso, authz.ActGestionar); err != nil {
		return nil, err
	}
	if !authz.RolValido(rol) {
		return nil, noEncontrado("rol %s no encontrado", rol)
	}
	return s.tabla(rol)
}

func (s *permisoService) Guardar(ctx context.Context, actor Actor, rol string, req dto.GuardarPermisosRequest) (*dto.PermisosRolResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjPermiso, authz.ActGestionar); err != nil {
		return nil, err
	}
	if !authz.RolValido(rol) {
		return nil, noEncontrado("rol %s no encontrado", rol)
	}
	if rol == model.RolAdministrador {
		return nil, invalido("los permisos de administrador no se pueden editar")
	}

	filas := make([]model.PermisoRol, 0, len(req.Cambios))
	for _, c := range req.Cambios {
		p := authz.Permiso{Objeto: c.Objeto, Accion: c.Accion}
		if !authz.EnCatalogo(c.Objeto, c.Accion) {
			return nil, invalido("permiso %s:%s desconocido", c.Objeto, c.Accion)
		}
		if authz.Reservado(p) {
			return nil, invalido("el permiso %s:%s es exclusivo de administrador", c.Objeto, c.Accion)
		}
		if !c.Permitido {
			directo, err := s.authz.Directo(rol, c.Objeto, c.Accion)
			if err != nil {
				return nil, fmt.Errorf("permisos: %w", err)
			}
			if !directo && s.authz.Permitido(rol, c.Objeto, c.Accion) {
				return nil, invalido("el permiso %s:%s es heredado de otro rol", c.Objeto, c.Accion)
			}
		}
		filas = append(filas, model.PermisoRol{
			Rol:          rol,
			Objeto:       c.Objeto,
			Accion:       c.Accion,
			Permitido:    c.Permitido,
			UsuarioEmail: actor.Email,
		})
	}

	if err := s.repo.Guardar(ctx, filas); err != nil {
		return nil, fmt.Errorf("permisos: %w", err)
	}
	for _, f := range filas {
		if err := s.aplicar(f); err != nil {
			return nil, err
		}
	}
	log.Info().Str("rol", rol).Str("usuario", actor.Email).Int("cambios", len(filas)).Msg("permisos actualizados")
	return s.tabla(rol)
}

func (s *permisoService) Cargar(ctx context.Context) error {
	filas, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("permisos: %w", err)
	}
	for _, f := range filas {
		if !authz.RolValido(f.Rol) || f.Rol == model.RolAdministrador ||
			!authz.EnCatalogo(f.Objeto, f.Accion) || authz.Reservado(authz.Permiso{Objeto: f.Objeto, Accion: f.Accion}) {
			log.Warn().Str("rol", f.Rol).Str("objeto", f.Objeto).Str("accion", f.Accion).Msg("permiso almacenado ignorado")
			continue
		}
		if err := s.aplicar(f); err != nil {
			return err
		}
	}
	log.Info().Int("overrides", len(filas)).Msg("permisos cargados")
	return nil
}

func (s *permisoService) aplicar(f model.PermisoRol) error {
	var err error
	if f.Permitido {
		err = s.authz.Conceder(f.Rol, f.Objeto, f.Accion)
	} else {
		err = s.authz.Revocar(f.Rol, f.Objeto, f.Accion)
	}
	if err != nil {
		return fmt.Errorf("permisos: aplicar %s:%s a %s: %w", f.Objeto, f.Accion, f.Rol, err)
	}
	return nil
}

func (s *permisoService) tabla(rol string) (*dto.PermisosRolResponse, error) {
	resp := &dto.PermisosRolResponse{Rol: rol, Permisos: make([]dto.PermisoResponse, 0, len(authz.Catalogo))}
	for _, p := range authz.Catalogo {
		permitido := s.authz.Permitido(rol, p.Objeto, p.Accion)
		directo, err := s.authz.Directo(rol, p.Objeto, p.Accion)
		if err != nil {
			return nil, fmt.Errorf("permisos: %w", err)
		}
		resp.Permisos = append(resp.Permisos, dto.PermisoResponse{
			Objeto:    p.Objeto,
			Accion:    p.Accion,
			Permitido: permitido,
			Heredado:  permitido && !directo,
		})
	}
	return resp, nil
}
