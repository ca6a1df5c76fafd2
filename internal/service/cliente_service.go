package service

import (
	"context"
	"errors"
	"strings"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"

	"gorm.io/gorm"
)

// ClienteService keeps the customer registry. The DNI is the natural key.
type ClienteService interface {
	Registrar(ctx context.Context, actor Actor, req dto.RegistrarClienteRequest) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, actor Actor, buscar string) ([]dto.ClienteResponse, error)
	ObtenerPorDNI(ctx context.Context, actor Actor, dni string) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, actor Actor, dni string, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, actor Actor, dni string) error
}

type clienteService struct {
	repo  repository.ClienteRepository
	authz *authz.Enforcer
}

func NewClienteService(repo repository.ClienteRepository, enforcer *authz.Enforcer) ClienteService {
	return &clienteService{repo: repo, authz: enforcer}
}

func (s *clienteService) Registrar(ctx context.Context, actor Actor, req dto.RegistrarClienteRequest) (*dto.ClienteResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjCliente, authz.ActCrear); err != nil {
		return nil, err
	}
	dni := strings.TrimSpace(req.DNI)
	nombres := strings.TrimSpace(req.Nombres)
	if dni == "" || nombres == "" {
		return nil, invalido("DNI y nombres son obligatorios")
	}
	c := &model.Cliente{
		DNI:     dni,
		Nombres: nombres,
		Alias:   strings.TrimSpace(req.Alias),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Celular: strings.TrimSpace(req.Celular),
		Activo:  true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalido("ya existe un cliente con DNI %s", dni)
		}
		return nil, notFoundOr(err, "cliente")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context, actor Actor, buscar string) ([]dto.ClienteResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjCliente, authz.ActVer); err != nil {
		return nil, err
	}
	clientes, err := s.repo.List(ctx, buscar)
	if err != nil {
		return nil, notFoundOr(err, "clientes")
	}
	out := make([]dto.ClienteResponse, len(clientes))
	for i := range clientes {
		out[i] = *clienteToResponse(&clientes[i])
	}
	return out, nil
}

func (s *clienteService) ObtenerPorDNI(ctx context.Context, actor Actor, dni string) (*dto.ClienteResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjCliente, authz.ActVer); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByDNI(ctx, dni)
	if err != nil {
		return nil, notFoundOr(err, "cliente")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Actualizar(ctx context.Context, actor Actor, dni string, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjCliente, authz.ActGestionar); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByDNI(ctx, dni)
	if err != nil {
		return nil, notFoundOr(err, "cliente")
	}
	if req.Nombres != nil {
		if strings.TrimSpace(*req.Nombres) == "" {
			return nil, invalido("los nombres no pueden quedar vacíos")
		}
		c.Nombres = strings.TrimSpace(*req.Nombres)
	}
	if req.Alias != nil {
		c.Alias = strings.TrimSpace(*req.Alias)
	}
	if req.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Celular != nil {
		c.Celular = strings.TrimSpace(*req.Celular)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, notFoundOr(err, "cliente")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Desactivar(ctx context.Context, actor Actor, dni string) error {
	if err := autorizar(s.authz, actor, authz.ObjCliente, authz.ActGestionar); err != nil {
		return err
	}
	c, err := s.repo.FindByDNI(ctx, dni)
	if err != nil {
		return notFoundOr(err, "cliente")
	}
	if _, err := s.repo.SetActivo(ctx, c.ID, false); err != nil {
		return notFoundOr(err, "cliente")
	}
	return nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	texto := c.Nombres
	if c.Alias != "" {
		texto += " (" + c.Alias + ")"
	}
	return &dto.ClienteResponse{
		ID:      c.ID.String(),
		DNI:     c.DNI,
		Nombres: c.Nombres,
		Alias:   c.Alias,
		Email:   c.Email,
		Celular: c.Celular,
		Texto:   texto,
	}
}
