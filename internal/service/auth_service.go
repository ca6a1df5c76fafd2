package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/config"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Token kinds carried in the "tipo" claim. Only access tokens open the API.
const (
	TokenAcceso    = "access"
	TokenRefresh   = "refresh"
	bcryptCostBase = 12
	passwordMinimo = 8
)

// AuthService issues tokens and administers the staff accounts that own them.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)

	CrearUsuario(ctx context.Context, actor Actor, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, actor Actor, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	// DesactivarUsuario blocks login and refresh; issued access tokens live
	// until they expire.
	DesactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error
	ReactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error
}

type authService struct {
	repo  repository.UsuarioRepository
	authz *authz.Enforcer
	cfg   *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, enforcer *authz.Enforcer, cfg *config.Config) AuthService {
	return &authService{repo: repo, authz: enforcer, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrUnauthorized
	}
	return s.emitir(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, &Error{Kind: KindUnauthorized, Msg: "refresh token inválido o expirado"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["tipo"] != TokenRefresh {
		return nil, &Error{Kind: KindUnauthorized, Msg: "token mal formado"}
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, &Error{Kind: KindUnauthorized, Msg: "token mal formado"}
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, &Error{Kind: KindUnauthorized, Msg: "usuario no encontrado o inactivo"}
	}
	return s.emitir(user)
}

func (s *authService) emitir(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

func (s *authService) CrearUsuario(ctx context.Context, actor Actor, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjUsuario, authz.ActGestionar); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Nombre) == "" {
		return nil, invalido("email y nombre son obligatorios")
	}
	if !authz.RolValido(req.Rol) {
		return nil, invalido("rol inválido: %q", req.Rol)
	}
	hash, err := hashValidado(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Email:        email,
		Nombre:       strings.TrimSpace(req.Nombre),
		PasswordHash: hash,
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalido("el email %s ya está registrado", email)
		}
		return nil, notFoundOr(err, "usuario")
	}
	log.Info().Str("usuario", email).Str("rol", user.Rol).Str("por", actor.Email).Msg("usuario creado")
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, actor Actor, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjUsuario, authz.ActGestionar); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx, incluirInactivos)
	if err != nil {
		return nil, notFoundOr(err, "usuarios")
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	if err := autorizar(s.authz, actor, authz.ObjUsuario, authz.ActGestionar); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "usuario")
	}
	if req.Nombre != "" {
		user.Nombre = strings.TrimSpace(req.Nombre)
	}
	if req.Rol != "" && req.Rol != user.Rol {
		if !authz.RolValido(req.Rol) {
			return nil, invalido("rol inválido: %q", req.Rol)
		}
		if id == actor.ID {
			return nil, invalido("no puede cambiar su propio rol")
		}
		user.Rol = req.Rol
	}
	if req.Password != "" {
		if user.PasswordHash, err = hashValidado(req.Password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, notFoundOr(err, "usuario")
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := autorizar(s.authz, actor, authz.ObjUsuario, authz.ActGestionar); err != nil {
		return err
	}
	if id == actor.ID {
		return invalido("no puede desactivar su propia cuenta")
	}
	return s.cambiarActivo(ctx, actor, id, false)
}

func (s *authService) ReactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := autorizar(s.authz, actor, authz.ObjUsuario, authz.ActGestionar); err != nil {
		return err
	}
	return s.cambiarActivo(ctx, actor, id, true)
}

func (s *authService) cambiarActivo(ctx context.Context, actor Actor, id uuid.UUID, activo bool) error {
	n, err := s.repo.SetActivo(ctx, id, activo)
	if err != nil {
		return notFoundOr(err, "usuario")
	}
	if n == 0 {
		return noEncontrado("usuario no encontrado")
	}
	log.Info().Str("usuario_id", id.String()).Bool("activo", activo).Str("por", actor.Email).Msg("estado de usuario actualizado")
	return nil
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:     u.ID.String(),
		Email:  u.Email,
		Nombre: u.Nombre,
		Rol:    u.Rol,
		Activo: u.Activo,
	}
}

// hashValidado enforces the minimum password length before hashing.
func hashValidado(plain string) (string, error) {
	if len(plain) < passwordMinimo {
		return "", invalido("la contraseña debe tener al menos %d caracteres", passwordMinimo)
	}
	return HashPassword(plain)
}

func (s *authService) generateToken(user *model.Usuario, tipo string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"rol":     user.Rol,
		"tipo":    tipo,
		"exp":     now.Add(duration).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// HashPassword is shared by the seeding commands.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCostBase)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
