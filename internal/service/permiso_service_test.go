package service

import (
	"context"
	"testing"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"
	"github.com/machelox/Proyecto-Cyberia/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buscarPermiso(t *testing.T, tabla *dto.PermisosRolResponse, obj, act string) dto.PermisoResponse {
	t.Helper()
	for _, p := range tabla.Permisos {
		if p.Objeto == obj && p.Accion == act {
			return p
		}
	}
	t.Fatalf("permiso %s:%s ausente", obj, act)
	return dto.PermisoResponse{}
}

func TestPermisos_TablaPorRol(t *testing.T) {
	svc := NewPermisoService(repository.NewPermisoRepository(testutil.NewDB(t)), authz.MustNew())
	ctx := context.Background()

	_, err := svc.Roles(ctx, supervisor)
	assert.ErrorIs(t, err, ErrForbidden)

	roles, err := svc.Roles(ctx, administrador)
	require.NoError(t, err)
	assert.Equal(t, []string{"cajero", "supervisor", "administrador"}, roles)

	tabla, err := svc.PermisosDeRol(ctx, administrador, model.RolCajero)
	require.NoError(t, err)
	assert.Len(t, tabla.Permisos, len(authz.Catalogo))
	assert.Equal(t, dto.PermisoResponse{Objeto: "caja", Accion: "ver", Permitido: true}, buscarPermiso(t, tabla, "caja", "ver"))
	assert.False(t, buscarPermiso(t, tabla, "reporte", "ver").Permitido)

	tabla, err = svc.PermisosDeRol(ctx, administrador, model.RolSupervisor)
	require.NoError(t, err)
	assert.True(t, buscarPermiso(t, tabla, "caja", "ver").Heredado)
	assert.False(t, buscarPermiso(t, tabla, "reporte", "ver").Heredado)

	_, err = svc.PermisosDeRol(ctx, administrador, "gerente")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPermisos_GuardarYCargar(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewPermisoRepository(db)
	enf := authz.MustNew()
	svc := NewPermisoService(repo, enf)
	ctx := context.Background()

	tabla, err := svc.Guardar(ctx, administrador, model.RolCajero, dto.GuardarPermisosRequest{Cambios: []dto.CambioPermiso{
		{Objeto: "reporte", Accion: "ver", Permitido: true},
		{Objeto: "egreso", Accion: "gestionar", Permitido: false},
	}})
	require.NoError(t, err)
	assert.True(t, buscarPermiso(t, tabla, "reporte", "ver").Permitido)
	assert.True(t, enf.Permitido(model.RolCajero, authz.ObjReporte, authz.ActVer))
	assert.False(t, enf.Permitido(model.RolCajero, authz.ObjEgreso, authz.ActGestionar))

	guardados, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, guardados, 2)
	assert.Equal(t, administrador.Email, guardados[0].UsuarioEmail)

	// a fresh enforcer only sees the overrides after Cargar
	nuevo := authz.MustNew()
	assert.False(t, nuevo.Permitido(model.RolCajero, authz.ObjReporte, authz.ActVer))
	require.NoError(t, NewPermisoService(repo, nuevo).Cargar(ctx))
	assert.True(t, nuevo.Permitido(model.RolCajero, authz.ObjReporte, authz.ActVer))
	assert.False(t, nuevo.Permitido(model.RolCajero, authz.ObjEgreso, authz.ActGestionar))
	assert.True(t, nuevo.Permitido(model.RolCajero, authz.ObjEgreso, authz.ActCrear))
}

func TestPermisos_GuardarRechazos(t *testing.T) {
	svc := NewPermisoService(repository.NewPermisoRepository(testutil.NewDB(t)), authz.MustNew())
	ctx := context.Background()
	cambio := func(obj, act string, permitido bool) dto.GuardarPermisosRequest {
		return dto.GuardarPermisosRequest{Cambios: []dto.CambioPermiso{{Objeto: obj, Accion: act, Permitido: permitido}}}
	}

	_, err := svc.Guardar(ctx, supervisor, model.RolCajero, cambio("reporte", "ver", true))
	assert.ErrorIs(t, err, ErrForbidden)

	casos := []struct {
		nombre string
		rol    string
		req    dto.GuardarPermisosRequest
	}{
		{"rol administrador", model.RolAdministrador, cambio("reporte", "ver", false)},
		{"permiso desconocido", model.RolCajero, cambio("caja", "borrar", true)},
		{"permiso reservado", model.RolSupervisor, cambio("usuario", "gestionar", true)},
		{"revocar heredado", model.RolSupervisor, cambio("caja", "ver", false)},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			_, err := svc.Guardar(ctx, administrador, tc.rol, tc.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err = svc.Guardar(ctx, administrador, "gerente", cambio("reporte", "ver", true))
	assert.ErrorIs(t, err, ErrNotFound)
}
