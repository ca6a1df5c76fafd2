package service

import (
	"context"
	"testing"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"
	"github.com/machelox/Proyecto-Cyberia/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nuevoClientes(t *testing.T) ClienteService {
	t.Helper()
	db := testutil.NewDB(t)
	return NewClienteService(repository.NewClienteRepository(db), authz.MustNew())
}

func TestClientes_RegistrarYBuscar(t *testing.T) {
	svc := nuevoClientes(t)
	ctx := context.Background()

	c, err := svc.Registrar(ctx, cajero, dto.RegistrarClienteRequest{
		DNI: "70123456", Nombres: " Juan Pérez ", Alias: "Juancho", Email: "Juan@Mail.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", c.Nombres)
	assert.Equal(t, "juan@mail.com", c.Email)
	assert.Equal(t, "Juan Pérez (Juancho)", c.Texto)

	_, err = svc.Registrar(ctx, cajero, dto.RegistrarClienteRequest{DNI: "70123456", Nombres: "Otro"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	sinAlias, err := svc.Registrar(ctx, cajero, dto.RegistrarClienteRequest{DNI: "40999888", Nombres: "Ana Torres"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", sinAlias.Texto)

	todos, err := svc.Listar(ctx, cajero, "")
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "Ana Torres", todos[0].Nombres)

	for _, q := range []string{"juanch", "PÉREZ", "7012"} {
		encontrados, err := svc.Listar(ctx, cajero, q)
		require.NoError(t, err)
		require.Len(t, encontrados, 1, q)
		assert.Equal(t, "70123456", encontrados[0].DNI)
	}

	_, err = svc.ObtenerPorDNI(ctx, cajero, "00000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientes_GestionSoloSupervisor(t *testing.T) {
	svc := nuevoClientes(t)
	ctx := context.Background()

	_, err := svc.Registrar(ctx, cajero, dto.RegistrarClienteRequest{DNI: "70123456", Nombres: "Juan Pérez"})
	require.NoError(t, err)

	alias := "JP"
	_, err = svc.Actualizar(ctx, cajero, "70123456", dto.ActualizarClienteRequest{Alias: &alias})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Desactivar(ctx, cajero, "70123456"), ErrForbidden)

	vacio := "  "
	_, err = svc.Actualizar(ctx, supervisor, "70123456", dto.ActualizarClienteRequest{Nombres: &vacio})
	assert.ErrorIs(t, err, ErrInvalidInput)

	c, err := svc.Actualizar(ctx, supervisor, "70123456", dto.ActualizarClienteRequest{Alias: &alias})
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez (JP)", c.Texto)

	require.NoError(t, svc.Desactivar(ctx, supervisor, "70123456"))
	activos, err := svc.Listar(ctx, cajero, "")
	require.NoError(t, err)
	assert.Empty(t, activos)

	_, err = svc.Listar(ctx, Actor{}, "")
	assert.ErrorIs(t, err, ErrForbidden)
}
