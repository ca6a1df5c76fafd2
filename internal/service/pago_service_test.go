package service

import (
	"context"
	"sync"
	"testing"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// pagosSinConsulta makes every notification look new, as when two workers
// run the lookup before either commits.
type pagosSinConsulta struct {
	repository.PagoManualRepository
}

func (pagosSinConsulta) ExisteCodigoTx(*gorm.DB, string, string) (bool, error) { return false, nil }

func TestPago_RegistrarYEliminar(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")

	p, err := e.pagos.Registrar(ctx, cajero, dto.RegistrarPagoRequest{
		SesionCajaID: id,
		Monto:        dec("12.50"),
		Metodo:       model.MetodoYape,
		ClienteRef:   "PC-07",
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrigenManual, p.Origen)
	assert.Equal(t, cajero.Email, p.UsuarioEmail)

	lista, err := e.pagos.ListarPorSesion(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	require.Len(t, lista.Data, 1)
	assert.Equal(t, "12.50", lista.Total.StringFixed(2))

	require.NoError(t, e.pagos.Eliminar(ctx, cajero, uuid.MustParse(p.ID)))
	lista, err = e.pagos.ListarPorSesion(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	assert.Empty(t, lista.Data)

	err = e.pagos.Eliminar(ctx, cajero, uuid.MustParse(p.ID))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPago_Validaciones(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")

	_, err := e.pagos.Registrar(ctx, cajero, dto.RegistrarPagoRequest{SesionCajaID: id, Monto: dec("0"), Metodo: model.MetodoEfectivo})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.pagos.Registrar(ctx, cajero, dto.RegistrarPagoRequest{SesionCajaID: id, Monto: dec("1"), Metodo: "bitcoin"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	mala := "ayer"
	_, err = e.pagos.Registrar(ctx, cajero, dto.RegistrarPagoRequest{SesionCajaID: id, Monto: dec("1"), Metodo: model.MetodoPlin, Fecha: &mala})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.pagos.Registrar(ctx, cajero, dto.RegistrarPagoRequest{SesionCajaID: uuid.NewString(), Monto: dec("1"), Metodo: model.MetodoPlin})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.pagos.ListarPorRango(ctx, "2026-10-20", "2026-10-19")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPago_RegistrarAutomatico(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	notif := dto.NotificacionPagoRequest{Metodo: model.MetodoYape, Monto: dec("8"), ClienteRef: "Luis", Codigo: "OP-123"}

	_, err := e.pagos.RegistrarAutomatico(ctx, notif)
	assert.ErrorIs(t, err, ErrSessionClosed, "sin sesión abierta la notificación debe reintentarse")

	id := e.abrir(t, cajero, "0")
	pagoID, err := e.pagos.RegistrarAutomatico(ctx, notif)
	require.NoError(t, err)
	require.NotEmpty(t, pagoID)

	repetido, err := e.pagos.RegistrarAutomatico(ctx, notif)
	require.NoError(t, err)
	assert.Empty(t, repetido)

	lista, err := e.pagos.ListarPorSesion(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	require.Len(t, lista.Data, 1)
	assert.Equal(t, model.OrigenAutomatico, lista.Data[0].Origen)
	assert.Equal(t, EmailNotificador, lista.Data[0].UsuarioEmail)

	err = e.pagos.Eliminar(ctx, supervisor, uuid.MustParse(pagoID))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.pagos.RegistrarAutomatico(ctx, dto.NotificacionPagoRequest{Metodo: model.MetodoEfectivo, Monto: dec("1"), Codigo: "X"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPago_RegistrarAutomaticoConcurrenteUnaSolaVez(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")

	pagos := NewPagoService(pagosSinConsulta{repository.NewPagoManualRepository(e.db)}, e.caja, authz.MustNew(), nil)
	notif := dto.NotificacionPagoRequest{Metodo: model.MetodoYape, Monto: dec("40"), Codigo: "OP-123"}

	var wg sync.WaitGroup
	ids := make([]string, 2)
	errs := make([]error, 2)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = pagos.RegistrarAutomatico(ctx, notif)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	registrados := 0
	for _, pid := range ids {
		if pid != "" {
			registrados++
		}
	}
	assert.Equal(t, 1, registrados, "el índice único descarta el segundo registro")

	lista, err := e.pagos.ListarPorSesion(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	require.Len(t, lista.Data, 1)

	resumen, err := e.caja.ResumenCierre(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	assert.Equal(t, "40.00", resumen.VentasDigitales.StringFixed(2))

	// the same code on the other wallet is a different operation
	otro, err := pagos.RegistrarAutomatico(ctx, dto.NotificacionPagoRequest{Metodo: model.MetodoPlin, Monto: dec("5"), Codigo: "OP-123"})
	require.NoError(t, err)
	assert.NotEmpty(t, otro)
}

func TestPago_CanalesBancariosNoSonDigitales(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")

	for _, metodo := range []string{model.MetodoInterbank, model.MetodoBBVA, model.MetodoBCP, model.MetodoScotiabank} {
		_, err := e.pagos.Registrar(ctx, cajero, dto.RegistrarPagoRequest{SesionCajaID: id, Monto: dec("10"), Metodo: metodo})
		require.NoError(t, err, metodo)
	}
	_, err := e.pagos.Registrar(ctx, cajero, dto.RegistrarPagoRequest{SesionCajaID: id, Monto: dec("2.50"), Metodo: model.MetodoPlin})
	require.NoError(t, err)

	tot, err := e.pagos.Totales(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "10.00", tot[model.MetodoBCP].StringFixed(2))
	assert.Len(t, tot, 5)

	resumen, err := e.caja.ResumenCierre(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	assert.Equal(t, "2.50", resumen.VentasDigitales.StringFixed(2))
}

func TestPago_TotalesPorMetodo(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")

	for _, p := range []struct{ metodo, monto string }{
		{model.MetodoYape, "10"},
		{model.MetodoYape, "5.50"},
		{model.MetodoPlin, "3"},
		{model.MetodoEfectivo, "20"},
	} {
		_, err := e.pagos.Registrar(ctx, cajero, dto.RegistrarPagoRequest{SesionCajaID: id, Monto: dec(p.monto), Metodo: p.metodo})
		require.NoError(t, err)
	}

	tot, err := e.pagos.Totales(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "15.50", tot[model.MetodoYape].StringFixed(2))
	assert.Equal(t, "3.00", tot[model.MetodoPlin].StringFixed(2))
	assert.Equal(t, "20.00", tot[model.MetodoEfectivo].StringFixed(2))

	lista, err := e.pagos.ListarPorRango(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, lista.Data, 4)
	assert.Equal(t, "38.50", lista.Total.StringFixed(2))
}
