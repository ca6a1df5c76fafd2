package service

import (
	"context"
	"testing"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbrir_SoloUnaSesionAbierta(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	actual, err := e.caja.Actual(ctx)
	require.NoError(t, err)
	assert.Nil(t, actual)

	id := e.abrir(t, cajero, "100.00")

	_, err = e.caja.Abrir(ctx, otroCajero, dto.AbrirCajaRequest{MontoInicial: dec("50")})
	assert.ErrorIs(t, err, ErrSessionAlreadyOpen)

	actual, err = e.caja.Actual(ctx)
	require.NoError(t, err)
	require.NotNil(t, actual)
	assert.Equal(t, id, actual.ID)
	assert.Equal(t, model.SesionAbierta, actual.Estado)
}

func TestAbrir_MontoNegativo(t *testing.T) {
	e := nuevoEntorno(t)
	_, err := e.caja.Abrir(context.Background(), cajero, dto.AbrirCajaRequest{MontoInicial: dec("-1")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAbrir_ActorAnonimo(t *testing.T) {
	e := nuevoEntorno(t)
	_, err := e.caja.Abrir(context.Background(), Actor{}, dto.AbrirCajaRequest{})
	assert.ErrorIs(t, err, ErrForbidden)
}

// 100 inicial + 250 POS + 30 cobros − 80 digitales − 20 deudas − 15 gastos = 265.00
func TestCerrar_Cuadre(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	e.producto(t, "GASEOSA", 10, "2.00", "3.00")

	// An older debt, paid in cash during the session under test.
	previa := e.abrir(t, cajero, "0")
	vieja, err := e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: previa, ClienteRef: "Luis", Monto: dec("30")})
	require.NoError(t, err)
	e.cerrar(t, cajero, previa, "0", "0")

	id := e.abrir(t, cajero, "100.00")

	_, err = e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: id, ClienteRef: "Rosa", Monto: dec("20")})
	require.NoError(t, err)
	_, err = e.deudas.PagarDeuda(ctx, cajero, uuid.MustParse(vieja.DeudaID), dto.PagarDeudaRequest{SesionCajaID: id, Monto: dec("30")})
	require.NoError(t, err)

	_, err = e.pagos.Registrar(ctx, cajero, dto.RegistrarPagoRequest{SesionCajaID: id, Monto: dec("50"), Metodo: model.MetodoYape})
	require.NoError(t, err)
	orden, err := e.orden(id, item("GASEOSA", 10, "3.00"))
	require.NoError(t, err)
	_, err = e.ventas.ConfirmarOrden(ctx, cajero, uuid.MustParse(orden.VentaID), dto.ConfirmarOrdenRequest{MetodoPago: model.MetodoPlin})
	require.NoError(t, err)

	_, err = e.egresos.Registrar(ctx, cajero, dto.RegistrarEgresoRequest{SesionCajaID: id, Tipo: model.EgresoGastoGeneral, Monto: dec("15"), Descripcion: "limpieza"})
	require.NoError(t, err)

	resumen, err := e.caja.ResumenCierre(ctx, uuid.MustParse(id))
	require.NoError(t, err)
	assert.True(t, resumen.CobrosDeudaEfectivo.Equal(dec("30")), resumen.CobrosDeudaEfectivo.String())
	assert.True(t, resumen.VentasDigitales.Equal(dec("80")), resumen.VentasDigitales.String())
	assert.True(t, resumen.TotalDeudasNuevas.Equal(dec("20")))
	assert.True(t, resumen.TotalGastos.Equal(dec("15")))
	assert.True(t, resumen.TotalVentasApp.Equal(dec("30")))
	assert.Equal(t, int64(1), resumen.QVentas)

	cierre := e.cerrar(t, cajero, id, "250.00", "265.05")
	assert.Equal(t, "265.00", cierre.MontoEsperado.StringFixed(2))
	assert.Equal(t, "0.05", cierre.Diferencia.StringFixed(2))
	assert.Equal(t, model.CuadreCuadrada, cierre.Clasificacion)
}

func TestCerrar_SegundoCierreFalla(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "100")
	primero := e.cerrar(t, cajero, id, "0", "90")
	assert.Equal(t, model.CuadreFaltante, primero.Clasificacion)

	_, err := e.caja.Cerrar(ctx, cajero, uuid.MustParse(id), dto.CerrarCajaRequest{MontoContado: dec("500")})
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	hist, err := e.caja.Historial(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, hist.Data, 1)
	s := hist.Data[0]
	assert.Equal(t, model.SesionCerrada, s.Estado)
	assert.Equal(t, "100.00", s.MontoEsperado.StringFixed(2))
	assert.Equal(t, "-10.00", s.Diferencia.StringFixed(2))
}

func TestCerrar_SoloDuenoOSupervisor(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")

	_, err := e.caja.Cerrar(ctx, otroCajero, uuid.MustParse(id), dto.CerrarCajaRequest{})
	assert.ErrorIs(t, err, ErrForbidden)

	c := e.cerrar(t, supervisor, id, "0", "0")
	assert.Equal(t, model.CuadreCuadrada, c.Clasificacion)
}

func TestEnSesionAbierta_RechazaSesionCerrada(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")
	e.cerrar(t, cajero, id, "0", "0")

	_, err := e.egresos.Registrar(ctx, cajero, dto.RegistrarEgresoRequest{SesionCajaID: id, Tipo: model.EgresoGastoGeneral, Monto: dec("1"), Descripcion: "tarde"})
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: id, ClienteRef: "x", Monto: dec("1")})
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = e.egresos.Registrar(ctx, cajero, dto.RegistrarEgresoRequest{SesionCajaID: uuid.NewString(), Tipo: model.EgresoGastoGeneral, Monto: dec("1"), Descripcion: "nada"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCerrar_ReabrirDespuesDeCerrar(t *testing.T) {
	e := nuevoEntorno(t)
	id := e.abrir(t, cajero, "0")
	e.cerrar(t, cajero, id, "0", "0")
	otra := e.abrir(t, otroCajero, "20")
	assert.NotEqual(t, id, otra)
}

func TestCuadrar(t *testing.T) {
	base := dto.ResumenCierreResponse{MontoInicial: dec("100")}
	cases := []struct {
		contado string
		dif     string
		clase   string
	}{
		{"100.00", "0.00", model.CuadreCuadrada},
		{"100.10", "0.10", model.CuadreCuadrada},
		{"99.90", "-0.10", model.CuadreCuadrada},
		{"100.11", "0.11", model.CuadreSobrante},
		{"99.89", "-0.11", model.CuadreFaltante},
	}
	require.Equal(t, "0.10", ToleranciaCuadre().StringFixed(2))
	for _, tc := range cases {
		t.Run(tc.contado, func(t *testing.T) {
			esperado, dif, clase := Cuadrar(base, dec("0"), dec(tc.contado))
			assert.Equal(t, "100.00", esperado.StringFixed(2))
			assert.Equal(t, tc.dif, dif.StringFixed(2))
			assert.Equal(t, tc.clase, clase)
		})
	}
}
