package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagarDeuda_Sobrepago(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")

	d, err := e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: id, ClienteRef: "Ana", Monto: dec("50.00")})
	require.NoError(t, err)
	deudaID := uuid.MustParse(d.DeudaID)

	_, err = e.deudas.PagarDeuda(ctx, cajero, deudaID, dto.PagarDeudaRequest{SesionCajaID: id, Monto: dec("50.01")})
	assert.ErrorIs(t, err, ErrOverPayment)

	pendientes, err := e.deudas.Pendientes(ctx)
	require.NoError(t, err)
	require.Len(t, pendientes, 1)
	assert.Equal(t, "50.00", pendientes[0].Saldo.StringFixed(2))

	pago, err := e.deudas.PagarDeuda(ctx, cajero, deudaID, dto.PagarDeudaRequest{SesionCajaID: id, Monto: dec("50.00")})
	require.NoError(t, err)
	assert.True(t, pago.SaldoRestante.IsZero())

	pendientes, err = e.deudas.Pendientes(ctx)
	require.NoError(t, err)
	assert.Empty(t, pendientes)
}

func TestPagarDeuda_SaldoMasPagosIgualOriginal(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")

	d, err := e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: id, ClienteRef: "Ana", Monto: dec("100")})
	require.NoError(t, err)
	deudaID := uuid.MustParse(d.DeudaID)

	for _, m := range []string{"10.10", "20.20", "0.30"} {
		_, err := e.deudas.PagarDeuda(ctx, cajero, deudaID, dto.PagarDeudaRequest{SesionCajaID: id, Monto: dec(m), Metodo: "yape"})
		require.NoError(t, err)
	}

	deuda, err := e.deudasRepo.FindByID(ctx, deudaID)
	require.NoError(t, err)
	pagado, err := e.deudasRepo.SumPagos(ctx, deudaID)
	require.NoError(t, err)
	assert.Equal(t, "69.40", deuda.Saldo.StringFixed(2))
	assert.True(t, deuda.Saldo.Add(pagado).Equal(deuda.MontoOriginal), "%s + %s", deuda.Saldo, pagado)
}

func TestPagarDeuda_ConcurrentesNoSobregiran(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")
	d, err := e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: id, ClienteRef: "Ana", Monto: dec("30")})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.deudas.PagarDeuda(ctx, cajero, uuid.MustParse(d.DeudaID), dto.PagarDeudaRequest{SesionCajaID: id, Monto: dec("10")})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, ErrOverPayment), err.Error())
	}
	assert.Equal(t, 3, ok)

	deuda, err := e.deudasRepo.FindByID(ctx, uuid.MustParse(d.DeudaID))
	require.NoError(t, err)
	assert.True(t, deuda.Saldo.IsZero())
}

func TestDeuda_Validaciones(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")

	_, err := e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: id, ClienteRef: "Ana", Monto: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidInput)

	malaFecha := "31/12/2026"
	_, err = e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: id, ClienteRef: "Ana", Monto: dec("1"), FechaVencimiento: &malaFecha})
	assert.ErrorIs(t, err, ErrInvalidInput)

	d, err := e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: id, ClienteRef: "Ana", Monto: dec("5")})
	require.NoError(t, err)
	_, err = e.deudas.PagarDeuda(ctx, cajero, uuid.MustParse(d.DeudaID), dto.PagarDeudaRequest{SesionCajaID: id, Monto: dec("-1")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.deudas.PagarDeuda(ctx, cajero, uuid.New(), dto.PagarDeudaRequest{SesionCajaID: id, Monto: dec("1")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeuda_Historial(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	id := e.abrir(t, cajero, "0")
	d, err := e.deudas.CrearDeuda(ctx, cajero, dto.CrearDeudaRequest{SesionCajaID: id, ClienteRef: "Ana", Monto: dec("5")})
	require.NoError(t, err)
	_, err = e.deudas.PagarDeuda(ctx, cajero, uuid.MustParse(d.DeudaID), dto.PagarDeudaRequest{SesionCajaID: id, Monto: dec("5")})
	require.NoError(t, err)

	h, err := e.deudas.Historial(ctx)
	require.NoError(t, err)
	assert.Len(t, h.Deudas, 1)
	assert.Len(t, h.Pagos, 1)
	assert.Equal(t, "efectivo", h.Pagos[0].Metodo)
}

func TestClasificarVencimiento(t *testing.T) {
	hoy := time.Date(2026, 10, 19, 15, 30, 0, 0, time.Local)
	fecha := func(d int) *time.Time {
		f := time.Date(2026, 10, 19+d, 0, 0, 0, 0, time.Local)
		return &f
	}
	assert.Equal(t, model.VencimientoNormal, ClasificarVencimiento(nil, hoy))
	assert.Equal(t, model.VencimientoVencida, ClasificarVencimiento(fecha(-1), hoy))
	assert.Equal(t, model.VencimientoPorVencer, ClasificarVencimiento(fecha(0), hoy))
	assert.Equal(t, model.VencimientoPorVencer, ClasificarVencimiento(fecha(3), hoy))
	assert.Equal(t, model.VencimientoNormal, ClasificarVencimiento(fecha(4), hoy))
}
