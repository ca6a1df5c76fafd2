package service

import (
	"context"
	"testing"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"
	"github.com/machelox/Proyecto-Cyberia/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type entorno struct {
	db *gorm.DB

	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	deudasRepo  repository.DeudaRepository

	caja       CajaService
	inventario InventarioService
	ventas     VentaService
	deudas     DeudaService
	pagos      PagoService
	egresos    EgresoService
	catalogo   ProductoService
	reportes   ReporteService
}

var (
	cajero     = Actor{ID: uuid.New(), Email: "cajero@cyberia.pe", Rol: model.RolCajero}
	otroCajero = Actor{ID: uuid.New(), Email: "turno2@cyberia.pe", Rol: model.RolCajero}
	supervisor = Actor{ID: uuid.New(), Email: "super@cyberia.pe", Rol: model.RolSupervisor}
)

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	db := testutil.NewDB(t)
	enf := authz.MustNew()

	e := &entorno{
		db:          db,
		productos:   repository.NewProductoRepository(db),
		movimientos: repository.NewMovimientoStockRepository(db),
		deudasRepo:  repository.NewDeudaRepository(db),
	}
	ledgers := Ledgers{
		Ventas:  repository.NewVentaRepository(db),
		Deudas:  e.deudasRepo,
		Pagos:   repository.NewPagoManualRepository(db),
		Egresos: repository.NewEgresoRepository(db),
	}
	cajaRepo := repository.NewCajaRepository(db)

	e.caja = NewCajaService(cajaRepo, ledgers, enf, nil, nil, 3)
	e.inventario = NewInventarioService(e.productos, e.movimientos, enf, nil, 3)
	e.ventas = NewVentaService(ledgers.Ventas, e.inventario, e.caja, enf, nil)
	e.deudas = NewDeudaService(e.deudasRepo, e.caja, enf, nil)
	e.pagos = NewPagoService(ledgers.Pagos, e.caja, enf, nil)
	e.egresos = NewEgresoService(ledgers.Egresos, e.caja, enf, nil)
	e.catalogo = NewProductoService(e.productos, repository.NewHistorialPrecioRepository(db), e.inventario, enf, nil)
	e.reportes = NewReporteService(cajaRepo, ledgers)
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (e *entorno) abrir(t *testing.T, actor Actor, monto string) string {
	t.Helper()
	s, err := e.caja.Abrir(context.Background(), actor, dto.AbrirCajaRequest{MontoInicial: dec(monto)})
	require.NoError(t, err)
	return s.ID
}

func (e *entorno) cerrar(t *testing.T, actor Actor, sesionID string, pos, contado string) *dto.CierreResponse {
	t.Helper()
	c, err := e.caja.Cerrar(context.Background(), actor, uuid.MustParse(sesionID), dto.CerrarCajaRequest{
		MontoPOS:     dec(pos),
		MontoContado: dec(contado),
	})
	require.NoError(t, err)
	return c
}

func (e *entorno) producto(t *testing.T, sku string, stock int, costo, venta string) {
	t.Helper()
	_, err := e.catalogo.Crear(context.Background(), supervisor, dto.CrearProductoRequest{
		SKU:          sku,
		Nombre:       "Producto " + sku,
		PrecioCosto:  dec(costo),
		PrecioVenta:  dec(venta),
		StockInicial: stock,
	})
	require.NoError(t, err)
}

func (e *entorno) stock(t *testing.T, sku string) int {
	t.Helper()
	p, err := e.productos.FindBySKU(context.Background(), sku)
	require.NoError(t, err)
	return p.StockActual
}

// requireLedgerCuadra checks stock_actual = Σ movimientos for sku.
func (e *entorno) requireLedgerCuadra(t *testing.T, sku string) {
	t.Helper()
	p, err := e.productos.FindBySKU(context.Background(), sku)
	require.NoError(t, err)
	suma, err := e.movimientos.SumCantidad(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(p.StockActual), suma, "stock de %s no coincide con sus movimientos", sku)
}

func (e *entorno) orden(sesionID string, items ...dto.ItemVentaRequest) (*dto.CrearOrdenResponse, error) {
	return e.ventas.CrearOrden(context.Background(), cajero, dto.CrearOrdenRequest{
		SesionCajaID: sesionID,
		ClienteRef:   "PC-03",
		Items:        items,
	})
}

func item(sku string, qty int, precio string) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{SKU: sku, Cantidad: qty, PrecioUnitario: dec(precio)}
}
