package service

import (
	"context"
	"sort"

	"github.com/machelox/Proyecto-Cyberia/internal/dto"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// topMetricas is the length of each product ranking.
const topMetricas = 5

// ReporteService answers read-only questions across ledgers.
type ReporteService interface {
	ProductosPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.ProductoVendidoResponse, error)
	FlujoDinero(ctx context.Context, desde, hasta string) (*dto.FlujoDineroResponse, error)
	Rentabilidad(ctx context.Context, desde, hasta string) (*dto.RentabilidadResponse, error)
	// MetricasBI ranks products, categories and hours of the day by
	// confirmed sales.
	MetricasBI(ctx context.Context, desde, hasta string) (*dto.MetricasBIResponse, error)
	// Dashboard lists the close-outs of the period with a daily
	// sales/expenses series.
	Dashboard(ctx context.Context, desde, hasta string) (*dto.DashboardResponse, error)
}

type reporteService struct {
	cajas   repository.CajaRepository
	ledgers Ledgers
}

func NewReporteService(cajas repository.CajaRepository, ledgers Ledgers) ReporteService {
	return &reporteService{cajas: cajas, ledgers: ledgers}
}

func (s *reporteService) ProductosPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.ProductoVendidoResponse, error) {
	if _, err := s.cajas.FindByID(ctx, sesionID); err != nil {
		return nil, notFoundOr(err, "sesión de caja")
	}
	rows, err := s.ledgers.Ventas.ProductosPorSesion(ctx, sesionID)
	if err != nil {
		return nil, notFoundOr(err, "productos vendidos")
	}
	out := make([]dto.ProductoVendidoResponse, len(rows))
	for i, r := range rows {
		out[i] = dto.ProductoVendidoResponse{SKU: r.SKU, Nombre: r.Nombre, Cantidad: r.Cantidad, Total: r.Total}
	}
	return out, nil
}

// FlujoDinero:
//
//	neto = ventas confirmadas + cobros de deuda + pagos manuales − egresos
//
// Credit granted is reported apart; it is not money that moved.
func (s *reporteService) FlujoDinero(ctx context.Context, desde, hasta string) (*dto.FlujoDineroResponse, error) {
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}
	ventas, _, err := s.ledgers.Ventas.BrutoYCosto(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "ventas")
	}
	cobros, err := s.ledgers.Deudas.SumCobros(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "cobros de deuda")
	}
	manuales, err := s.ledgers.Pagos.SumPorMetodo(ctx, nil, rango)
	if err != nil {
		return nil, notFoundOr(err, "pagos")
	}
	egresos, err := s.ledgers.Egresos.Sum(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "egresos")
	}
	creditos, err := s.ledgers.Deudas.SumOtorgadas(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "deudas")
	}

	totalManuales := sumaMapa(manuales)
	return &dto.FlujoDineroResponse{
		Desde:             desde,
		Hasta:             hasta,
		IngresosPorVentas: ventas,
		IngresosPorDeudas: cobros,
		IngresosManuales:  totalManuales,
		TotalEgresos:      egresos,
		CreditosOtorgados: creditos,
		FlujoNeto:         ventas.Add(cobros).Add(totalManuales).Sub(egresos).Round(2),
	}, nil
}

func (s *reporteService) Rentabilidad(ctx context.Context, desde, hasta string) (*dto.RentabilidadResponse, error) {
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}
	bruto, costo, err := s.ledgers.Ventas.BrutoYCosto(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "ventas")
	}
	egresos, err := s.ledgers.Egresos.Sum(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "egresos")
	}
	utilidad := bruto.Sub(costo).Round(2)
	return &dto.RentabilidadResponse{
		Desde:                desde,
		Hasta:                hasta,
		TotalVentasBrutas:    bruto,
		TotalCostoMercaderia: costo,
		UtilidadBruta:        utilidad,
		TotalEgresos:         egresos,
		UtilidadNeta:         utilidad.Sub(egresos).Round(2),
	}, nil
}

func (s *reporteService) MetricasBI(ctx context.Context, desde, hasta string) (*dto.MetricasBIResponse, error) {
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}
	porMonto, err := s.ledgers.Ventas.TopProductos(ctx, rango, repository.PorMonto, topMetricas)
	if err != nil {
		return nil, notFoundOr(err, "productos")
	}
	porCantidad, err := s.ledgers.Ventas.TopProductos(ctx, rango, repository.PorCantidad, topMetricas)
	if err != nil {
		return nil, notFoundOr(err, "productos")
	}
	categorias, err := s.ledgers.Ventas.PorCategoria(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "categorías")
	}
	ventas, err := s.ledgers.Ventas.ConfirmadasEnRango(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "ventas")
	}

	resp := &dto.MetricasBIResponse{
		Desde:                desde,
		Hasta:                hasta,
		TopProductosMonto:    productosMetrica(porMonto),
		TopProductosCantidad: productosMetrica(porCantidad),
		VentasPorCategoria:   make([]dto.CategoriaMetrica, len(categorias)),
		ActividadPorHora:     make([]dto.HoraMetrica, 24),
	}
	for i, c := range categorias {
		resp.VentasPorCategoria[i] = dto.CategoriaMetrica{Categoria: c.Categoria, Cantidad: c.Cantidad, Monto: c.Total}
	}
	for h := range resp.ActividadPorHora {
		resp.ActividadPorHora[h] = dto.HoraMetrica{Hora: h, Monto: decimal.Zero}
	}
	for _, v := range ventas {
		h := &resp.ActividadPorHora[v.CreatedAt.Local().Hour()]
		h.Ventas++
		h.Monto = h.Monto.Add(v.Total).Round(2)
	}
	return resp, nil
}

func (s *reporteService) Dashboard(ctx context.Context, desde, hasta string) (*dto.DashboardResponse, error) {
	rango, err := parseRango(desde, hasta)
	if err != nil {
		return nil, err
	}
	cierres, err := s.cajas.ListCerradas(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "cierres")
	}
	ventas, err := s.ledgers.Ventas.ConfirmadasEnRango(ctx, rango)
	if err != nil {
		return nil, notFoundOr(err, "ventas")
	}
	egresos, err := s.ledgers.Egresos.List(ctx, nil, rango)
	if err != nil {
		return nil, notFoundOr(err, "egresos")
	}

	dias := make(map[string]*dto.PuntoDiario)
	dia := func(f string) *dto.PuntoDiario {
		p, ok := dias[f]
		if !ok {
			p = &dto.PuntoDiario{Fecha: f, Ventas: decimal.Zero, Egresos: decimal.Zero}
			dias[f] = p
		}
		return p
	}
	if !rango.Desde.IsZero() && !rango.Hasta.IsZero() {
		for d := rango.Desde; d.Before(rango.Hasta); d = d.AddDate(0, 0, 1) {
			dia(d.Format("2006-01-02"))
		}
	}
	for _, v := range ventas {
		p := dia(v.CreatedAt.Local().Format("2006-01-02"))
		p.Ventas = p.Ventas.Add(v.Total).Round(2)
	}
	for _, e := range egresos {
		p := dia(e.CreatedAt.Local().Format("2006-01-02"))
		p.Egresos = p.Egresos.Add(e.Monto).Round(2)
	}

	resp := &dto.DashboardResponse{
		Desde:       desde,
		Hasta:       hasta,
		Cierres:     make([]dto.SesionCajaResponse, len(cierres)),
		Rendimiento: make([]dto.PuntoDiario, 0, len(dias)),
	}
	for i := range cierres {
		resp.Cierres[i] = *sesionToResponse(&cierres[i])
	}
	for _, p := range dias {
		resp.Rendimiento = append(resp.Rendimiento, *p)
	}
	sort.Slice(resp.Rendimiento, func(i, j int) bool { return resp.Rendimiento[i].Fecha < resp.Rendimiento[j].Fecha })
	return resp, nil
}

func productosMetrica(rows []repository.ProductoVendido) []dto.ProductoMetrica {
	out := make([]dto.ProductoMetrica, len(rows))
	for i, r := range rows {
		out[i] = dto.ProductoMetrica{SKU: r.SKU, Nombre: r.Nombre, Cantidad: r.Cantidad, Monto: r.Total}
	}
	return out
}
