package router

import (
	"context"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/config"
	"github.com/machelox/Proyecto-Cyberia/internal/handler"
	"github.com/machelox/Proyecto-Cyberia/internal/metrics"
	"github.com/machelox/Proyecto-Cyberia/internal/middleware"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"
	"github.com/machelox/Proyecto-Cyberia/internal/service"
	"github.com/machelox/Proyecto-Cyberia/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure handles built by the composition root.
// Redis, Mailer and Dispatcher may be nil in tests.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Mailer     handler.EstadoMailer
	Metrics    *metrics.Metrics
	Enforcer   *authz.Enforcer
	Dispatcher *worker.Dispatcher
}

// Servicios is shared between the HTTP layer and the background workers.
type Servicios struct {
	Auth       service.AuthService
	Caja       service.CajaService
	Inventario service.InventarioService
	Ventas     service.VentaService
	Deudas     service.DeudaService
	Pagos      service.PagoService
	Egresos    service.EgresoService
	Productos  service.ProductoService
	Reportes   service.ReporteService
	Clientes   service.ClienteService
	Permisos   service.PermisoService
}

// NewServicios wires Service ← Repository ← DB/Redis.
func NewServicios(cfg *config.Config, d Deps) *Servicios {
	db := d.DB
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	historialPrecioRepo := repository.NewHistorialPrecioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	ledgers := service.Ledgers{
		Ventas:  repository.NewVentaRepository(db),
		Deudas:  repository.NewDeudaRepository(db),
		Pagos:   repository.NewPagoManualRepository(db),
		Egresos: repository.NewEgresoRepository(db),
	}

	reintentos := cfg.ConflictMaxRetries
	cajaSvc := service.NewCajaService(cajaRepo, ledgers, d.Enforcer, d.Dispatcher, d.Metrics, reintentos)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo, d.Enforcer, d.Metrics, reintentos)

	return &Servicios{
		Auth:       service.NewAuthService(usuarioRepo, d.Enforcer, cfg),
		Caja:       cajaSvc,
		Inventario: inventarioSvc,
		Ventas:     service.NewVentaService(ledgers.Ventas, inventarioSvc, cajaSvc, d.Enforcer, d.Metrics),
		Deudas:     service.NewDeudaService(ledgers.Deudas, cajaSvc, d.Enforcer, d.Metrics),
		Pagos:      service.NewPagoService(ledgers.Pagos, cajaSvc, d.Enforcer, d.Metrics),
		Egresos:    service.NewEgresoService(ledgers.Egresos, cajaSvc, d.Enforcer, d.Metrics),
		Productos:  service.NewProductoService(productoRepo, historialPrecioRepo, inventarioSvc, d.Enforcer, d.Redis),
		Reportes:   service.NewReporteService(cajaRepo, ledgers),
		Clientes:   service.NewClienteService(repository.NewClienteRepository(db), d.Enforcer),
		Permisos:   service.NewPermisoService(repository.NewPermisoRepository(db), d.Enforcer),
	}
}

// New returns a configured Gin engine. ctx bounds the rate limiter
// housekeeping goroutines.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(ctx context.Context, cfg *config.Config, d Deps, s *Servicios) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	limitePorMinuto := cfg.RateLimitPerMinute
	if limitePorMinuto <= 0 {
		limitePorMinuto = 600
	}
	apiLimiter := middleware.NewLimitador("api", limitePorMinuto, time.Minute, d.Redis)
	loginLimiter := middleware.NewLimitador("login", 20, time.Minute, d.Redis)
	go apiLimiter.Purgar(ctx, 5*time.Minute)
	go loginLimiter.Purgar(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.OrigenesCORS()))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Handler())
	r.Use(middleware.Metrics(d.Metrics))

	// ── Handlers ─────────────────────────────────────────────────────────────
	var encolador handler.EncoladorPagos
	if d.Dispatcher != nil {
		encolador = d.Dispatcher
	}
	authH := handler.NewAuthHandler(s.Auth)
	cajaH := handler.NewCajaHandler(s.Caja)
	ventasH := handler.NewVentasHandler(s.Ventas)
	deudasH := handler.NewDeudasHandler(s.Deudas)
	pagosH := handler.NewPagosHandler(s.Pagos, encolador, cfg.NotifySecret)
	egresosH := handler.NewEgresosHandler(s.Egresos)
	productosH := handler.NewProductosHandler(s.Productos)
	inventarioH := handler.NewInventarioHandler(s.Inventario)
	reportesH := handler.NewReportesHandler(s.Reportes)
	usuariosH := handler.NewUsuariosHandler(s.Auth)
	clientesH := handler.NewClientesHandler(s.Clientes)
	permisosH := handler.NewPermisosHandler(s.Permisos)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Mailer))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Handler(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Wallet notifier: authenticated by shared secret, not JWT.
	r.POST("/v1/pagos/notificaciones", pagosH.Notificacion)

	todos := middleware.RequireRole(model.RolCajero, model.RolSupervisor, model.RolAdministrador)
	administradores := middleware.RequireRole(model.RolAdministrador)
	gestionProductos := middleware.RequirePermiso(d.Enforcer, authz.ObjProducto, authz.ActGestionar)
	gestionClientes := middleware.RequirePermiso(d.Enforcer, authz.ObjCliente, authz.ActGestionar)

	// Protected routes. Route gates and services both read the casbin policy,
	// so grants made through /v1/permisos apply to both.
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), todos)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", cajaH.Abrir)
			caja.GET("/actual", cajaH.Actual)
			caja.GET("/historial", cajaH.Historial)
			caja.GET("/:id/resumen", cajaH.Resumen)
			caja.POST("/:id/cerrar", cajaH.Cerrar)
		}

		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasH.CrearOrden)
			ventas.GET("", ventasH.Listar)
			ventas.GET("/:id", ventasH.Obtener)
			ventas.POST("/:id/confirmar", ventasH.Confirmar)
			ventas.POST("/:id/cancelar", ventasH.Cancelar)
		}

		deudas := v1.Group("/deudas")
		{
			deudas.POST("", deudasH.Crear)
			deudas.GET("/pendientes", deudasH.Pendientes)
			deudas.GET("/historial", deudasH.Historial)
			deudas.POST("/:id/pagos", deudasH.Pagar)
		}

		pagos := v1.Group("/pagos")
		{
			pagos.POST("", pagosH.Registrar)
			pagos.GET("", pagosH.Listar)
			pagos.GET("/totales", pagosH.Totales)
			pagos.DELETE("/:id", pagosH.Eliminar)
		}

		egresos := v1.Group("/egresos")
		{
			egresos.POST("", egresosH.Registrar)
			egresos.GET("", egresosH.Listar)
			egresos.GET("/totales", egresosH.Totales)
			egresos.DELETE("/:id", egresosH.Eliminar)
		}

		prods := v1.Group("/productos")
		{
			prods.GET("", productosH.Listar)
			prods.GET("/categorias", productosH.Categorias)
			prods.GET("/barcode/:codigo", productosH.ObtenerPorBarcode)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.GET("/:id/historial-precios", productosH.HistorialPrecios)
			prods.POST("", gestionProductos, productosH.Crear)
			prods.PUT("/:id", gestionProductos, productosH.Actualizar)
			prods.DELETE("/:id", gestionProductos, productosH.Desactivar)
		}

		inv := v1.Group("/inventario")
		{
			inv.POST("/movimientos", inventarioH.AplicarMovimiento)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
			inv.GET("/alertas", inventarioH.Alertas)
		}

		rep := v1.Group("/reportes", middleware.RequirePermiso(d.Enforcer, authz.ObjReporte, authz.ActVer))
		{
			rep.GET("/sesiones/:id/productos", reportesH.ProductosPorSesion)
			rep.GET("/flujo", reportesH.FlujoDinero)
			rep.GET("/rentabilidad", reportesH.Rentabilidad)
			rep.GET("/metricas", reportesH.MetricasBI)
			rep.GET("/dashboard", reportesH.Dashboard)
		}

		clientes := v1.Group("/clientes")
		{
			clientes.GET("", clientesH.Listar)
			clientes.POST("", clientesH.Registrar)
			clientes.GET("/:dni", clientesH.ObtenerPorDNI)
			clientes.PUT("/:dni", gestionClientes, clientesH.Actualizar)
			clientes.DELETE("/:dni", gestionClientes, clientesH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", administradores)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}

		permisos := v1.Group("/permisos", administradores)
		{
			permisos.GET("/roles", permisosH.Roles)
			permisos.GET("/:rol", permisosH.PorRol)
			permisos.PUT("/:rol", permisosH.Guardar)
		}
	}

	// Swagger UI: only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
