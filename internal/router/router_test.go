package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/config"
	"github.com/machelox/Proyecto-Cyberia/internal/handler"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"
	"github.com/machelox/Proyecto-Cyberia/internal/service"
	"github.com/machelox/Proyecto-Cyberia/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t      *testing.T
	engine *gin.Engine
}

func nuevaAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	usuarios := repository.NewUsuarioRepository(db)
	for email, rol := range map[string]string{
		"cajero@test.local":     model.RolCajero,
		"supervisor@test.local": model.RolSupervisor,
		"admin@test.local":      model.RolAdministrador,
	} {
		hash, err := service.HashPassword("secreto123")
		require.NoError(t, err)
		require.NoError(t, usuarios.Create(context.Background(), &model.Usuario{
			Email: email, Nombre: rol, PasswordHash: hash, Rol: rol, Activo: true,
		}))
	}

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
		NotifySecret:       "notify-secret",
		ConflictMaxRetries: 3,
		RateLimitPerMinute: 1000,
	}
	deps := Deps{DB: db, Enforcer: authz.MustNew()}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &api{t: t, engine: New(ctx, cfg, deps, NewServicios(cfg, deps))}
}

func (a *api) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decodificar(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (a *api) login(email string) tokens {
	a.t.Helper()
	w := a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "password": "secreto123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var tk tokens
	decodificar(a.t, w, &tk)
	return tk
}

func TestRouter_AutenticacionRequerida(t *testing.T) {
	a := nuevaAPI(t)

	w := a.do(http.MethodGet, "/v1/caja/actual", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "cajero@test.local", "password": "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tk := a.login("cajero@test.local")

	// refresh tokens only serve /v1/auth/refresh
	w = a.do(http.MethodGet, "/v1/caja/actual", tk.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": tk.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	var renovado tokens
	decodificar(t, w, &renovado)
	assert.NotEmpty(t, renovado.AccessToken)

	w = a.do(http.MethodGet, "/v1/caja/actual", renovado.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":null}`, w.Body.String())
}

func TestRouter_PermisosPorRol(t *testing.T) {
	a := nuevaAPI(t)
	cajero := a.login("cajero@test.local").AccessToken

	w := a.do(http.MethodPost, "/v1/productos", cajero, map[string]any{
		"sku": "CAF-01", "nombre": "Cafe", "precio_costo": 1, "precio_venta": 2.5,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, "/v1/reportes/flujo", cajero, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	supervisor := a.login("supervisor@test.local").AccessToken
	w = a.do(http.MethodGet, "/v1/reportes/flujo", supervisor, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRouter_CicloDeVenta(t *testing.T) {
	a := nuevaAPI(t)
	cajero := a.login("cajero@test.local").AccessToken
	supervisor := a.login("supervisor@test.local").AccessToken

	w := a.do(http.MethodPost, "/v1/productos", supervisor, map[string]any{
		"sku": "CAF-01", "nombre": "Cafe", "categoria": "Bebidas",
		"precio_costo": 1, "precio_venta": 2.5, "stock_inicial": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// no session yet
	w = a.do(http.MethodPost, "/v1/deudas", cajero, map[string]any{
		"sesion_caja_id": "00000000-0000-0000-0000-000000000001", "cliente_ref": "PC-3", "monto": 10,
	})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/caja/abrir", cajero, map[string]any{"monto_inicial": 50})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sesion struct {
		ID string `json:"id"`
	}
	decodificar(t, w, &sesion)

	w = a.do(http.MethodPost, "/v1/caja/abrir", cajero, map[string]any{"monto_inicial": 50})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/v1/ventas", cajero, map[string]any{
		"sesion_caja_id": sesion.ID,
		"items":          []map[string]any{{"sku": "CAF-01", "cantidad": 3, "precio_unitario": 2.5}},
	})
	require.Equal(t, http.StatusConflict, w.Code)
	var apiErr struct {
		Code string `json:"code"`
		SKU  string `json:"sku"`
	}
	decodificar(t, w, &apiErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", apiErr.Code)
	assert.Equal(t, "CAF-01", apiErr.SKU)

	w = a.do(http.MethodPost, "/v1/ventas", cajero, map[string]any{
		"sesion_caja_id": sesion.ID,
		"items":          []map[string]any{{"sku": "CAF-01", "cantidad": 2, "precio_unitario": 2.5}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var orden struct {
		VentaID string `json:"venta_id"`
	}
	decodificar(t, w, &orden)

	w = a.do(http.MethodPost, "/v1/ventas/"+orden.VentaID+"/confirmar", cajero, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var venta struct {
		Estado string `json:"estado"`
	}
	decodificar(t, w, &venta)
	assert.Equal(t, "confirmada", venta.Estado)

	w = a.do(http.MethodPost, "/v1/ventas/"+orden.VentaID+"/cancelar", cajero, map[string]any{"motivo": "tarde"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodGet, "/v1/productos/barcode/no-existe", cajero, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/v1/caja/"+sesion.ID+"/resumen", cajero, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resumen struct {
		QVentas int64 `json:"q_ventas"`
	}
	decodificar(t, w, &resumen)
	assert.Equal(t, int64(1), resumen.QVentas)

	w = a.do(http.MethodPost, "/v1/caja/"+sesion.ID+"/cerrar", cajero, map[string]any{"monto_pos": 5, "monto_contado": 55})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cierre struct {
		Clasificacion string `json:"clasificacion"`
	}
	decodificar(t, w, &cierre)
	assert.Equal(t, "cuadrada", cierre.Clasificacion)
}

func TestRouter_Validacion(t *testing.T) {
	a := nuevaAPI(t)
	cajero := a.login("cajero@test.local").AccessToken

	w := a.do(http.MethodPost, "/v1/deudas", cajero, map[string]any{"cliente_ref": "PC-3", "monto": 0})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var verr struct {
		Fields map[string]string `json:"fields"`
	}
	decodificar(t, w, &verr)
	assert.Contains(t, verr.Fields, "SesionCajaID")

	w = a.do(http.MethodGet, "/v1/caja/no-es-uuid/resumen", cajero, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_NotificacionPago(t *testing.T) {
	a := nuevaAPI(t)
	body := map[string]any{"metodo": "yape", "monto": 12.5, "codigo": "OP-1"}

	w := a.do(http.MethodPost, "/v1/pagos/notificaciones", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/v1/pagos/notificaciones", "", body, handler.NotifySecretHeader, "otro")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// no dispatcher wired
	w = a.do(http.MethodPost, "/v1/pagos/notificaciones", "", body, handler.NotifySecretHeader, "notify-secret")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_AdministracionDeUsuarios(t *testing.T) {
	a := nuevaAPI(t)
	cajero := a.login("cajero@test.local").AccessToken
	supervisor := a.login("supervisor@test.local").AccessToken
	admin := a.login("admin@test.local").AccessToken

	for _, tk := range []string{cajero, supervisor} {
		w := a.do(http.MethodGet, "/v1/usuarios", tk, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	}

	w := a.do(http.MethodPost, "/v1/usuarios", admin, map[string]any{
		"email": "turno2@test.local", "nombre": "Turno Tarde", "password": "secreto123", "rol": "cajero",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var nuevo struct {
		ID string `json:"id"`
	}
	decodificar(t, w, &nuevo)

	w = a.do(http.MethodPost, "/v1/usuarios", admin, map[string]any{
		"email": "turno2@test.local", "nombre": "Otro", "password": "secreto123", "rol": "cajero",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	a.login("turno2@test.local")

	w = a.do(http.MethodGet, "/v1/usuarios", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lista struct {
		Data []struct {
			Email string `json:"email"`
		} `json:"data"`
	}
	decodificar(t, w, &lista)
	assert.Len(t, lista.Data, 4)

	w = a.do(http.MethodDelete, "/v1/usuarios/"+nuevo.ID, admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "turno2@test.local", "password": "secreto123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPatch, "/v1/usuarios/"+nuevo.ID+"/reactivar", admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	a.login("turno2@test.local")
}

func TestRouter_Clientes(t *testing.T) {
	a := nuevaAPI(t)
	cajero := a.login("cajero@test.local").AccessToken
	supervisor := a.login("supervisor@test.local").AccessToken

	w := a.do(http.MethodPost, "/v1/clientes", cajero, map[string]any{
		"dni": "70123456", "nombres": "Juan Pérez", "alias": "Juancho",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/clientes", cajero, map[string]any{"dni": "12AB", "nombres": "X"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(http.MethodGet, "/v1/clientes?q=juan", cajero, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lista struct {
		Data []struct {
			DNI   string `json:"dni"`
			Texto string `json:"texto"`
		} `json:"data"`
	}
	decodificar(t, w, &lista)
	require.Len(t, lista.Data, 1)
	assert.Equal(t, "Juan Pérez (Juancho)", lista.Data[0].Texto)

	w = a.do(http.MethodPut, "/v1/clientes/70123456", cajero, map[string]any{"alias": "JP"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodPut, "/v1/clientes/70123456", supervisor, map[string]any{"alias": "JP"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/v1/clientes/99999999", cajero, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_PermisosEditables(t *testing.T) {
	a := nuevaAPI(t)
	cajero := a.login("cajero@test.local").AccessToken
	supervisor := a.login("supervisor@test.local").AccessToken
	admin := a.login("admin@test.local").AccessToken

	w := a.do(http.MethodGet, "/v1/permisos/roles", supervisor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, "/v1/permisos/roles", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["cajero","supervisor","administrador"]}`, w.Body.String())

	w = a.do(http.MethodGet, "/v1/reportes/metricas", cajero, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPut, "/v1/permisos/cajero", admin, map[string]any{
		"cambios": []map[string]any{{"objeto": "reporte", "accion": "ver", "permitido": true}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/v1/reportes/metricas", cajero, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var metricas struct {
		Horas []any `json:"actividad_por_hora"`
	}
	decodificar(t, w, &metricas)
	assert.Len(t, metricas.Horas, 24)

	w = a.do(http.MethodGet, "/v1/reportes/dashboard?desde=2026-01-01&hasta=2026-01-03", supervisor, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dash struct {
		Rendimiento []any `json:"rendimiento"`
	}
	decodificar(t, w, &dash)
	assert.Len(t, dash.Rendimiento, 3)
}

func TestRouter_Health(t *testing.T) {
	a := nuevaAPI(t)
	w := a.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]any
	decodificar(t, w, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "error", body["redis"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
