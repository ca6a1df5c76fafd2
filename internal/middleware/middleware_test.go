package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secreto = "test-secret"

func firmar(t *testing.T, tipo, rol string, exp time.Time) string {
	t.Helper()
	claims := JWTClaims{
		UserID: "5b0c6f1e-2f1e-4b7a-9d1e-000000000001",
		Email:  "cajero@test.local",
		Rol:    rol,
		Tipo:   tipo,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secreto))
	require.NoError(t, err)
	return s
}

func motor(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		claims := GetClaims(c)
		rol := ""
		if claims != nil {
			rol = claims.Rol
		}
		c.String(http.StatusOK, rol)
	})
	return r
}

func get(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := motor(JWTAuth(secreto))
	hora := time.Now().Add(time.Hour)

	casos := []struct {
		nombre string
		header string
		status int
	}{
		{"sin header", "", http.StatusUnauthorized},
		{"sin bearer", firmar(t, "access", "cajero", hora), http.StatusUnauthorized},
		{"acceso valido", "Bearer " + firmar(t, "access", "cajero", hora), http.StatusOK},
		{"token de refresco", "Bearer " + firmar(t, "refresh", "cajero", hora), http.StatusUnauthorized},
		{"expirado", "Bearer " + firmar(t, "access", "cajero", time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"basura", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			h := map[string]string{}
			if tc.header != "" {
				h["Authorization"] = tc.header
			}
			w := get(r, h)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "cajero", w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := motor(JWTAuth(secreto), RequireRole("supervisor", "administrador"))
	hora := time.Now().Add(time.Hour)

	w := get(r, map[string]string{"Authorization": "Bearer " + firmar(t, "access", "cajero", hora)})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, map[string]string{"Authorization": "Bearer " + firmar(t, "access", "administrador", hora)})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermiso(t *testing.T) {
	enf := authz.MustNew()
	r := motor(JWTAuth(secreto), RequirePermiso(enf, authz.ObjReporte, authz.ActVer))
	hora := time.Now().Add(time.Hour)
	cajero := map[string]string{"Authorization": "Bearer " + firmar(t, "access", "cajero", hora)}

	assert.Equal(t, http.StatusForbidden, get(r, cajero).Code)
	w := get(r, map[string]string{"Authorization": "Bearer " + firmar(t, "access", "supervisor", hora)})
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, enf.Conceder("cajero", authz.ObjReporte, authz.ActVer))
	assert.Equal(t, http.StatusOK, get(r, cajero).Code)
}

func TestRequestID(t *testing.T) {
	r := motor(RequestID())

	w := get(r, nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = get(r, map[string]string{RequestIDHeader: "req-abc"})
	assert.Equal(t, "req-abc", w.Header().Get(RequestIDHeader))

	w = get(r, map[string]string{RequestIDHeader: strings.Repeat("x", 65)})
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestLimitador_SinRedisUsaMemoria(t *testing.T) {
	lim := NewLimitador("test", 2, time.Minute, nil)
	r := motor(lim.Handler())

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	w := get(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestLimitador_VentanaNueva(t *testing.T) {
	lim := NewLimitador("test", 1, time.Minute, nil)
	t0 := time.Now()

	n, _ := lim.contarLocal("10.0.0.1", t0)
	assert.Equal(t, 1, n)
	n, _ = lim.contarLocal("10.0.0.1", t0.Add(time.Second))
	assert.Equal(t, 2, n)
	// other clients have their own window
	n, _ = lim.contarLocal("10.0.0.2", t0.Add(time.Second))
	assert.Equal(t, 1, n)
	n, restante := lim.contarLocal("10.0.0.1", t0.Add(2*time.Minute))
	assert.Equal(t, 1, n)
	assert.Equal(t, time.Minute, restante)
}

func TestCORS_Origenes(t *testing.T) {
	permitido := "https://caja.cyberia.pe"
	r := motor(CORS([]string{permitido}))

	w := get(r, map[string]string{"Origin": permitido})
	assert.Equal(t, permitido, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = get(r, map[string]string{"Origin": "https://otro.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = get(motor(CORS([]string{"*"})), map[string]string{"Origin": "https://otro.example"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", permitido)
	pre := httptest.NewRecorder()
	r.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.Contains(t, pre.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/x", func(*gin.Context) { panic("boom") })

	w := get(r, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}
