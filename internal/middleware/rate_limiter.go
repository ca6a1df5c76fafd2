package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Limitador counts requests per client IP in fixed windows. With a Redis
// client the counters are shared by every instance; without one (tests,
// Redis down) it falls back to an in-process map.
type Limitador struct {
	nombre  string
	limite  int
	ventana time.Duration
	rdb     *redis.Client

	mu      sync.Mutex
	locales map[string]*ventanaLocal
}

type ventanaLocal struct {
	count int
	fin   time.Time
}

func NewLimitador(nombre string, limite int, ventana time.Duration, rdb *redis.Client) *Limitador {
	return &Limitador{nombre: nombre, limite: limite, ventana: ventana, rdb: rdb, locales: make(map[string]*ventanaLocal)}
}

// Handler rejects requests over the limit with 429 and a Retry-After header.
func (l *Limitador) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		n, restante := l.contar(c.Request.Context(), c.ClientIP())
		if n > l.limite {
			c.Header("Retry-After", strconv.Itoa(int(restante.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(apierror.CodeRateLimited, "Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

func (l *Limitador) contar(ctx context.Context, ip string) (int, time.Duration) {
	if l.rdb != nil {
		key := "ratelimit:" + l.nombre + ":" + ip
		pipe := l.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.ventana)
		ttl := pipe.TTL(ctx, key)
		_, err := pipe.Exec(ctx)
		if err == nil {
			return int(incr.Val()), ttl.Val()
		}
		log.Debug().Err(err).Str("limitador", l.nombre).Msg("rate limiter redis no disponible, usando memoria")
	}
	return l.contarLocal(ip, time.Now())
}

func (l *Limitador) contarLocal(ip string, now time.Time) (int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locales[ip]
	if !ok || now.After(e.fin) {
		e = &ventanaLocal{fin: now.Add(l.ventana)}
		l.locales[ip] = e
	}
	e.count++
	return e.count, e.fin.Sub(now)
}

// Purgar drops expired in-memory windows until ctx is done.
func (l *Limitador) Purgar(ctx context.Context, cada time.Duration) {
	ticker := time.NewTicker(cada)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			purgados := 0
			for ip, e := range l.locales {
				if now.After(e.fin) {
					delete(l.locales, ip)
					purgados++
				}
			}
			restantes := len(l.locales)
			l.mu.Unlock()
			if purgados > 0 {
				log.Debug().Str("limitador", l.nombre).Int("purgados", purgados).Int("restantes", restantes).Msg("rate limiter purgado")
			}
		}
	}
}
