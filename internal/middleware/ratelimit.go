package middleware

import (
    "net/http"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/batiflow/batiflow-api/internal/config"
)

// fixedWindowScript increments the per-key counter and arms the window
// expiry atomically.  Returns the counter value after the increment.
var fixedWindowScript = redis.NewScript(`
    local hits = redis.call('INCR', KEYS[1])
    if hits == 1 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
    end
    return hits
`)

// windowState tracks one source's hits inside the current window for
// the in-memory fallback.
type windowState struct {
    hits  int
    reset time.Time
}

// RateLimit returns an Echo middleware enforcing a fixed-window limit
// per source IP.  The window is counted in Redis when a client is
// available so the limit holds across replicas; without Redis a local
// in-memory counter is used.  Redis errors fail open: an unavailable
// limiter must not take authentication down with it.
func RateLimit(name string, cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    var (
        mu    sync.Mutex
        local = make(map[string]*windowState)
    )

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := name + ":" + c.RealIP()

            if rdb != nil {
                hits, err := fixedWindowScript.Run(c.Request().Context(), rdb,
                    []string{key}, cfg.Window.Milliseconds()).Int64()
                if err == nil {
                    if hits > int64(cfg.Max) {
                        return tooMany(c, cfg.Message)
                    }
                    return next(c)
                }
                // fall through to the local counter
            }

            now := time.Now()
            mu.Lock()
            st, ok := local[key]
            if !ok || now.After(st.reset) {
                st = &windowState{reset: now.Add(cfg.Window)}
                local[key] = st
                // prune expired windows so the map does not grow
                // unbounded across many source addresses
                for k, s := range local {
                    if now.After(s.reset) && k != key {
                        delete(local, k)
                    }
                }
            }
            st.hits++
            blocked := st.hits > cfg.Max
            mu.Unlock()

            if blocked {
                return tooMany(c, cfg.Message)
            }
            return next(c)
        }
    }
}

func tooMany(c echo.Context, message string) error {
    return c.JSON(http.StatusTooManyRequests, echo.Map{"message": message})
}
