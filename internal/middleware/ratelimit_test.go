package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batiflow/batiflow-api/internal/config"
)

func limiterFixture(cfg config.RateLimitConfig) (echo.HandlerFunc, *echo.Echo) {
	e := echo.New()
	// nil Redis client exercises the in-memory window
	h := RateLimit("login", cfg, nil)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return h, e
}

func hit(t *testing.T, e *echo.Echo, h echo.HandlerFunc, ip string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/utilisateurs/login", nil)
	req.Header.Set("X-Real-IP", ip)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestRateLimitBlocksSixthAttempt(t *testing.T) {
	cfg := config.RateLimitConfig{
		Window:  15 * time.Minute,
		Max:     5,
		Message: "Trop de tentatives de connexion, veuillez réessayer après 15 minutes.",
	}
	h, e := limiterFixture(cfg)

	for i := 0; i < 5; i++ {
		rec := hit(t, e, h, "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
	}
	rec := hit(t, e, h, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"message":"Trop de tentatives de connexion, veuillez réessayer après 15 minutes."}`, rec.Body.String())
}

func TestRateLimitCountsPerSourceIP(t *testing.T) {
	cfg := config.RateLimitConfig{Window: time.Minute, Max: 1, Message: "trop"}
	h, e := limiterFixture(cfg)

	assert.Equal(t, http.StatusOK, hit(t, e, h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(t, e, h, "10.0.0.1").Code)
	// a different source still has its own budget
	assert.Equal(t, http.StatusOK, hit(t, e, h, "10.0.0.2").Code)
}

func TestRateLimitWindowExpiry(t *testing.T) {
	cfg := config.RateLimitConfig{Window: 30 * time.Millisecond, Max: 1, Message: "trop"}
	h, e := limiterFixture(cfg)

	assert.Equal(t, http.StatusOK, hit(t, e, h, "10.0.0.9").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(t, e, h, "10.0.0.9").Code)

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(t, e, h, "10.0.0.9").Code)
}
