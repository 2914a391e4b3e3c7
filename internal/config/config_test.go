package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "batiflow")
	t.Setenv("JWT_SECRET", "s")

	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 24, cfg.TokenTTLHours)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Empty(t, cfg.DBPass, "password may be empty")

	t.Setenv("APP_PORT", "8080")
	t.Setenv("TOKEN_TTL_HOURS", "48")
	t.Setenv("BCRYPT_COST", "12")
	cfg = Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 48, cfg.TokenTTLHours)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestRateLimitDefaults(t *testing.T) {
	login := LoadLoginRateLimit()
	assert.Equal(t, 15*time.Minute, login.Window)
	assert.Equal(t, 5, login.Max)
	assert.Equal(t, "Trop de tentatives de connexion, veuillez réessayer après 15 minutes.", login.Message)

	register := LoadRegisterRateLimit()
	assert.Equal(t, time.Hour, register.Window)
	assert.Equal(t, 3, register.Max)
	assert.Equal(t, "Trop de tentatives d'inscription, veuillez réessayer après une heure.", register.Message)
}

func TestRateLimitOverrides(t *testing.T) {
	t.Setenv("LOGIN_WINDOW", "1m")
	t.Setenv("LOGIN_MAX", "2")
	login := LoadLoginRateLimit()
	assert.Equal(t, time.Minute, login.Window)
	assert.Equal(t, 2, login.Max)

	// malformed values fall back to the defaults
	t.Setenv("LOGIN_WINDOW", "not-a-duration")
	t.Setenv("LOGIN_MAX", "many")
	login = LoadLoginRateLimit()
	assert.Equal(t, 15*time.Minute, login.Window)
	assert.Equal(t, 5, login.Max)
}
