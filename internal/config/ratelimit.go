package config

import (
    "time"
)

// RateLimitConfig describes one admission limiter instance: a fixed
// window length and the maximum number of requests a single source
// address may make within it.  Message is the advisory text returned
// to rejected clients.
type RateLimitConfig struct {
    Window  time.Duration
    Max     int
    Message string
}

// LoadLoginRateLimit returns the limiter settings for the login
// endpoint: 5 requests per 15 minutes per source, overridable with
// LOGIN_WINDOW (Go duration) and LOGIN_MAX.
func LoadLoginRateLimit() RateLimitConfig {
    return RateLimitConfig{
        Window:  envDur("LOGIN_WINDOW", 15*time.Minute),
        Max:     envInt("LOGIN_MAX", 5),
        Message: "Trop de tentatives de connexion, veuillez réessayer après 15 minutes.",
    }
}

// LoadRegisterRateLimit returns the limiter settings for the
// registration endpoint: 3 requests per hour per source, overridable
// with REGISTER_WINDOW and REGISTER_MAX.
func LoadRegisterRateLimit() RateLimitConfig {
    return RateLimitConfig{
        Window:  envDur("REGISTER_WINDOW", time.Hour),
        Max:     envInt("REGISTER_MAX", 3),
        Message: "Trop de tentatives d'inscription, veuillez réessayer après une heure.",
    }
}

func envDur(key string, def time.Duration) time.Duration {
    v := getenv(key, "")
    if v == "" {
        return def
    }
    if d, err := time.ParseDuration(v); err == nil && d > 0 {
        return d
    }
    return def
}
