package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestTokenRoundTrip(t *testing.T) {
	raw, err := NewToken(testSecret, 42, "alice@example.com", "client", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "client", claims.Role)
}

func TestVerifyTokenRejections(t *testing.T) {
	valid, err := NewToken(testSecret, 1, "a@b.c", "admin", time.Hour)
	require.NoError(t, err)

	expired, err := NewToken(testSecret, 1, "a@b.c", "admin", -time.Minute)
	require.NoError(t, err)

	// Token signed with RS256-style "none" spoofing: build an unsigned
	// token manually and check the HMAC gate rejects it.
	noneTok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": 1.0})
	unsigned, err := noneTok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"wrong secret", mustSign(t, "other-secret")},
		{"expired", expired},
		{"unsigned alg", unsigned},
		{"tampered signature", valid[:len(valid)-3] + "xyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyToken(testSecret, tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func mustSign(t *testing.T, secret string) string {
	t.Helper()
	raw, err := NewToken(secret, 1, "a@b.c", "admin", time.Hour)
	require.NoError(t, err)
	return raw
}
