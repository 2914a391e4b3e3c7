package utils // package utils provides helpers for password hashing and identity tokens

import (
    "errors" // sentinel error for failed verification
    "time"   // expiry computation

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned by VerifyToken for every failure mode:
// bad signature, wrong algorithm, expired token, malformed claims.
// Collapsing the causes keeps the auth gate fail-closed without
// leaking which check rejected the token.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the verified identity carried by a token: the user's id,
// email and role, exactly as issued.
type Claims struct {
    UserID int64  // "id" claim
    Email  string // "email" claim
    Role   string // "role" claim
}

// NewToken builds and signs an HS256 JWT binding the user's id, email
// and role. The token expires ttl after issuance (24 hours in the
// application configuration); there is no refresh or revocation, a
// token stays valid until its natural expiry.
func NewToken(secret string, userID int64, email, role string, ttl time.Duration) (string, error) {
    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "id":    userID,
        "email": email,
        "role":  role,
        "exp":   now.Add(ttl).Unix(),
        "iat":   now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// VerifyToken checks the signature and expiry of a token and returns
// the identity claims it binds. Every failure is reported as
// ErrInvalidToken.
func VerifyToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything but HMAC; jwt.Parse would
        // otherwise accept an attacker-chosen algorithm.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    id, ok := mc["id"].(float64) // JSON numbers decode as float64
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    email, _ := mc["email"].(string)
    role, _ := mc["role"].(string)
    return Claims{UserID: int64(id), Email: email, Role: role}, nil
}
