package auth

import (
	"errors"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// Verify checks an upstream-issued HS256 token and extracts the caller
// identity. Token issuance belongs to the identity service; the engine only
// consumes.
func Verify(tokenStr string) (Caller, error) {
	key := []byte(os.Getenv("JWT_SECRET"))
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return Caller{}, errors.New("invalid token")
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Caller{}, errors.New("invalid claims")
	}
	sub, _ := mapc["sub"].(string)
	tenant, _ := mapc["tenant_id"].(string)
	roleStr, _ := mapc["role"].(string)
	role, ok := ParseRole(roleStr)
	if sub == "" || tenant == "" || !ok {
		return Caller{}, errors.New("incomplete identity claims")
	}
	return Caller{UserID: sub, TenantID: tenant, Role: role}, nil
}
