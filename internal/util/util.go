package util

import (
	"fmt"

	"github.com/dgrijalva/jwt-go"
)

// Claims are the JWT claims this service cares about: the tenant the token
// is scoped to, alongside the standard subject/expiry fields.
type Claims struct {
	TenantID   int64  `json:"tenant_id"`
	TenantSlug string `json:"tenant_slug"`
	jwt.StandardClaims
}

// ValidateJWT parses and validates a bearer token with the given HMAC secret.
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TenantID == 0 {
		return nil, fmt.Errorf("token has no tenant claim")
	}
	return claims, nil
}
