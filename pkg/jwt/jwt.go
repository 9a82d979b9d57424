// Package jwt provides JWT token generation and validation for the
// authorization API. Tokens are tenant-scoped: claims carry the subject
// user and the tenant the token was issued for.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
	// ErrEmptyUserID is returned when user_id is empty.
	ErrEmptyUserID = errors.New("user_id cannot be empty")
	// ErrEmptyTenantID is returned when tenant_id is empty.
	ErrEmptyTenantID = errors.New("tenant_id cannot be empty")
)

// Claims represents the JWT claims structure.
type Claims struct {
	UserID   string `json:"id"`
	TenantID string `json:"tenant"`

	jwt.RegisteredClaims
}

// Generator creates and validates tenant-scoped tokens.
type Generator struct {
	secret []byte
	issuer string
}

// NewGenerator creates a new token generator.
func NewGenerator(secret, issuer string) *Generator {
	return &Generator{secret: []byte(secret), issuer: issuer}
}

// GenerateToken creates a signed tenant-scoped access token.
func (g *Generator) GenerateToken(userID, tenantID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}
	if tenantID == "" {
		return "", ErrEmptyTenantID
	}

	now := time.Now()
	claims := Claims{
		UserID:   userID,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// ValidateToken validates the token and returns the claims.
func (g *Generator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
