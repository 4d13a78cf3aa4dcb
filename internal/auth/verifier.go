// Package auth verifies bearer tokens against the identity provider's
// JWKS endpoint.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// TokenVerifier validates a JWT and returns its claims. The
// abstraction keeps the middleware agnostic to where keys come from.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}

// JWKSVerifier implements TokenVerifier with keys fetched from a JWKS
// endpoint. keyfunc caches and refreshes keys based on HTTP cache
// headers.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier backed by the given JWKS URL.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (TokenVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}
	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("create JWKS client: %w", err)
	}
	logger.Info("token verifier initialized", "jwks_url", jwksURL)
	return &JWKSVerifier{jwks: jwks, logger: logger}, nil
}

// VerifyToken parses and validates a token. Only RS256 and ES256 are
// accepted; anonymous-role tokens are rejected.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, v.jwks.Keyfunc)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	switch token.Method.Alg() {
	case "RS256", "ES256":
	default:
		v.logger.Warn("token uses unexpected algorithm", "algorithm", token.Method.Alg())
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}
	if claims.Role != "" && claims.Role != "authenticated" {
		v.logger.Debug("token has non-authenticated role", "role", claims.Role)
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Close is a no-op; keyfunc manages its own refresh lifecycle.
func (v *JWKSVerifier) Close() error {
	return nil
}
