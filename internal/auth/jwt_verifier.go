package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gallery/internal/domain"
	"gallery/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// SupabaseJWTVerifier implements JWTVerifier using JWKS from Supabase.
type SupabaseJWTVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewSupabaseVerifier creates a verifier that fetches public keys from Supabase's JWKS endpoint.
// The JWKS keys are cached and refreshed based on HTTP cache headers.
func NewSupabaseVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("supabase JWT verifier initialized", "jwks_url", jwksURL)

	return &SupabaseJWTVerifier{
		jwks:   jwks,
		logger: logger,
	}, nil
}

// VerifyToken validates a Supabase access token and returns its identity.
func (v *SupabaseJWTVerifier) VerifyToken(tokenString string) (*models.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SupabaseClaims{}, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
	)
	if err != nil {
		v.logger.Debug("supabase token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SupabaseClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Reject anonymous tokens
	if claims.Role != "authenticated" {
		v.logger.Warn("token has invalid role",
			"role", claims.Role,
			"expected", "authenticated",
			"user_id", claims.Subject,
		)
		return nil, domain.ErrUnauthorized
	}

	return claims.Identity(), nil
}

// Close releases resources held by the verifier.
// keyfunc v3 manages its own refresh goroutine, so this only logs.
func (v *SupabaseJWTVerifier) Close() error {
	v.logger.Info("supabase JWT verifier closed")
	return nil
}

// ChainVerifier accepts a token if any of its verifiers does.
type ChainVerifier []JWTVerifier

// VerifyToken tries each verifier in order.
func (c ChainVerifier) VerifyToken(tokenString string) (*models.Identity, error) {
	for _, v := range c {
		identity, err := v.VerifyToken(tokenString)
		if err == nil {
			return identity, nil
		}
	}
	return nil, domain.ErrUnauthorized
}

// Close closes every verifier and returns the first error.
func (c ChainVerifier) Close() error {
	var first error
	for _, v := range c {
		if err := v.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
