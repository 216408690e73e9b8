package auth

import "gallery/internal/domain/models"

// JWTVerifier defines the interface for bearer token verification.
// This abstraction lets the middleware accept tokens from the local provider
// and from Supabase without knowing which one issued them.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns the identity it carries.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.Identity, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}
