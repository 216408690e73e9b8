package services

import (
	"context"

	"gallery/internal/domain/models"
)

// IdentityProvider authenticates users.
// Implementations: auth.LocalProvider (configured account, HS256 tokens).
type IdentityProvider interface {
	// SignIn checks credentials and returns the identity.
	// Returns domain.ErrUnauthorized for bad credentials.
	SignIn(ctx context.Context, creds models.Credentials) (*models.Identity, error)

	// SignOut ends the provider-side session, if the provider keeps one.
	SignOut(ctx context.Context, identity *models.Identity) error
}

// TokenIssuer mints bearer tokens for signed-in identities.
type TokenIssuer interface {
	IssueToken(identity *models.Identity) (string, error)
}
