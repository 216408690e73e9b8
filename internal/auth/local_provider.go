package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gallery/internal/domain"
	"gallery/internal/domain/models"
	"gallery/internal/domain/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	localIssuer     = "gallery"
	defaultTokenTTL = 24 * time.Hour
)

// LocalProvider authenticates the single configured gallery account and
// issues HS256 tokens for it.
type LocalProvider struct {
	email        string
	passwordHash []byte
	identity     models.Identity
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

var (
	_ services.IdentityProvider = (*LocalProvider)(nil)
	_ services.TokenIssuer      = (*LocalProvider)(nil)
	_ JWTVerifier               = (*LocalProvider)(nil)
)

// NewLocalProvider hashes password with bcrypt and keeps only the hash.
func NewLocalProvider(email, password, secret string, logger *slog.Logger) (*LocalProvider, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("gallery user email and password are required")
	}
	if secret == "" {
		return nil, errors.New("AUTH_SECRET cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName, _, _ := strings.Cut(email, "@")

	return &LocalProvider{
		email:        email,
		passwordHash: hash,
		identity: models.Identity{
			// Stable across restarts for the same email
			UserID:      uuid.NewSHA1(uuid.NameSpaceURL, []byte("gallery:"+email)).String(),
			Email:       email,
			DisplayName: displayName,
		},
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
		now:    time.Now,
		logger: logger,
	}, nil
}

// SignIn checks credentials against the configured account.
func (p *LocalProvider) SignIn(ctx context.Context, creds models.Credentials) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email != p.email {
		p.logger.Warn("sign-in rejected: unknown user", "email", email)
		return nil, &domain.UnauthorizedError{Message: "invalid email or password"}
	}
	if err := bcrypt.CompareHashAndPassword(p.passwordHash, []byte(creds.Password)); err != nil {
		p.logger.Warn("sign-in rejected: wrong password", "email", email)
		return nil, &domain.UnauthorizedError{Message: "invalid email or password"}
	}

	p.logger.Info("user signed in", "user_id", p.identity.UserID, "email", email)
	identity := p.identity
	return &identity, nil
}

// SignOut is a no-op: issued tokens are stateless and expire on their own.
func (p *LocalProvider) SignOut(ctx context.Context, identity *models.Identity) error {
	if identity != nil {
		p.logger.Info("user signed out", "user_id", identity.UserID)
	}
	return nil
}

// IssueToken signs an HS256 token for identity.
func (p *LocalProvider) IssueToken(identity *models.Identity) (string, error) {
	if identity == nil {
		return "", domain.ErrUnauthorized
	}

	now := p.now()
	claims := &models.GalleryClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a token issued by IssueToken.
func (p *LocalProvider) VerifyToken(tokenString string) (*models.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.GalleryClaims{},
		func(*jwt.Token) (interface{}, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !token.Valid {
		p.logger.Debug("local token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.GalleryClaims)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims.Identity(), nil
}

// Close implements JWTVerifier.
func (p *LocalProvider) Close() error {
	return nil
}
