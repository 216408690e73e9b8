package handler

import (
	"log/slog"
	"net/http"

	"gallery/internal/domain/models"
	"gallery/internal/domain/services"
	"gallery/internal/httputil"
)

// AuthHandler signs users in and reports the current identity
type AuthHandler struct {
	provider services.IdentityProvider
	issuer   services.TokenIssuer
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(provider services.IdentityProvider, issuer services.TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		issuer:   issuer,
		logger:   logger,
	}
}

// LoginResponse is returned by a successful sign-in
type LoginResponse struct {
	Token string           `json:"token"`
	User  *models.Identity `json:"user"`
}

// Login checks credentials and issues a bearer token
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := httputil.ParseJSON(w, r, &creds); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	identity, err := h.provider.SignIn(r.Context(), creds)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	token, err := h.issuer.IssueToken(identity)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Info("user signed in", "user_id", identity.UserID)
	httputil.RespondJSON(w, http.StatusOK, LoginResponse{Token: token, User: identity})
}

// Me returns the identity attached to the request
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r)
	if identity == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, identity)
}
