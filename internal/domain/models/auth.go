package models

import "github.com/golang-jwt/jwt/v5"

// Identity is the signed-in user as seen by the gallery.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Credentials are the email/password pair accepted by the local identity provider.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GalleryClaims are the claims of tokens issued by the local identity provider.
type GalleryClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Identity converts the claims into an Identity.
func (c *GalleryClaims) Identity() *Identity {
	return &Identity{
		UserID:      c.Subject,
		Email:       c.Email,
		DisplayName: c.DisplayName,
	}
}

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email        string                   `json:"email"`
	Phone        string                   `json:"phone"`
	AppMetadata  map[string]interface{}   `json:"app_metadata"`
	UserMetadata map[string]interface{}   `json:"user_metadata"`
	Role         string                   `json:"role"` // "authenticated" or "anon"
	AAL          string                   `json:"aal"`
	AMR          []map[string]interface{} `json:"amr"`
	SessionID    string                   `json:"session_id"`
	IsAnonymous  bool                     `json:"is_anonymous"`
}

// Identity converts Supabase claims into an Identity.
func (c *SupabaseClaims) Identity() *Identity {
	return &Identity{
		UserID: c.Subject,
		Email:  c.Email,
	}
}
