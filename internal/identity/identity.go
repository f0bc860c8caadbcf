package identity

import (
	"context"
	"errors"
	"strings"
)

// The fixed error taxonomy every provider maps onto. Handlers translate
// these into status codes; anything else is a generic provider failure
// carrying the raw upstream message.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too weak")
	ErrProviderDisabled   = errors.New("auth provider not enabled")
)

// Identity is what a successful sign-up or sign-in yields: a stable user
// id, a resolved display name and a bearer token for the HTTP surface.
type Identity struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Token       string `json:"token"`
	ExpiresIn   int64  `json:"expiresIn"` // seconds
}

type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
}

// resolveDisplayName picks the first usable name: the explicit one from
// the request, then whatever the provider holds, then the email
// local-part.
func resolveDisplayName(explicit, provider, email string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	if name := strings.TrimSpace(provider); name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
