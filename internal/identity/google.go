package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// GoogleProvider signs users up and in against the Google Identity
// Toolkit, the REST backend behind Firebase email/password auth. The
// tokens it hands out are Firebase ID tokens; FirebaseVerifier checks
// them on every authenticated request.
type GoogleProvider struct {
	svc *identitytoolkit.Service
}

func NewGoogleProvider(ctx context.Context, apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, errors.New("GOOGLE_API_KEY is required for the google auth provider")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identitytoolkit service: %w", err)
	}
	return &GoogleProvider{svc: svc}, nil
}

func (p *GoogleProvider) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	email = normalizeEmail(email)
	req := &identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: strings.TrimSpace(displayName),
	}
	resp, err := p.svc.Relyingparty.SignupNewUser(req).Context(ctx).Do()
	if err != nil {
		return nil, mapGoogleError(err)
	}

	respEmail := resp.Email
	if respEmail == "" {
		respEmail = email
	}
	return &Identity{
		UserID:      resp.LocalId,
		DisplayName: resolveDisplayName(displayName, resp.DisplayName, respEmail),
		Email:       respEmail,
		Token:       resp.IdToken,
		ExpiresIn:   resp.ExpiresIn,
	}, nil
}

func (p *GoogleProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	resp, err := p.svc.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		return nil, mapGoogleError(err)
	}

	respEmail := resp.Email
	if respEmail == "" {
		respEmail = email
	}
	return &Identity{
		UserID:      resp.LocalId,
		DisplayName: resolveDisplayName("", resp.DisplayName, respEmail),
		Email:       respEmail,
		Token:       resp.IdToken,
		ExpiresIn:   resp.ExpiresIn,
	}, nil
}

// mapGoogleError translates Identity Toolkit error codes onto the fixed
// taxonomy. The toolkit reports conditions as uppercase tokens in the
// error message, sometimes with a trailing explanation (for example
// "WEAK_PASSWORD : Password should be at least 6 characters").
func mapGoogleError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("identity provider error: %w", err)
	}

	msg := apiErr.Message
	switch {
	case strings.Contains(msg, "EMAIL_EXISTS"):
		return ErrEmailTaken
	case strings.Contains(msg, "WEAK_PASSWORD"):
		return ErrWeakPassword
	case strings.Contains(msg, "INVALID_PASSWORD"),
		strings.Contains(msg, "EMAIL_NOT_FOUND"),
		strings.Contains(msg, "INVALID_LOGIN_CREDENTIALS"),
		strings.Contains(msg, "USER_DISABLED"):
		return ErrInvalidCredentials
	case strings.Contains(msg, "OPERATION_NOT_ALLOWED"):
		return ErrProviderDisabled
	default:
		return fmt.Errorf("identity provider error: %s: %w", msg, err)
	}
}

// FirebaseVerifier validates Firebase ID tokens for the auth middleware.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to verify id token: %w", err)
	}
	return decoded.UID, nil
}
