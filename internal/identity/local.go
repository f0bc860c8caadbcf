package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"questifyAPI/internal/store"
)

const localTokenTTL = 24 * time.Hour

const minPasswordLength = 6

// LocalProvider is the self-hosted identity mode: accounts live in the
// local store with bcrypt password hashes, and sessions are HS256 JWTs
// signed with AUTH_JWT_SECRET. Without a secret the provider stays
// registered but refuses everything with ErrProviderDisabled.
type LocalProvider struct {
	store  store.Store
	secret []byte
}

func NewLocalProvider(st store.Store, secret string) *LocalProvider {
	return &LocalProvider{store: st, secret: []byte(secret)}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	if len(p.secret) == 0 {
		return nil, ErrProviderDisabled
	}
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acc := &store.Account{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  resolveDisplayName(displayName, "", email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := p.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return p.issue(acc)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	if len(p.secret) == 0 {
		return nil, ErrProviderDisabled
	}
	acc, err := p.store.AccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if acc == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return p.issue(acc)
}

func (p *LocalProvider) issue(acc *store.Account) (*Identity, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   acc.ID,
		"email": acc.Email,
		"name":  acc.DisplayName,
		"iat":   now.Unix(),
		"exp":   now.Add(localTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Identity{
		UserID:      acc.ID,
		DisplayName: acc.DisplayName,
		Email:       acc.Email,
		Token:       signed,
		ExpiresIn:   int64(localTokenTTL / time.Second),
	}, nil
}

// Verify parses and validates a session JWT, returning the account id it
// was issued for. Implements the middleware's token verifier.
func (p *LocalProvider) Verify(ctx context.Context, tokenString string) (string, error) {
	if len(p.secret) == 0 {
		return "", ErrProviderDisabled
	}
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
