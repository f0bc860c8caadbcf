package store

import (
	"context"
	"errors"
	"time"

	"questifyAPI/internal/notification"
	"questifyAPI/internal/types/appstate"
)

// ErrEmailExists is returned by CreateAccount when the email is already
// registered. The identity layer maps it onto its own error taxonomy.
var ErrEmailExists = errors.New("email already registered")

// Account is a locally managed credential row. Only the self-hosted
// identity provider uses it; in Google mode accounts live upstream.
type Account struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Device is a registered push target for one user.
type Device struct {
	UserID    string    `json:"userId" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Store is the local persistence surface: whole-snapshot rows keyed by a
// namespaced user key, plus the small relational tables the service needs
// around them. Implementations: postgres (deployed) and sqlite
// (self-hosted or dev), selected by configuration.
type Store interface {
	// SaveSnapshot serializes and upserts the whole snapshot under key.
	SaveSnapshot(ctx context.Context, key string, state *appstate.AppState) error
	// LoadSnapshot returns (nil, nil) when the key is absent or the stored
	// payload does not decode; corrupt rows are logged and treated as
	// absent rather than surfaced as errors.
	LoadSnapshot(ctx context.Context, key string) (*appstate.AppState, error)

	CreateAccount(ctx context.Context, acc *Account) error
	// AccountByEmail returns (nil, nil) when no such account exists.
	AccountByEmail(ctx context.Context, email string) (*Account, error)

	InsertNotification(ctx context.Context, n *notification.Notification) error
	NotificationsForUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error

	RegisterDevice(ctx context.Context, d *Device) error
	DevicesForUser(ctx context.Context, userID string) ([]Device, error)

	Ping(ctx context.Context) error
	Close()
}
