package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"questifyAPI/internal/notification"
	"questifyAPI/internal/store"
	"questifyAPI/internal/types/appstate"
)

// Store is the pgx-backed local store used in deployed environments.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables on first boot. Every statement is
// idempotent, so running it on every start is safe.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			state      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			display_name  TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id         UUID PRIMARY KEY,
			user_id    TEXT NOT NULL,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			message    TEXT NOT NULL DEFAULT '',
			is_read    BOOLEAN NOT NULL DEFAULT FALSE,
			data       JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user
			ON notifications (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS devices (
			user_id    TEXT NOT NULL,
			token      TEXT NOT NULL,
			platform   TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, token)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) SaveSnapshot(ctx context.Context, key string, state *appstate.AppState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	query := `
        INSERT INTO snapshots (key, state, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key)
        DO UPDATE SET
            state = EXCLUDED.state,
            updated_at = NOW()
    `
	if _, err := s.db.Exec(ctx, query, key, raw); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *Store) LoadSnapshot(ctx context.Context, key string) (*appstate.AppState, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT state FROM snapshots WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var state appstate.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		// A row we cannot decode is as good as no row. Log it and move
		// on so one bad write never locks a user out.
		log.Printf("corrupt snapshot for key %s, treating as absent: %v", key, err)
		return nil, nil
	}
	return &state, nil
}

func (s *Store) CreateAccount(ctx context.Context, acc *store.Account) error {
	query := `
        INSERT INTO accounts (id, email, display_name, password_hash)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (email) DO NOTHING
        RETURNING id
    `
	var id string
	err := s.db.QueryRow(ctx, query, acc.ID, acc.Email, acc.DisplayName, acc.PasswordHash).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrEmailExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (*store.Account, error) {
	var acc store.Account
	query := `
        SELECT id, email, display_name, password_hash, created_at
        FROM accounts
        WHERE email = $1
    `
	err := s.db.QueryRow(ctx, query, email).Scan(
		&acc.ID, &acc.Email, &acc.DisplayName, &acc.PasswordHash, &acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &acc, nil
}

func (s *Store) InsertNotification(ctx context.Context, n *notification.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to serialize notification data: %w", err)
	}

	query := `
        INSERT INTO notifications (id, user_id, type, title, message, is_read, data)
        VALUES ($1, $2, $3, $4, $5, FALSE, $6)
    `
	if _, err := s.db.Exec(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Message, data); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *Store) NotificationsForUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
        SELECT id, user_id, type, title, message, is_read, data, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &data, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				log.Printf("bad notification data for %s: %v", n.ID, err)
			}
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	if err := s.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	id, err := uuid.Parse(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	if _, err := s.db.Exec(ctx, query, id, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	if _, err := s.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *Store) RegisterDevice(ctx context.Context, d *store.Device) error {
	query := `
        INSERT INTO devices (user_id, token, platform)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, token)
        DO UPDATE SET platform = $3
    `
	if _, err := s.db.Exec(ctx, query, d.UserID, d.Token, d.Platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *Store) DevicesForUser(ctx context.Context, userID string) ([]store.Device, error) {
	query := `
        SELECT user_id, token, platform, created_at
        FROM devices
        WHERE user_id = $1
    `
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	devices := []store.Device{}
	for rows.Next() {
		var d store.Device
		if err := rows.Scan(&d.UserID, &d.Token, &d.Platform, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}
