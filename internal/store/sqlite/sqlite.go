package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go driver, no CGO

	"questifyAPI/internal/notification"
	"questifyAPI/internal/store"
	"questifyAPI/internal/types/appstate"
)

// Store is the sqlite-backed local store for self-hosted and development
// runs. Same behavior as the postgres store behind the same interface.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database file, enables WAL mode and runs the
// idempotent schema bootstrap.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	// Single writer keeps sqlite happy under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			display_name  TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			message    TEXT NOT NULL DEFAULT '',
			is_read    INTEGER NOT NULL DEFAULT 0,
			data       TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user
			ON notifications (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS devices (
			user_id    TEXT NOT NULL,
			token      TEXT NOT NULL,
			platform   TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, token)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
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
        VALUES (?, ?, ?)
        ON CONFLICT (key)
        DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
    `
	if _, err := s.db.ExecContext(ctx, query, key, string(raw), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *Store) LoadSnapshot(ctx context.Context, key string) (*appstate.AppState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM snapshots WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var state appstate.AppState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Printf("corrupt snapshot for key %s, treating as absent: %v", key, err)
		return nil, nil
	}
	return &state, nil
}

func (s *Store) CreateAccount(ctx context.Context, acc *store.Account) error {
	query := `
        INSERT OR IGNORE INTO accounts (id, email, display_name, password_hash, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	res, err := s.db.ExecContext(ctx, query, acc.ID, acc.Email, acc.DisplayName, acc.PasswordHash, acc.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if affected == 0 {
		return store.ErrEmailExists
	}
	return nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (*store.Account, error) {
	var acc store.Account
	var createdAt int64
	query := `
        SELECT id, email, display_name, password_hash, created_at
        FROM accounts
        WHERE email = ?
    `
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&acc.ID, &acc.Email, &acc.DisplayName, &acc.PasswordHash, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	acc.CreatedAt = time.Unix(createdAt, 0)
	return &acc, nil
}

func (s *Store) InsertNotification(ctx context.Context, n *notification.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to serialize notification data: %w", err)
	}

	query := `
        INSERT INTO notifications (id, user_id, type, title, message, is_read, data, created_at)
        VALUES (?, ?, ?, ?, ?, 0, ?, ?)
    `
	if _, err := s.db.ExecContext(ctx, query,
		n.ID.String(), n.UserID, string(n.Type), n.Title, n.Message, string(data), n.CreatedAt.Unix(),
	); err != nil {
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
        WHERE user_id = ?
        ORDER BY created_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		var id, ntype, data string
		var isRead int
		var createdAt int64
		if err := rows.Scan(&id, &n.UserID, &ntype, &n.Title, &n.Message, &isRead, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.ID, _ = uuid.Parse(id)
		n.Type = notification.NotificationType(ntype)
		n.IsRead = isRead != 0
		n.CreatedAt = time.Unix(createdAt, 0)
		if data != "" && data != "null" {
			if err := json.Unmarshal([]byte(data), &n.Data); err != nil {
				log.Printf("bad notification data for %s: %v", id, err)
			}
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	query := `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`
	if _, err := s.db.ExecContext(ctx, query, notificationID, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *Store) RegisterDevice(ctx context.Context, d *store.Device) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	query := `
        INSERT INTO devices (user_id, token, platform, created_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (user_id, token)
        DO UPDATE SET platform = excluded.platform
    `
	if _, err := s.db.ExecContext(ctx, query, d.UserID, d.Token, d.Platform, d.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *Store) DevicesForUser(ctx context.Context, userID string) ([]store.Device, error) {
	query := `
        SELECT user_id, token, platform, created_at
        FROM devices
        WHERE user_id = ?
    `
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	devices := []store.Device{}
	for rows.Next() {
		var d store.Device
		var createdAt int64
		if err := rows.Scan(&d.UserID, &d.Token, &d.Platform, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		d.CreatedAt = time.Unix(createdAt, 0)
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}
