package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationLevelUp         NotificationType = "level_up"
	NotificationBadgeUnlocked   NotificationType = "badge_unlocked"
	NotificationStreakMilestone NotificationType = "streak_milestone"
)

// DeviceToken is a push target. Platform is "android" or "ios"; an empty
// platform is treated as android.
type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	Data      map[string]any   `json:"data" db:"data"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
