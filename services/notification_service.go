package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"questifyAPI/internal/notification"
	"questifyAPI/internal/progression"
	"questifyAPI/internal/store"
)

// PushProvider delivers a push message to a set of device tokens.
// internal/notification.FCMService is the production implementation.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationService turns progression outcomes into persisted
// notification rows and fire-and-forget pushes. Push is optional: with
// no provider set, rows are still written so the in-app feed works.
type NotificationService struct {
	store store.Store
	push  PushProvider
}

func NewNotificationService(st store.Store) *NotificationService {
	return &NotificationService{store: st}
}

// SetPushProvider injects the real FCM provider from main.go.
func (s *NotificationService) SetPushProvider(provider PushProvider) {
	s.push = provider
}

// HandleOutcome records the user-visible events an action produced.
// Level-ups, badge unlocks and weekly streak milestones get a row each;
// everything else is too noisy to notify about.
func (s *NotificationService) HandleOutcome(userID string, out progression.Outcome) {
	notifs := buildNotifications(userID, out)
	if len(notifs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := range notifs {
		if err := s.store.InsertNotification(ctx, &notifs[i]); err != nil {
			log.Printf("Failed to insert notification for user %s: %v", userID, err)
			continue
		}
		s.sendPush(ctx, &notifs[i])
	}
}

func buildNotifications(userID string, out progression.Outcome) []notification.Notification {
	now := time.Now()
	var notifs []notification.Notification

	if out.LeveledUp {
		notifs = append(notifs, notification.Notification{
			ID:      uuid.New(),
			UserID:  userID,
			Type:    notification.NotificationLevelUp,
			Title:   "Level up!",
			Message: fmt.Sprintf("You reached level %d", out.LevelAfter),
			Data: map[string]any{
				"level": out.LevelAfter,
			},
			CreatedAt: now,
		})
	}

	for _, b := range out.UnlockedBadges {
		notifs = append(notifs, notification.Notification{
			ID:      uuid.New(),
			UserID:  userID,
			Type:    notification.NotificationBadgeUnlocked,
			Title:   "Badge unlocked!",
			Message: fmt.Sprintf("%s: %s", b.Name, b.Description),
			Data: map[string]any{
				"badgeId": b.ID,
			},
			CreatedAt: now,
		})
	}

	// Streak is only set when a habit was completed, so this also fires
	// when the completion itself leveled the user up.
	if out.Streak > 0 && out.Streak%7 == 0 {
		notifs = append(notifs, notification.Notification{
			ID:      uuid.New(),
			UserID:  userID,
			Type:    notification.NotificationStreakMilestone,
			Title:   fmt.Sprintf("%d day streak!", out.Streak),
			Message: "Keep the momentum going",
			Data: map[string]any{
				"streak": out.Streak,
			},
			CreatedAt: now,
		})
	}

	return notifs
}

func (s *NotificationService) sendPush(ctx context.Context, n *notification.Notification) {
	if s.push == nil {
		return
	}

	devices, err := s.store.DevicesForUser(ctx, n.UserID)
	if err != nil {
		log.Printf("Failed to load devices for user %s: %v", n.UserID, err)
		return
	}
	if len(devices) == 0 {
		return
	}

	tokens := make([]notification.DeviceToken, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, notification.DeviceToken{Token: d.Token, Platform: d.Platform})
	}

	if err := s.push.SendPush(ctx, tokens, n.Title, n.Message, n.Data); err != nil {
		log.Printf("Push failed for user %s: %v", n.UserID, err)
	}
}

// List returns the user's recent notifications with the unread count.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) (*notification.NotificationListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	notifs, err := s.store.NotificationsForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return &notification.NotificationListResponse{
		Notifications: notifs,
		UnreadCount:   unread,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkNotificationRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}

// RegisterDevice stores a push token; re-registering the same token
// updates its platform.
func (s *NotificationService) RegisterDevice(ctx context.Context, userID string, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("device token is required")
	}
	return s.store.RegisterDevice(ctx, &store.Device{
		UserID:    userID,
		Token:     req.Token,
		Platform:  req.Platform,
		CreatedAt: time.Now(),
	})
}
