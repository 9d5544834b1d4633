package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"songBirdAPI/internal/types/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider PushNotificationProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider injects the real FCM provider from main.go. Without one,
// notifications are stored but never pushed.
func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.pushProvider = provider
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	query := `
	INSERT INTO device_tokens (id, user_id, token, platform, added_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (user_id, token)
	DO UPDATE SET platform = $4, added_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, uuid.New(), userID, req.Token, req.Platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// OnMilestoneCrossed implements the streak service's milestone sink: store an
// in-app notification and push to registered devices. Push failures are
// logged and dropped; milestone delivery is at-most-once.
func (s *NotificationService) OnMilestoneCrossed(ctx context.Context, userID uuid.UUID, milestone int) {
	title := "Streak milestone!"
	message := fmt.Sprintf("You've logged a song %d days in a row. Keep singing!", milestone)
	data := map[string]any{"milestone": milestone}

	if err := s.createNotification(ctx, userID, notification.NotificationStreakMilestone, title, message, data); err != nil {
		log.Printf("NotificationService: failed to store milestone notification for user %s: %v", userID, err)
	}

	if s.pushProvider == nil {
		return
	}

	tokens, err := s.deviceTokens(ctx, userID)
	if err != nil {
		log.Printf("NotificationService: failed to load device tokens for user %s: %v", userID, err)
		return
	}

	if err := s.pushProvider.SendPush(ctx, tokens, title, message, data); err != nil {
		log.Printf("NotificationService: milestone push for user %s failed: %v", userID, err)
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, limit int) ([]*notification.Notification, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if limit <= 0 || limit > 100 {
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
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		n := &notification.Notification{}
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &data, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				log.Printf("NotificationService: bad data payload on notification %s: %v", n.ID, err)
			}
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (s *NotificationService) createNotification(ctx context.Context, userID uuid.UUID, notifType notification.NotificationType, title, message string, data map[string]any) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}

	query := `
	INSERT INTO notifications (id, user_id, type, title, message, is_read, data, created_at)
	VALUES ($1, $2, $3, $4, $5, false, $6, NOW())
	`

	if _, err := s.db.Exec(ctx, query, uuid.New(), userID, notifType, title, message, dataJSON); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	query := `
	SELECT id, user_id, token, platform, added_at
	FROM device_tokens
	WHERE user_id = $1
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load device tokens: %w", err)
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}

	return tokens, rows.Err()
}
