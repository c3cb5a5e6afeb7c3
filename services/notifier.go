package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SproutGo/config"
	"SproutGo/models"
	"SproutGo/storage"
	"SproutGo/utils"
)

// Notifier receives pipeline milestones. It is injected at construction;
// there is no process-wide event emitter.
type Notifier interface {
	TasksReady(ctx context.Context, userID string, count int)
	BatchCompleted(ctx context.Context, userID string, areas []models.DevelopmentArea)
	BonusReady(ctx context.Context, userID string, count int)
}

// NotificationService persists notification records and tracks the per-user
// morning schedule. Failures degrade to a log line, never an error to the
// caller.
type NotificationService struct {
	store       storage.NotificationStore
	morningHour int
	now         func() time.Time
}

func NewNotificationService(store storage.NotificationStore, morningHour int) *NotificationService {
	return &NotificationService{
		store:       store,
		morningHour: morningHour,
		now:         time.Now,
	}
}

func (n *NotificationService) TasksReady(ctx context.Context, userID string, count int) {
	n.record(ctx, userID, "tasks_ready",
		"Today's activities are ready",
		fmt.Sprintf("%d new activities are waiting for you.", count))
}

func (n *NotificationService) BatchCompleted(ctx context.Context, userID string, areas []models.DevelopmentArea) {
	labels := make([]string, len(areas))
	for i, area := range areas {
		labels[i] = area.Label()
	}
	n.record(ctx, userID, "batch_completed",
		"All activities completed! 🎉",
		fmt.Sprintf("Amazing work today! Progress earned in: %s.", strings.Join(labels, ", ")))
}

func (n *NotificationService) BonusReady(ctx context.Context, userID string, count int) {
	n.record(ctx, userID, "bonus_ready",
		"Bonus round unlocked",
		fmt.Sprintf("%d bonus activities were added for the champion.", count))
}

func (n *NotificationService) record(ctx context.Context, userID, kind, title, body string) {
	notification := &models.Notification{
		ID:        utils.GenerateID(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: n.now(),
	}
	if err := n.store.CreateNotification(ctx, notification); err != nil {
		config.Logger.Errorw("notification write failed", "error", err, "userID", userID, "kind", kind)
		return
	}
	config.Logger.Infow("notification dispatched", "userID", userID, "kind", kind)
}

// Recent returns the latest notifications for a user.
func (n *NotificationService) Recent(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	return n.store.RecentNotifications(ctx, userID, limit)
}

// morningScheduleKey holds the next timestamp a morning generation check is
// eligible for a user.
func morningScheduleKey(userID string) string {
	return "morning_schedule:" + userID
}

// MorningDue reports whether the daily morning check may run. A missing or
// unreadable key counts as due.
func (n *NotificationService) MorningDue(ctx context.Context, userID string) bool {
	raw, err := config.RedisClient.Get(ctx, morningScheduleKey(userID)).Result()
	if err != nil {
		return true
	}
	next, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true
	}
	return !n.now().Before(next)
}

// ScheduleNextMorning stamps the next eligible morning check at the
// configured hour tomorrow.
func (n *NotificationService) ScheduleNextMorning(ctx context.Context, userID string) {
	now := n.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), n.morningHour, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	err := config.RedisClient.Set(ctx, morningScheduleKey(userID), next.Format(time.RFC3339), 48*time.Hour).Err()
	if err != nil {
		config.Logger.Errorw("morning schedule write failed", "error", err, "userID", userID)
	}
}
