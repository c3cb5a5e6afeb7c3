package storage

import (
	"context"
	"errors"
	"time"

	"SproutGo/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("storage: record not found")
	// ErrDuplicateBatch is returned when a daily task set already exists for
	// the same (user, date). The generation flow treats it as "someone else
	// won the race", not as a failure.
	ErrDuplicateBatch = errors.New("storage: daily batch already exists")
)

// ProfileStore persists parent accounts and child profiles.
type ProfileStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	GetProfile(ctx context.Context, userID string) (*models.ChildProfile, error)
	SaveProfile(ctx context.Context, profile *models.ChildProfile) error
	SetLastTaskDate(ctx context.Context, userID string, date time.Time) error
}

// ProgressStore persists the six-area progress record.
type ProgressStore interface {
	GetProgress(ctx context.Context, userID string) (*models.UserProgress, error)
	CreateProgress(ctx context.Context, progress *models.UserProgress) error
	// UpdateArea writes a single area column. The value must already be clamped.
	UpdateArea(ctx context.Context, userID string, area models.DevelopmentArea, value int) error
	ResetProgress(ctx context.Context, userID string) error
}

// TaskStore persists generated tasks and their daily batch records.
type TaskStore interface {
	// CreateBatch writes the batch record and its tasks in one transaction.
	// Returns ErrDuplicateBatch when a set for the same (user, date) exists.
	CreateBatch(ctx context.Context, set *models.DailyTaskSet, tasks []models.Task) error
	TasksByDailyID(ctx context.Context, userID, dailyID string) ([]models.Task, error)
	RecentTasks(ctx context.Context, userID string, limit int) ([]models.Task, error)
	GetTask(ctx context.Context, taskID string) (*models.Task, error)
	SetTaskCompleted(ctx context.Context, taskID string, completed bool, completedAt *time.Time) error
	HasIncompleteTasks(ctx context.Context, userID string) (bool, error)
	BatchExists(ctx context.Context, userID, dailyID string) (bool, error)
}

// NotificationStore persists local notification records.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	RecentNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error)
}

// Store bundles every repository the services need.
type Store interface {
	ProfileStore
	ProgressStore
	TaskStore
	NotificationStore
}
