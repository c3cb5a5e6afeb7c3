package services

import (
	"context"
	"errors"
	"fmt"

	"SproutGo/config"
	"SproutGo/models"
	"SproutGo/storage"
)

// CalculateDifficulty maps a 0-100 progress value to its tier.
// Partition: <30 beginner, <70 intermediate, else advanced.
func CalculateDifficulty(value int) models.Difficulty {
	if value < 30 {
		return models.DifficultyBeginner
	}
	if value < 70 {
		return models.DifficultyIntermediate
	}
	return models.DifficultyAdvanced
}

// ProgressService owns the six-area progress record for each user.
type ProgressService struct {
	store storage.ProgressStore
}

func NewProgressService(store storage.ProgressStore) *ProgressService {
	return &ProgressService{store: store}
}

// GetProgress loads the user's record, creating the default all-25 record on
// first access. A store read failure degrades to the in-memory default so
// task generation never blocks on progress.
func (s *ProgressService) GetProgress(ctx context.Context, userID string) *models.UserProgress {
	progress, err := s.store.GetProgress(ctx, userID)
	if err == nil {
		return progress
	}
	if errors.Is(err, storage.ErrNotFound) {
		return s.InitializeProgress(ctx, userID)
	}
	config.Logger.Errorw("progress read failed, using defaults", "error", err, "userID", userID)
	return models.NewUserProgress(userID)
}

// InitializeProgress creates and returns the default record. The default is
// returned even when the create fails.
func (s *ProgressService) InitializeProgress(ctx context.Context, userID string) *models.UserProgress {
	progress := models.NewUserProgress(userID)
	if err := s.store.CreateProgress(ctx, progress); err != nil {
		config.Logger.Errorw("progress init failed", "error", err, "userID", userID)
	}
	return progress
}

// UpdateProgress sets one area to an absolute value, clamped to [0,100].
// Only the single column is written.
func (s *ProgressService) UpdateProgress(ctx context.Context, userID string, area models.DevelopmentArea, value int) error {
	if !area.Valid() {
		return fmt.Errorf("unknown development area: %s", area)
	}
	value = models.ClampProgress(value)
	err := s.store.UpdateArea(ctx, userID, area, value)
	if errors.Is(err, storage.ErrNotFound) {
		s.InitializeProgress(ctx, userID)
		err = s.store.UpdateArea(ctx, userID, area, value)
	}
	return err
}

// AdjustProgress adds a delta to one area. Read-then-write, last writer
// wins; values are user paced, so the race is acceptable.
func (s *ProgressService) AdjustProgress(ctx context.Context, userID string, area models.DevelopmentArea, delta int) error {
	progress := s.GetProgress(ctx, userID)
	current, ok := progress.ValueFor(area)
	if !ok {
		return fmt.Errorf("unknown development area: %s", area)
	}
	return s.UpdateProgress(ctx, userID, area, current+delta)
}

// ResetProgress puts every area back to the default value.
func (s *ProgressService) ResetProgress(ctx context.Context, userID string) error {
	err := s.store.ResetProgress(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		s.InitializeProgress(ctx, userID)
		return nil
	}
	return err
}

// DifficultyFor returns the tier for one area of a loaded record.
func DifficultyFor(progress *models.UserProgress, area models.DevelopmentArea) models.Difficulty {
	value, ok := progress.ValueFor(area)
	if !ok {
		value = models.DefaultProgressValue
	}
	return CalculateDifficulty(value)
}

// Snapshot captures the per-area values for the daily batch audit record.
func Snapshot(progress *models.UserProgress) models.ProgressSnapshot {
	snapshot := models.ProgressSnapshot{}
	for _, area := range models.AllDevelopmentAreas {
		if value, ok := progress.ValueFor(area); ok {
			snapshot[area] = value
		}
	}
	return snapshot
}
