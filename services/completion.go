package services

import (
	"context"
	"errors"
	"time"

	"SproutGo/config"
	"SproutGo/models"
	"SproutGo/storage"
)

// completionBonus is the flat progress bump awarded per distinct area when a
// full daily batch is completed.
const completionBonus = 5

// CompletionOrchestrator reacts to a fully completed daily batch: celebrate,
// award progress, generate one bonus batch. Steps are independent: a failed
// bonus generation never rolls back the progress bump.
type CompletionOrchestrator struct {
	profiles  storage.ProfileStore
	progress  *ProgressService
	generator *TaskGenerator
	tasks     *TaskService
	limiter   *RateLimiter
	notifier  Notifier
	now       func() time.Time
}

func NewCompletionOrchestrator(
	profiles storage.ProfileStore,
	progress *ProgressService,
	generator *TaskGenerator,
	tasks *TaskService,
	limiter *RateLimiter,
	notifier Notifier,
) *CompletionOrchestrator {
	return &CompletionOrchestrator{
		profiles:  profiles,
		progress:  progress,
		generator: generator,
		tasks:     tasks,
		limiter:   limiter,
		notifier:  notifier,
		now:       time.Now,
	}
}

// HandleAllTasksCompleted runs the completion side effects and returns any
// bonus tasks that were produced.
func (o *CompletionOrchestrator) HandleAllTasksCompleted(ctx context.Context, userID string, completed []models.Task) []models.Task {
	areas := DistinctAreas(completed)

	o.notifier.BatchCompleted(ctx, userID, areas)

	for _, area := range areas {
		if err := o.progress.AdjustProgress(ctx, userID, area, completionBonus); err != nil {
			config.Logger.Errorw("completion bonus progress failed",
				"error", err, "userID", userID, "area", area)
		}
	}

	bonusID := BonusDailyID(o.now())
	exists, err := o.tasks.store.BatchExists(ctx, userID, bonusID)
	if err == nil && exists {
		config.Logger.Debugw("bonus batch already generated today", "userID", userID)
		return nil
	}

	result := o.limiter.Check(ctx, userID, CategoryBonusGeneration)
	if !result.Allowed {
		config.Logger.Infow("bonus generation rate limited",
			"userID", userID, "retryAfter", result.RetryAfter)
		return nil
	}

	profile, err := o.profiles.GetProfile(ctx, userID)
	if err != nil {
		config.Logger.Errorw("bonus generation profile read failed", "error", err, "userID", userID)
		return nil
	}

	bonus := o.generator.GenerateBonusTasks(ctx, userID, profile)
	if len(bonus) == 0 {
		return nil
	}

	snapshot := Snapshot(o.progress.GetProgress(ctx, userID))
	if err := o.tasks.PersistDailyBatch(ctx, userID, bonusID, bonus, snapshot); err != nil {
		if errors.Is(err, storage.ErrDuplicateBatch) {
			config.Logger.Debugw("concurrent bonus batch, dropping", "userID", userID)
			return nil
		}
		config.Logger.Errorw("bonus batch persist failed", "error", err, "userID", userID)
		return nil
	}

	o.notifier.BonusReady(ctx, userID, len(bonus))
	return bonus
}

// DistinctAreas returns the development areas represented in a batch, in
// first-appearance order.
func DistinctAreas(tasks []models.Task) []models.DevelopmentArea {
	seen := map[models.DevelopmentArea]bool{}
	var areas []models.DevelopmentArea
	for _, task := range tasks {
		if !task.Area.Valid() || seen[task.Area] {
			continue
		}
		seen[task.Area] = true
		areas = append(areas, task.Area)
	}
	return areas
}

// AllCompleted reports whether every task in a batch is completed. An empty
// batch does not count as completed.
func AllCompleted(tasks []models.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, task := range tasks {
		if !task.Completed {
			return false
		}
	}
	return true
}
