package services

import (
	"context"
	"time"

	"SproutGo/config"
	"SproutGo/storage"
)

// SchedulerService decides, once per day per user, whether a new daily batch
// is due. Every read failure defaults to "generate"; the unique batch index
// catches the duplicates this can cause.
type SchedulerService struct {
	profiles storage.ProfileStore
	tasks    storage.TaskStore
	now      func() time.Time
}

func NewSchedulerService(profiles storage.ProfileStore, tasks storage.TaskStore) *SchedulerService {
	return &SchedulerService{
		profiles: profiles,
		tasks:    tasks,
		now:      time.Now,
	}
}

// ShouldGenerateTasks reports whether a new daily batch should be generated.
//
// lastTaskDate != today: refuse while any incomplete task exists for the user
// (carry-over, unfinished work is not buried under new tasks), else generate.
// lastTaskDate == today: re-verify that today's batch actually exists in the
// store, which defends against a date stamped by a run whose batch write
// failed.
func (s *SchedulerService) ShouldGenerateTasks(ctx context.Context, userID string) bool {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		config.Logger.Errorw("scheduling gate profile read failed, generating anyway",
			"error", err, "userID", userID)
		return true
	}

	today := DailyID(s.now())

	if profile.LastTaskDate == nil || DailyID(*profile.LastTaskDate) != today {
		incomplete, err := s.tasks.HasIncompleteTasks(ctx, userID)
		if err != nil {
			config.Logger.Errorw("scheduling gate incomplete check failed, generating anyway",
				"error", err, "userID", userID)
			return true
		}
		if incomplete {
			config.Logger.Infow("carry-over: incomplete tasks suppress generation", "userID", userID)
			return false
		}
		return true
	}

	exists, err := s.tasks.BatchExists(ctx, userID, today)
	if err != nil {
		config.Logger.Errorw("scheduling gate batch check failed, generating anyway",
			"error", err, "userID", userID)
		return true
	}
	return !exists
}
