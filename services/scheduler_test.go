package services

import (
	"context"
	"testing"
	"time"

	"SproutGo/models"
	"SproutGo/storage"
)

func seedProfile(t *testing.T, store *storage.MemoryStore, userID string, lastTaskDate *time.Time) {
	t.Helper()
	profile := &models.ChildProfile{
		ID:               "p-" + userID,
		UserID:           userID,
		Name:             "Mia",
		Age:              6,
		Diagnosis:        "autism",
		DevelopmentAreas: models.DevelopmentAreas{models.AreaCommunication, models.AreaSocial},
		LastTaskDate:     lastTaskDate,
	}
	if err := store.SaveProfile(context.Background(), profile); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
}

func seedTask(t *testing.T, store *storage.MemoryStore, userID, dailyID string, completed bool, createdAt time.Time) {
	t.Helper()
	task := models.Task{
		ID:        "t-" + userID + "-" + dailyID + "-" + createdAt.Format("150405.000"),
		UserID:    userID,
		DailyID:   dailyID,
		Title:     "seeded",
		Area:      models.AreaCommunication,
		Completed: completed,
		CreatedAt: createdAt,
	}
	set := &models.DailyTaskSet{
		ID:          "set-" + task.ID,
		UserID:      userID,
		Date:        dailyID,
		TaskCount:   1,
		GeneratedAt: createdAt,
	}
	if err := store.CreateBatch(context.Background(), set, []models.Task{task}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
}

func newTestScheduler(store *storage.MemoryStore, now time.Time) *SchedulerService {
	scheduler := NewSchedulerService(store, store)
	scheduler.now = func() time.Time { return now }
	return scheduler
}

func TestShouldGenerateForFreshDay(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	seedProfile(t, store, "u1", &yesterday)

	scheduler := newTestScheduler(store, now)
	if !scheduler.ShouldGenerateTasks(context.Background(), "u1") {
		t.Fatal("new day with no open tasks must generate")
	}
}

func TestCarryOverSuppressesGeneration(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	twoDaysAgo := now.AddDate(0, 0, -2)
	seedProfile(t, store, "u1", &yesterday)
	seedTask(t, store, "u1", DailyID(twoDaysAgo), false, twoDaysAgo)

	scheduler := newTestScheduler(store, now)
	if scheduler.ShouldGenerateTasks(context.Background(), "u1") {
		t.Fatal("incomplete task from a prior day must suppress generation")
	}
}

func TestCompletedHistoryAllowsGeneration(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	seedProfile(t, store, "u1", &yesterday)
	seedTask(t, store, "u1", DailyID(yesterday), true, yesterday)

	scheduler := newTestScheduler(store, now)
	if !scheduler.ShouldGenerateTasks(context.Background(), "u1") {
		t.Fatal("fully completed history must not block a new day")
	}
}

func TestStampedDateWithoutBatchRegenerates(t *testing.T) {
	// The date was stamped but the batch write never landed.
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	seedProfile(t, store, "u1", &now)

	scheduler := newTestScheduler(store, now)
	if !scheduler.ShouldGenerateTasks(context.Background(), "u1") {
		t.Fatal("stamped date with no persisted batch must regenerate")
	}
}

func TestExistingTodayBatchBlocksGeneration(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	seedProfile(t, store, "u1", &now)
	seedTask(t, store, "u1", DailyID(now), false, now)

	scheduler := newTestScheduler(store, now)
	if scheduler.ShouldGenerateTasks(context.Background(), "u1") {
		t.Fatal("today's batch exists, must not generate again")
	}
}

func TestShouldGenerateIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	seedProfile(t, store, "u1", &yesterday)
	seedTask(t, store, "u1", DailyID(yesterday), false, yesterday)

	scheduler := newTestScheduler(store, now)
	first := scheduler.ShouldGenerateTasks(context.Background(), "u1")
	second := scheduler.ShouldGenerateTasks(context.Background(), "u1")
	if first != second {
		t.Fatalf("gate not idempotent: first=%v second=%v", first, second)
	}
}

func TestMissingProfileDefaultsToGenerate(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)

	scheduler := newTestScheduler(store, now)
	if !scheduler.ShouldGenerateTasks(context.Background(), "ghost") {
		t.Fatal("unreadable profile must default to generate")
	}
}
