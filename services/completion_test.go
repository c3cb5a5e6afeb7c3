package services

import (
	"context"
	"testing"
	"time"

	"SproutGo/models"
	"SproutGo/storage"

	"github.com/tmc/langchaingo/llms"
)

// recordingNotifier captures milestone calls for assertions.
type recordingNotifier struct {
	tasksReady     []int
	completedAreas [][]models.DevelopmentArea
	bonusCounts    []int
}

func (n *recordingNotifier) TasksReady(ctx context.Context, userID string, count int) {
	n.tasksReady = append(n.tasksReady, count)
}

func (n *recordingNotifier) BatchCompleted(ctx context.Context, userID string, areas []models.DevelopmentArea) {
	n.completedAreas = append(n.completedAreas, areas)
}

func (n *recordingNotifier) BonusReady(ctx context.Context, userID string, count int) {
	n.bonusCounts = append(n.bonusCounts, count)
}

func newTestOrchestrator(store *storage.MemoryStore, model llms.Model, notifier Notifier, now time.Time) *CompletionOrchestrator {
	limiter := NewRateLimiter(newMemCounterStore())
	limiter.now = func() time.Time { return now }
	orchestrator := NewCompletionOrchestrator(
		store,
		NewProgressService(store),
		newTestGenerator(model, store, now),
		newTestTaskService(store, now),
		limiter,
		notifier,
	)
	orchestrator.now = func() time.Time { return now }
	return orchestrator
}

func completedBatch(userID string, areas ...models.DevelopmentArea) []models.Task {
	doneAt := time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC)
	tasks := make([]models.Task, len(areas))
	for i, area := range areas {
		tasks[i] = models.Task{
			ID:          "done-" + string(rune('a'+i)),
			UserID:      userID,
			DailyID:     "2025-06-03",
			Title:       "done",
			Area:        area,
			Completed:   true,
			CompletedAt: &doneAt,
		}
	}
	return tasks
}

func TestDistinctAreasOrderAndDedup(t *testing.T) {
	tasks := []models.Task{
		{Area: models.AreaSocial, Completed: true},
		{Area: models.AreaCommunication, Completed: true},
		{Area: models.AreaSocial, Completed: true},
		{Area: "not_an_area", Completed: true},
		{Area: models.AreaCommunication, Completed: true},
	}
	areas := DistinctAreas(tasks)
	want := []models.DevelopmentArea{models.AreaSocial, models.AreaCommunication}
	if len(areas) != len(want) {
		t.Fatalf("got %d areas, want %d", len(areas), len(want))
	}
	for i, area := range areas {
		if area != want[i] {
			t.Errorf("areas[%d] = %s, want %s (first-appearance order)", i, area, want[i])
		}
	}
}

func TestAllCompleted(t *testing.T) {
	if AllCompleted(nil) {
		t.Error("empty batch must not count as completed")
	}
	mixed := []models.Task{{Completed: true}, {Completed: false}}
	if AllCompleted(mixed) {
		t.Error("batch with an open task must not count as completed")
	}
	done := []models.Task{{Completed: true}, {Completed: true}}
	if !AllCompleted(done) {
		t.Error("fully completed batch must count as completed")
	}
}

func TestCompletionAwardsBonusPerDistinctArea(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	seedProfile(t, store, "u1", nil)

	orchestrator := newTestOrchestrator(store, &fakeModel{}, notifier, now)
	ctx := context.Background()

	// Two distinct areas across four tasks, so exactly two bumps.
	batch := completedBatch("u1",
		models.AreaCommunication, models.AreaSocial,
		models.AreaCommunication, models.AreaSocial)
	orchestrator.HandleAllTasksCompleted(ctx, "u1", batch)

	progress := orchestrator.progress.GetProgress(ctx, "u1")
	if got := progress.Communication; got != models.DefaultProgressValue+completionBonus {
		t.Errorf("communication = %d, want %d", got, models.DefaultProgressValue+completionBonus)
	}
	if got := progress.Social; got != models.DefaultProgressValue+completionBonus {
		t.Errorf("social = %d, want %d", got, models.DefaultProgressValue+completionBonus)
	}
	if got := progress.Cognitive; got != models.DefaultProgressValue {
		t.Errorf("cognitive = %d, untouched areas must stay put", got)
	}

	if len(notifier.completedAreas) != 1 {
		t.Fatalf("BatchCompleted called %d times, want 1", len(notifier.completedAreas))
	}
	if len(notifier.completedAreas[0]) != 2 {
		t.Errorf("BatchCompleted carried %d areas, want 2", len(notifier.completedAreas[0]))
	}
}

func TestCompletionBonusClampsAtCeiling(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC)
	seedProfile(t, store, "u1", nil)

	orchestrator := newTestOrchestrator(store, &fakeModel{}, &recordingNotifier{}, now)
	ctx := context.Background()

	orchestrator.progress.GetProgress(ctx, "u1")
	if err := orchestrator.progress.UpdateProgress(ctx, "u1", models.AreaSocial, 98); err != nil {
		t.Fatal(err)
	}

	orchestrator.HandleAllTasksCompleted(ctx, "u1", completedBatch("u1", models.AreaSocial))

	if got := orchestrator.progress.GetProgress(ctx, "u1").Social; got != 100 {
		t.Errorf("social = %d, want clamp at 100", got)
	}
}

func TestCompletionGeneratesAndPersistsBonusBatch(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	seedProfile(t, store, "u1", nil)

	orchestrator := newTestOrchestrator(store, &fakeModel{}, notifier, now)
	ctx := context.Background()

	bonus := orchestrator.HandleAllTasksCompleted(ctx, "u1", completedBatch("u1", models.AreaCommunication))

	if len(bonus) != MaxDailyTasks {
		t.Fatalf("got %d bonus tasks, want %d", len(bonus), MaxDailyTasks)
	}
	for _, task := range bonus {
		if task.DailyID != "bonus_2025-06-03" {
			t.Errorf("bonus dailyId = %s, want bonus_2025-06-03", task.DailyID)
		}
	}

	exists, err := store.BatchExists(ctx, "u1", "bonus_2025-06-03")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("bonus batch must be persisted under the bonus key")
	}

	if len(notifier.bonusCounts) != 1 || notifier.bonusCounts[0] != MaxDailyTasks {
		t.Errorf("BonusReady calls = %v, want one call with %d", notifier.bonusCounts, MaxDailyTasks)
	}
}

func TestCompletionSkipsBonusWhenAlreadyGenerated(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	seedProfile(t, store, "u1", nil)

	orchestrator := newTestOrchestrator(store, &fakeModel{}, notifier, now)
	ctx := context.Background()

	first := orchestrator.HandleAllTasksCompleted(ctx, "u1", completedBatch("u1", models.AreaCommunication))
	if len(first) == 0 {
		t.Fatal("first completion must produce a bonus batch")
	}

	second := orchestrator.HandleAllTasksCompleted(ctx, "u1", completedBatch("u1", models.AreaCommunication))
	if len(second) != 0 {
		t.Fatalf("second completion produced %d bonus tasks, want 0", len(second))
	}
	if len(notifier.bonusCounts) != 1 {
		t.Errorf("BonusReady calls = %d, want 1", len(notifier.bonusCounts))
	}
	// The celebration and progress bump still run on repeat completions.
	if len(notifier.completedAreas) != 2 {
		t.Errorf("BatchCompleted calls = %d, want 2", len(notifier.completedAreas))
	}
}

func TestCompletionRespectsBonusRateLimit(t *testing.T) {
	store := storage.NewMemoryStore()
	now := time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	seedProfile(t, store, "u1", nil)

	orchestrator := newTestOrchestrator(store, &fakeModel{}, notifier, now)
	ctx := context.Background()

	// Exhaust the bonus budget out of band.
	for i := 0; i < DefaultRateLimits[CategoryBonusGeneration].MaxRequests; i++ {
		orchestrator.limiter.Check(ctx, "u1", CategoryBonusGeneration)
	}

	bonus := orchestrator.HandleAllTasksCompleted(ctx, "u1", completedBatch("u1", models.AreaSocial))
	if len(bonus) != 0 {
		t.Fatalf("rate-limited completion produced %d bonus tasks, want 0", len(bonus))
	}
	if len(notifier.bonusCounts) != 0 {
		t.Error("BonusReady must not fire when the limiter denies")
	}
	// The progress bump is independent of the bonus budget.
	if got := orchestrator.progress.GetProgress(ctx, "u1").Social; got != models.DefaultProgressValue+completionBonus {
		t.Errorf("social = %d, want %d", got, models.DefaultProgressValue+completionBonus)
	}
}
