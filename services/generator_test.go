package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"SproutGo/models"
	"SproutGo/storage"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel replays canned replies and records the prompts it saw.
type fakeModel struct {
	replies []string
	failOn  map[int]bool
	calls   int
	prompts []string
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	call := m.calls
	m.calls++
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.failOn[call] {
		return nil, errors.New("model unavailable")
	}
	reply := "Mirror Faces\nSit with your child in front of a mirror and copy each other's expressions."
	if call < len(m.replies) {
		reply = m.replies[call]
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: reply}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	response, err := m.GenerateContent(ctx, []llms.MessageContent{
		{Role: "human", Parts: []llms.ContentPart{llms.TextPart(prompt)}},
	}, options...)
	if err != nil {
		return "", err
	}
	return response.Choices[0].Content, nil
}

func newTestGenerator(model llms.Model, store *storage.MemoryStore, now time.Time) *TaskGenerator {
	return &TaskGenerator{
		model:    model,
		progress: NewProgressService(store),
		now:      func() time.Time { return now },
	}
}

func testChild(areas ...models.DevelopmentArea) *models.ChildProfile {
	return &models.ChildProfile{
		ID:               "p1",
		UserID:           "u1",
		Name:             "Mia",
		Age:              6,
		Diagnosis:        "autism",
		DevelopmentAreas: models.DevelopmentAreas(areas),
	}
}

func TestAreaCyclingWithTwoAreas(t *testing.T) {
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	generator := newTestGenerator(&fakeModel{}, storage.NewMemoryStore(), now)

	tasks := generator.GeneratePersonalizedTasks(context.Background(),
		"u1", testChild(models.AreaCommunication, models.AreaMotorSkills))

	if len(tasks) != MaxDailyTasks {
		t.Fatalf("got %d tasks, want %d", len(tasks), MaxDailyTasks)
	}
	want := []models.DevelopmentArea{
		models.AreaCommunication, models.AreaMotorSkills,
		models.AreaCommunication, models.AreaMotorSkills,
	}
	for i, task := range tasks {
		if task.Area != want[i] {
			t.Errorf("slot %d area = %s, want %s", i, task.Area, want[i])
		}
	}
}

func TestGeneratedTasksCarryDailyIDAndOwner(t *testing.T) {
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	generator := newTestGenerator(&fakeModel{}, storage.NewMemoryStore(), now)

	tasks := generator.GeneratePersonalizedTasks(context.Background(), "u1", testChild(models.AreaSocial))

	for _, task := range tasks {
		if task.DailyID != "2025-06-03" {
			t.Errorf("dailyId = %s, want 2025-06-03", task.DailyID)
		}
		if task.UserID != "u1" {
			t.Errorf("userID = %s, want u1", task.UserID)
		}
		if task.Title == "" || task.Description == "" {
			t.Error("task must carry a title and description")
		}
	}
}

func TestBonusBatchUsesBonusKey(t *testing.T) {
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	generator := newTestGenerator(&fakeModel{}, storage.NewMemoryStore(), now)

	tasks := generator.GenerateBonusTasks(context.Background(), "u1", testChild(models.AreaSocial))

	for _, task := range tasks {
		if task.DailyID != "bonus_2025-06-03" {
			t.Errorf("dailyId = %s, want bonus_2025-06-03", task.DailyID)
		}
		if !IsBonusDailyID(task.DailyID) {
			t.Errorf("IsBonusDailyID(%s) = false, want true", task.DailyID)
		}
	}
}

func TestFailedSlotIsSkippedNotFatal(t *testing.T) {
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	model := &fakeModel{failOn: map[int]bool{1: true, 3: true}}
	generator := newTestGenerator(model, storage.NewMemoryStore(), now)

	tasks := generator.GeneratePersonalizedTasks(context.Background(), "u1", testChild(models.AreaSocial))

	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2 surviving slots", len(tasks))
	}
}

func TestAllSlotsFailedReturnsEmptyBatch(t *testing.T) {
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	model := &fakeModel{failOn: map[int]bool{0: true, 1: true, 2: true, 3: true}}
	generator := newTestGenerator(model, storage.NewMemoryStore(), now)

	tasks := generator.GeneratePersonalizedTasks(context.Background(), "u1", testChild(models.AreaSocial))
	if len(tasks) != 0 {
		t.Fatalf("got %d tasks, want 0", len(tasks))
	}
}

func TestPromptEmbedsChildAndProgress(t *testing.T) {
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStore()
	model := &fakeModel{}
	generator := newTestGenerator(model, store, now)

	generator.GeneratePersonalizedTasks(context.Background(), "u1", testChild(models.AreaCommunication))

	joined := strings.Join(model.prompts, "\n---\n")
	for _, fragment := range []string{"Mia", "age 6", "autism", "Communication", "25/100", "beginner"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
}

func TestTitleFromReply(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{"plain", "Mirror Faces\nDetails follow.", "Mirror Faces"},
		{"bullet", "- Mirror Faces\nDetails.", "Mirror Faces"},
		{"markdown heading", "## Mirror Faces", "Mirror Faces"},
		{"numbered", "1. Mirror Faces", "Mirror Faces"},
		{"leading blank lines", "\n\n  Sorting Game  \nrest", "Sorting Game"},
		{"blank reply", "   \n  ", "Daily activity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TitleFromReply(tc.reply); got != tc.want {
				t.Errorf("TitleFromReply(%q) = %q, want %q", tc.reply, got, tc.want)
			}
		})
	}
}

func TestTitleTruncation(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := TitleFromReply(long)
	runes := []rune(got)
	if len(runes) != maxTitleLen+1 {
		t.Fatalf("truncated title rune length = %d, want %d", len(runes), maxTitleLen+1)
	}
	if runes[len(runes)-1] != '…' {
		t.Errorf("truncated title must end with ellipsis, got %q", got)
	}
}

func TestSlotEmojiFallback(t *testing.T) {
	seen := map[string]bool{}
	for slot := 0; slot < MaxDailyTasks; slot++ {
		emoji := slotEmoji(slot)
		if emoji == "" {
			t.Fatalf("slot %d has no emoji", slot)
		}
		seen[emoji] = true
	}
	if len(seen) != MaxDailyTasks {
		t.Errorf("slot emojis must be distinct, got %d unique", len(seen))
	}
	if slotEmoji(99) != fallbackEmoji {
		t.Errorf("out-of-range slot must use the fallback emoji")
	}
	if slotEmoji(-1) != fallbackEmoji {
		t.Errorf("negative slot must use the fallback emoji")
	}
}
