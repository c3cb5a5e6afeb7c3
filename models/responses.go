package models

import "time"

// TaskResponse is the wire shape of one task.
type TaskResponse struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	Duration         string          `json:"duration"`
	Emoji            string          `json:"emoji"`
	Completed        bool            `json:"completed"`
	DailyID          string          `json:"dailyId"`
	Area             DevelopmentArea `json:"area"`
	Difficulty       Difficulty      `json:"difficulty"`
	EstimatedMinutes int             `json:"estimatedMinutes"`
	CreatedAt        time.Time       `json:"createdAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

// ToTaskResponse converts a stored task to its wire shape.
func ToTaskResponse(t Task) TaskResponse {
	return TaskResponse{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Category:         t.Category,
		Duration:         t.Duration,
		Emoji:            t.Emoji,
		Completed:        t.Completed,
		DailyID:          t.DailyID,
		Area:             t.Area,
		Difficulty:       t.Difficulty,
		EstimatedMinutes: t.EstimatedMinutes,
		CreatedAt:        t.CreatedAt,
		CompletedAt:      t.CompletedAt,
	}
}

// ProgressResponse reports per-area values with their derived tiers.
type ProgressResponse struct {
	Areas        []AreaProgress `json:"areas"`
	LastModified time.Time      `json:"lastModified"`
}

type AreaProgress struct {
	Area       DevelopmentArea `json:"area"`
	Label      string          `json:"label"`
	Value      int             `json:"value"`
	Difficulty Difficulty      `json:"difficulty"`
}
