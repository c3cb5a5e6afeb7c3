package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Task is one generated development activity.
type Task struct {
	ID               string          `gorm:"type:varchar(50);primaryKey" json:"id"`
	Title            string          `gorm:"type:varchar(100)" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	Category         string          `gorm:"type:varchar(50)" json:"category"`
	Duration         string          `gorm:"type:varchar(30)" json:"duration"`
	Emoji            string          `gorm:"type:varchar(10)" json:"emoji"`
	Completed        bool            `gorm:"default:false" json:"completed"`
	UserID           string          `gorm:"type:varchar(50);index" json:"user_id"`
	DailyID          string          `gorm:"type:varchar(40);index:idx_tasks_user_daily" json:"dailyId"`
	Area             DevelopmentArea `gorm:"type:varchar(30)" json:"area"`
	Difficulty       Difficulty      `gorm:"type:varchar(20)" json:"difficulty"`
	EstimatedMinutes int             `json:"estimatedMinutes"`
	CreatedAt        time.Time       `json:"createdAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

// ProgressSnapshot is the per-area progress captured when a batch is
// generated, stored as a JSON column on the daily task set.
type ProgressSnapshot map[DevelopmentArea]int

func (s ProgressSnapshot) Value() (driver.Value, error) {
	if s == nil {
		s = ProgressSnapshot{}
	}
	return json.Marshal(s)
}

func (s *ProgressSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = ProgressSnapshot{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into ProgressSnapshot", value)
	}
}

// DailyTaskSet is the write-once audit record of one generation event.
// The unique (user_id, date) index doubles as the idempotency key that
// prevents two racing generation checks from both persisting a batch.
type DailyTaskSet struct {
	ID          string           `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID      string           `gorm:"type:varchar(50);index:idx_daily_sets_user_date,unique" json:"user_id"`
	Date        string           `gorm:"type:varchar(40);index:idx_daily_sets_user_date,unique" json:"date"`
	TaskCount   int              `json:"taskCount"`
	Progress    ProgressSnapshot `gorm:"type:json" json:"progress"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// Notification is a persisted local notification record.
type Notification struct {
	ID        string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(50);index" json:"user_id"`
	Kind      string    `gorm:"type:varchar(30)" json:"kind"` // tasks_ready, batch_completed, bonus_ready
	Title     string    `gorm:"type:varchar(100)" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
