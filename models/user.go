package models

import (
	"time"
)

// User is a parent account.
type User struct {
	ID         string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Username   string     `gorm:"type:varchar(100)" json:"username"`
	Email      string     `gorm:"type:varchar(100)" json:"email"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	IsTestUser bool       `gorm:"default:false" json:"isTestUser"`
}

func (u *User) GetDisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// ChildProfile holds the onboarding data the task generator personalizes on.
// One profile per parent account.
type ChildProfile struct {
	ID               string           `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserID           string           `gorm:"type:varchar(50);uniqueIndex" json:"user_id"`
	Name             string           `gorm:"type:varchar(100)" json:"name"`
	Age              int              `json:"age"`
	Diagnosis        string           `gorm:"type:varchar(100)" json:"diagnosis"`
	DevelopmentAreas DevelopmentAreas `gorm:"type:json" json:"developmentAreas"`
	LastTaskDate     *time.Time       `json:"lastTaskDate"`
	OnboardingDone   bool             `gorm:"default:false" json:"onboardingDone"`
	CreatedAt        time.Time        `json:"createdAt"`
	LastModified     time.Time        `json:"lastModified"`
}
