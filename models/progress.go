package models

import "time"

// DefaultProgressValue is assigned to every area when a progress record is
// first created for a user.
const DefaultProgressValue = 25

// UserProgress tracks a child's 0-100 proficiency across the six fixed
// development areas. All six columns are always present and in range.
type UserProgress struct {
	UserID        string    `gorm:"type:varchar(50);primaryKey" json:"user_id"`
	Communication int       `gorm:"default:25" json:"communication"`
	MotorSkills   int       `gorm:"default:25" json:"motor_skills"`
	Social        int       `gorm:"default:25" json:"social"`
	Cognitive     int       `gorm:"default:25" json:"cognitive"`
	Sensory       int       `gorm:"default:25" json:"sensory"`
	Behavior      int       `gorm:"default:25" json:"behavior"`
	LastModified  time.Time `json:"lastModified"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// NewUserProgress returns the default all-25 record for a user.
func NewUserProgress(userID string) *UserProgress {
	return &UserProgress{
		UserID:        userID,
		Communication: DefaultProgressValue,
		MotorSkills:   DefaultProgressValue,
		Social:        DefaultProgressValue,
		Cognitive:     DefaultProgressValue,
		Sensory:       DefaultProgressValue,
		Behavior:      DefaultProgressValue,
		LastModified:  time.Now().UTC(),
	}
}

// ValueFor returns the stored value for one area. The mapping is an explicit
// exhaustive switch so an unknown area can never silently read a default
// column.
func (p *UserProgress) ValueFor(area DevelopmentArea) (int, bool) {
	switch area {
	case AreaCommunication:
		return p.Communication, true
	case AreaMotorSkills:
		return p.MotorSkills, true
	case AreaSocial:
		return p.Social, true
	case AreaCognitive:
		return p.Cognitive, true
	case AreaSensory:
		return p.Sensory, true
	case AreaBehavior:
		return p.Behavior, true
	default:
		return 0, false
	}
}

// SetValueFor writes one area's value in memory, clamped to [0,100].
func (p *UserProgress) SetValueFor(area DevelopmentArea, value int) bool {
	value = ClampProgress(value)
	switch area {
	case AreaCommunication:
		p.Communication = value
	case AreaMotorSkills:
		p.MotorSkills = value
	case AreaSocial:
		p.Social = value
	case AreaCognitive:
		p.Cognitive = value
	case AreaSensory:
		p.Sensory = value
	case AreaBehavior:
		p.Behavior = value
	default:
		return false
	}
	return true
}

// ProgressColumn maps an area to its database column name.
func ProgressColumn(area DevelopmentArea) (string, bool) {
	switch area {
	case AreaCommunication:
		return "communication", true
	case AreaMotorSkills:
		return "motor_skills", true
	case AreaSocial:
		return "social", true
	case AreaCognitive:
		return "cognitive", true
	case AreaSensory:
		return "sensory", true
	case AreaBehavior:
		return "behavior", true
	default:
		return "", false
	}
}

// ClampProgress bounds a progress value to [0,100].
func ClampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
