package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DevelopmentArea is one of the six fixed domains tracked per child.
type DevelopmentArea string

const (
	AreaCommunication DevelopmentArea = "communication"
	AreaMotorSkills   DevelopmentArea = "motor_skills"
	AreaSocial        DevelopmentArea = "social"
	AreaCognitive     DevelopmentArea = "cognitive"
	AreaSensory       DevelopmentArea = "sensory"
	AreaBehavior      DevelopmentArea = "behavior"
)

// AllDevelopmentAreas lists every tracked area in display order.
var AllDevelopmentAreas = []DevelopmentArea{
	AreaCommunication,
	AreaMotorSkills,
	AreaSocial,
	AreaCognitive,
	AreaSensory,
	AreaBehavior,
}

// Valid reports whether the area is one of the six known domains.
func (a DevelopmentArea) Valid() bool {
	switch a {
	case AreaCommunication, AreaMotorSkills, AreaSocial, AreaCognitive, AreaSensory, AreaBehavior:
		return true
	}
	return false
}

// Label returns a human-readable name used in prompts and notifications.
func (a DevelopmentArea) Label() string {
	switch a {
	case AreaCommunication:
		return "Communication"
	case AreaMotorSkills:
		return "Motor Skills"
	case AreaSocial:
		return "Social Skills"
	case AreaCognitive:
		return "Cognitive Skills"
	case AreaSensory:
		return "Sensory Processing"
	case AreaBehavior:
		return "Behavior"
	default:
		return string(a)
	}
}

// DevelopmentAreas is a JSON-encoded list column on the child profile.
type DevelopmentAreas []DevelopmentArea

func (d DevelopmentAreas) Value() (driver.Value, error) {
	if d == nil {
		d = DevelopmentAreas{}
	}
	return json.Marshal(d)
}

func (d *DevelopmentAreas) Scan(value interface{}) error {
	if value == nil {
		*d = DevelopmentAreas{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("cannot scan %T into DevelopmentAreas", value)
	}
}

// Difficulty is the tier derived from a 0-100 progress value.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)
