package models

import (
	"fmt"
	"strings"
)

// knownDiagnoses are the labels the onboarding form offers. Free-text
// diagnoses are not accepted, they flow straight into AI prompts.
var knownDiagnoses = map[string]bool{
	"autism":                      true,
	"adhd":                        true,
	"down_syndrome":               true,
	"cerebral_palsy":              true,
	"speech_delay":                true,
	"sensory_processing_disorder": true,
	"other":                       true,
}

// OnboardChildRequest creates or replaces the child profile for a parent.
type OnboardChildRequest struct {
	Name             string            `json:"name" binding:"required"`
	Age              int               `json:"age" binding:"required"`
	Diagnosis        string            `json:"diagnosis" binding:"required"`
	DevelopmentAreas []DevelopmentArea `json:"developmentAreas" binding:"required"`
}

// Validate rejects bad input before any network or store call.
func (r *OnboardChildRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || len(r.Name) > 50 {
		return fmt.Errorf("name must be 1-50 characters")
	}
	if r.Age < 1 || r.Age > 18 {
		return fmt.Errorf("age must be between 1 and 18")
	}
	r.Diagnosis = strings.ToLower(strings.TrimSpace(r.Diagnosis))
	if !knownDiagnoses[r.Diagnosis] {
		return fmt.Errorf("unknown diagnosis: %s", r.Diagnosis)
	}
	if len(r.DevelopmentAreas) == 0 {
		return fmt.Errorf("at least one development area is required")
	}
	seen := map[DevelopmentArea]bool{}
	for _, area := range r.DevelopmentAreas {
		if !area.Valid() {
			return fmt.Errorf("unknown development area: %s", area)
		}
		if seen[area] {
			return fmt.Errorf("duplicate development area: %s", area)
		}
		seen[area] = true
	}
	return nil
}

// UpdateProgressRequest sets one area to an absolute value (manual adjustment
// from the progress screen). The value is clamped server-side.
type UpdateProgressRequest struct {
	Area  DevelopmentArea `json:"area" binding:"required"`
	Value int             `json:"value"`
}

func (r *UpdateProgressRequest) Validate() error {
	if !r.Area.Valid() {
		return fmt.Errorf("unknown development area: %s", r.Area)
	}
	return nil
}

// ChatRequest is one parent message to the support chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (r *ChatRequest) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	if r.Message == "" {
		return fmt.Errorf("message must not be empty")
	}
	if len(r.Message) > 2000 {
		return fmt.Errorf("message too long")
	}
	return nil
}
