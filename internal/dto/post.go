package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MilestoneInput accepts either a bare date string or {"date","label","color"}.
type MilestoneInput struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

func (m *MilestoneInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &m.Date)
	}
	type plain MilestoneInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("milestone must be a date string or object: %w", err)
	}
	*m = MilestoneInput(p)
	return nil
}

// MilestoneInputs holds the optional milestones of a post request.
type MilestoneInputs struct {
	ApplicationDeadline       *MilestoneInput `json:"applicationDeadline"`
	PrePlacementTalkDate      *MilestoneInput `json:"prePlacementTalkDate"`
	PersonalityAssessmentDate *MilestoneInput `json:"personalityAssessmentDate"`
	AptitudeTestDate          *MilestoneInput `json:"aptitudeTestDate"`
	CodingTestDate            *MilestoneInput `json:"codingTestDate"`
	InterviewDate             *MilestoneInput `json:"interviewDate"`
	HackathonDate             *MilestoneInput `json:"hackathonDate"`
	TrainingSessionDate       *MilestoneInput `json:"trainingSessionDate"`
	EventDate                 *MilestoneInput `json:"eventDate"`
}

// ByKind returns the provided milestones keyed by kind. Nil and dateless inputs are skipped.
func (m MilestoneInputs) ByKind() map[string]MilestoneInput {
	all := map[string]*MilestoneInput{
		"applicationDeadline":       m.ApplicationDeadline,
		"prePlacementTalkDate":      m.PrePlacementTalkDate,
		"personalityAssessmentDate": m.PersonalityAssessmentDate,
		"aptitudeTestDate":          m.AptitudeTestDate,
		"codingTestDate":            m.CodingTestDate,
		"interviewDate":             m.InterviewDate,
		"hackathonDate":             m.HackathonDate,
		"trainingSessionDate":       m.TrainingSessionDate,
		"eventDate":                 m.EventDate,
	}
	out := make(map[string]MilestoneInput, len(all))
	for kind, in := range all {
		if in != nil && in.Date != "" {
			out[kind] = *in
		}
	}
	return out
}

// CreatePostRequest is the payload of POST /placement-team/posts/new-post.
type CreatePostRequest struct {
	Organization     string   `json:"organization" validate:"required"`
	Title            string   `json:"title" validate:"required"`
	Category         string   `json:"eventType" validate:"required,category"`
	Details          string   `json:"details" validate:"required"`
	RegistrationLink string   `json:"registrationLink" validate:"omitempty,url"`
	Branches         []string `json:"branchesEligible" validate:"required,min=1,dive,branch"`
	Years            []int    `json:"year" validate:"required,min=1,dive,study_year"`
	CGPA             *float64 `json:"cgpa" validate:"required,cgpa"`
	MilestoneInputs
}

// UpdatePostRequest is an allow-list of editable post fields. Absent or empty
// fields are ignored; unknown JSON fields are dropped by the decoder.
type UpdatePostRequest struct {
	Organization     string   `json:"organization"`
	Title            string   `json:"title"`
	Category         string   `json:"eventType" validate:"omitempty,category"`
	Details          string   `json:"details"`
	RegistrationLink string   `json:"registrationLink" validate:"omitempty,url"`
	Branches         []string `json:"branchesEligible" validate:"omitempty,dive,branch"`
	Years            []int    `json:"year" validate:"omitempty,dive,study_year"`
	CGPA             *float64 `json:"cgpa" validate:"omitempty,cgpa"`
	MilestoneInputs
}

// PostListQuery binds the listing filters. "All" or empty means no filter.
type PostListQuery struct {
	SearchText string `form:"searchText"`
	Year       string `form:"year"`
	EventType  string `form:"eventType"`
	Branch     string `form:"branch"`
	CGPA       string `form:"cgpa"`
}
