package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/placement-portal-api/pkg/dates"
)

// Post categories.
const (
	CategoryPlacement = "Internship and/or Placement"
	CategoryHackathon = "Hackathon"
	CategoryMentor    = "Mentorship"
	CategoryTraining  = "Training Session"
	CategoryEvent     = "Event"
)

// Milestone kinds in materialization order.
const (
	MilestoneApplicationDeadline   = "applicationDeadline"
	MilestonePrePlacementTalk      = "prePlacementTalkDate"
	MilestonePersonalityAssessment = "personalityAssessmentDate"
	MilestoneAptitudeTest          = "aptitudeTestDate"
	MilestoneCodingTest            = "codingTestDate"
	MilestoneInterview             = "interviewDate"
	MilestoneHackathon             = "hackathonDate"
	MilestoneTrainingSession       = "trainingSessionDate"
	MilestoneEvent                 = "eventDate"
)

// Milestone is one dated step of a post. Date is UTC midnight of a calendar day.
type Milestone struct {
	Date  time.Time
	Label string
	Color string
}

func (m Milestone) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string `json:"date"`
		Label string `json:"label"`
		Color string `json:"color"`
	}{dates.Format(m.Date), m.Label, m.Color})
}

// Post is an opportunity published by a placement-team member.
// Milestones is keyed by milestone kind; absent kinds are not set.
type Post struct {
	ID              string               `json:"id"`
	AuthorID        string               `json:"author_id"`
	Organization    string               `json:"organization"`
	Title           string               `json:"title"`
	Category        string               `json:"eventType"`
	Details         string               `json:"details"`
	RegistrationURL string               `json:"registrationLink,omitempty"`
	Branches        pq.StringArray       `json:"branchesEligible"`
	Years           pq.Int64Array        `json:"year"`
	CGPA            float64              `json:"cgpa"`
	Milestones      map[string]Milestone `json:"milestones"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// PostView is a post with its author and discussion thread.
type PostView struct {
	*Post
	Author  AuthorSummary `json:"author"`
	Queries []QueryThread `json:"queries,omitempty"`
}

// PostFilter narrows the post listing. Empty values do not filter.
type PostFilter struct {
	Search   string
	Year     *int
	Category string
	Branch   string
	MaxCGPA  *float64
	AuthorID string
	// IDs restricts the listing to these posts when non-nil.
	IDs []string
}
