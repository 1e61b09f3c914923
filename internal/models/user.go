package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole distinguishes the two account tables.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeam    UserRole = "placement-team"
)

// Student is a student account stored in the students table.
type Student struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Email          string         `db:"email" json:"email"`
	PasswordHash   string         `db:"password_hash" json:"-"`
	RollNo         string         `db:"roll_no" json:"rollno"`
	Branch         string         `db:"branch" json:"branch"`
	Year           int            `db:"year" json:"year"`
	CGPA           float64        `db:"cgpa" json:"cgpa"`
	Phone          string         `db:"phone" json:"phone"`
	LinkedIn       string         `db:"linkedin" json:"linkedin"`
	Skills         pq.StringArray `db:"skills" json:"skills"`
	ProfilePicture string         `db:"profile_picture" json:"profilePicture"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// TeamMember is a placement-team account stored in the team_members table.
type TeamMember struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	ProfilePicture string    `db:"profile_picture" json:"profilePicture"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// AuthorSummary is the public face of an account attached to posts, queries and replies.
type AuthorSummary struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	ProfilePicture string `db:"profile_picture" json:"profilePicture"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
