package models

import "time"

// Query is a question asked by a student on a post.
type Query struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Text      string    `db:"text" json:"queryText"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Reply is a team member's answer to a query. PostID is denormalized from the query.
type Reply struct {
	ID           string    `db:"id" json:"id"`
	QueryID      string    `db:"query_id" json:"query_id"`
	PostID       string    `db:"post_id" json:"post_id"`
	TeamMemberID string    `db:"team_member_id" json:"team_member_id"`
	Text         string    `db:"text" json:"replyText"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// QueryThread is a query with its author and ordered replies.
type QueryThread struct {
	Query
	Author  AuthorSummary `json:"author"`
	Replies []ReplyView   `json:"replies"`
}

// ReplyView is a reply with its author.
type ReplyView struct {
	Reply
	Author AuthorSummary `json:"author"`
}
