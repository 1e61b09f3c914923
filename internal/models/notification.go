package models

import "time"

// NotificationKind enumerates notification reasons.
type NotificationKind string

const (
	NotificationQuery    NotificationKind = "query"
	NotificationReply    NotificationKind = "reply"
	NotificationReminder NotificationKind = "reminder"
)

// TeamNotification tells a post author that a student asked a query.
// Related ids may dangle once the post is deleted.
type TeamNotification struct {
	ID               string           `db:"id" json:"id"`
	RecipientID      string           `db:"recipient_id" json:"recipient_id"`
	Kind             NotificationKind `db:"kind" json:"type"`
	RelatedStudentID *string          `db:"related_student_id" json:"relatedStudent,omitempty"`
	RelatedPostID    *string          `db:"related_post_id" json:"relatedPost,omitempty"`
	RelatedQueryID   *string          `db:"related_query_id" json:"relatedQuery,omitempty"`
	Read             bool             `db:"read" json:"read"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// StudentNotification tells a student about a reply (or a reminder).
type StudentNotification struct {
	ID                  string           `db:"id" json:"id"`
	RecipientID         string           `db:"recipient_id" json:"recipient_id"`
	Kind                NotificationKind `db:"kind" json:"type"`
	RelatedTeamMemberID *string          `db:"related_team_member_id" json:"relatedPlacementTeamMember,omitempty"`
	RelatedPostID       *string          `db:"related_post_id" json:"relatedPost,omitempty"`
	RelatedQueryID      *string          `db:"related_query_id" json:"relatedQuery,omitempty"`
	RelatedReplyID      *string          `db:"related_reply_id" json:"relatedReply,omitempty"`
	Read                bool             `db:"read" json:"read"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
}

// TeamNotificationView joins display fields; they are nil when the target is gone.
type TeamNotificationView struct {
	TeamNotification
	StudentName *string `db:"student_name" json:"studentName,omitempty"`
	PostTitle   *string `db:"post_title" json:"postTitle,omitempty"`
	QueryText   *string `db:"query_text" json:"queryText,omitempty"`
}

// StudentNotificationView joins display fields; they are nil when the target is gone.
type StudentNotificationView struct {
	StudentNotification
	TeamMemberName *string `db:"team_member_name" json:"placementTeamMemberName,omitempty"`
	PostTitle      *string `db:"post_title" json:"postTitle,omitempty"`
	QueryText      *string `db:"query_text" json:"queryText,omitempty"`
	ReplyText      *string `db:"reply_text" json:"replyText,omitempty"`
}
