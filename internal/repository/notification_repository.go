package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

// NotificationRepository persists team and student notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a notification repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateTeam stores a team notification. Read always starts false.
func (r *NotificationRepository) CreateTeam(ctx context.Context, n *models.TeamNotification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Read = false
	n.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO team_notifications (id, recipient_id, kind, related_student_id, related_post_id, related_query_id, read, created_at)
VALUES (:id, :recipient_id, :kind, :related_student_id, :related_post_id, :related_query_id, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create team notification: %w", err)
	}
	return nil
}

// CreateStudent stores a student notification. Read always starts false.
func (r *NotificationRepository) CreateStudent(ctx context.Context, n *models.StudentNotification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Read = false
	n.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO student_notifications (id, recipient_id, kind, related_team_member_id, related_post_id, related_query_id, related_reply_id, read, created_at)
VALUES (:id, :recipient_id, :kind, :related_team_member_id, :related_post_id, :related_query_id, :related_reply_id, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create student notification: %w", err)
	}
	return nil
}

// ListTeam returns the member's notifications newest first.
func (r *NotificationRepository) ListTeam(ctx context.Context, recipientID string) ([]models.TeamNotificationView, error) {
	const query = `SELECT n.id, n.recipient_id, n.kind, n.related_student_id, n.related_post_id, n.related_query_id, n.read, n.created_at,
s.name AS student_name, p.title AS post_title, q.text AS query_text
FROM team_notifications n
LEFT JOIN students s ON s.id = n.related_student_id
LEFT JOIN posts p ON p.id = n.related_post_id
LEFT JOIN queries q ON q.id = n.related_query_id
WHERE n.recipient_id = $1 ORDER BY n.created_at DESC`
	items := make([]models.TeamNotificationView, 0)
	if err := r.db.SelectContext(ctx, &items, query, recipientID); err != nil {
		return nil, fmt.Errorf("list team notifications: %w", err)
	}
	return items, nil
}

// ListStudent returns the student's notifications newest first.
func (r *NotificationRepository) ListStudent(ctx context.Context, recipientID string) ([]models.StudentNotificationView, error) {
	const query = `SELECT n.id, n.recipient_id, n.kind, n.related_team_member_id, n.related_post_id, n.related_query_id, n.related_reply_id, n.read, n.created_at,
t.name AS team_member_name, p.title AS post_title, q.text AS query_text, rp.text AS reply_text
FROM student_notifications n
LEFT JOIN team_members t ON t.id = n.related_team_member_id
LEFT JOIN posts p ON p.id = n.related_post_id
LEFT JOIN queries q ON q.id = n.related_query_id
LEFT JOIN replies rp ON rp.id = n.related_reply_id
WHERE n.recipient_id = $1 ORDER BY n.created_at DESC`
	items := make([]models.StudentNotificationView, 0)
	if err := r.db.SelectContext(ctx, &items, query, recipientID); err != nil {
		return nil, fmt.Errorf("list student notifications: %w", err)
	}
	return items, nil
}

// MarkTeamRead sets read on a notification owned by the recipient. Otherwise sql.ErrNoRows.
func (r *NotificationRepository) MarkTeamRead(ctx context.Context, recipientID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE team_notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark team notification read: %w", err)
	}
	return expectAffected(res)
}

// MarkStudentRead sets read on a notification owned by the recipient. Otherwise sql.ErrNoRows.
func (r *NotificationRepository) MarkStudentRead(ctx context.Context, recipientID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE student_notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark student notification read: %w", err)
	}
	return expectAffected(res)
}
