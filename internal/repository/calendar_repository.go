package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/dates"
)

// CalendarRepository persists team and student calendar events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertTeamEvents stores team events in one statement. Empty input is a no-op.
func (r *CalendarRepository) InsertTeamEvents(ctx context.Context, exec sqlx.ExtContext, events []models.CalendarEvent) error {
	if err := r.insert(ctx, exec, "team_calendar_events", []string{"id", "post_id", "name", "event_date", "color", "created_at"}, events, func(e models.CalendarEvent) []interface{} {
		return []interface{}{e.ID, e.PostID, e.Name, dates.Format(e.Date), e.Color, e.CreatedAt}
	}); err != nil {
		return fmt.Errorf("insert team events: %w", err)
	}
	return nil
}

// InsertStudentEvents stores student events in one statement. Empty input is a no-op.
func (r *CalendarRepository) InsertStudentEvents(ctx context.Context, exec sqlx.ExtContext, events []models.CalendarEvent) error {
	if err := r.insert(ctx, exec, "student_calendar_events", []string{"id", "student_id", "post_id", "name", "event_date", "color", "created_at"}, events, func(e models.CalendarEvent) []interface{} {
		return []interface{}{e.ID, e.StudentID, e.PostID, e.Name, dates.Format(e.Date), e.Color, e.CreatedAt}
	}); err != nil {
		return fmt.Errorf("insert student events: %w", err)
	}
	return nil
}

func (r *CalendarRepository) insert(ctx context.Context, exec sqlx.ExtContext, table string, cols []string, events []models.CalendarEvent, row func(models.CalendarEvent) []interface{}) error {
	if len(events) == 0 {
		return nil
	}
	now := time.Now().UTC()
	tuples := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*len(cols))
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.NewString()
		}
		events[i].CreatedAt = now
		placeholders := make([]string, len(cols))
		for j := range cols {
			placeholders[j] = fmt.Sprintf("$%d", len(args)+j+1)
		}
		tuples = append(tuples, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, row(events[i])...)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ", "), strings.Join(tuples, ", "))
	_, err := r.exec(exec).ExecContext(ctx, query, args...)
	return err
}

// DeleteByPost removes every team and student event derived from the post.
func (r *CalendarRepository) DeleteByPost(ctx context.Context, exec sqlx.ExtContext, postID string) error {
	e := r.exec(exec)
	if _, err := e.ExecContext(ctx, `DELETE FROM team_calendar_events WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete team events by post: %w", err)
	}
	if _, err := e.ExecContext(ctx, `DELETE FROM student_calendar_events WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete student events by post: %w", err)
	}
	return nil
}

// DeleteStudentEventsForPost removes the student's events for one post and reports how many went.
func (r *CalendarRepository) DeleteStudentEventsForPost(ctx context.Context, exec sqlx.ExtContext, studentID, postID string) (int64, error) {
	res, err := r.exec(exec).ExecContext(ctx, `DELETE FROM student_calendar_events WHERE student_id = $1 AND post_id = $2`, studentID, postID)
	if err != nil {
		return 0, fmt.Errorf("delete student events for post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete student events for post: %w", err)
	}
	return n, nil
}

// ExistsForStudentPost reports whether the student has any event for the post.
func (r *CalendarRepository) ExistsForStudentPost(ctx context.Context, exec sqlx.ExtContext, studentID, postID string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, `SELECT EXISTS(SELECT 1 FROM student_calendar_events WHERE student_id = $1 AND post_id = $2)`, studentID, postID); err != nil {
		return false, fmt.Errorf("check student events: %w", err)
	}
	return exists, nil
}

// ListStudentEvents returns the student's events by date.
func (r *CalendarRepository) ListStudentEvents(ctx context.Context, exec sqlx.ExtContext, studentID string) ([]models.CalendarEvent, error) {
	const query = `SELECT id, student_id, post_id, name, event_date, color, created_at FROM student_calendar_events
WHERE student_id = $1 ORDER BY event_date ASC, name ASC`
	events := make([]models.CalendarEvent, 0)
	if err := sqlx.SelectContext(ctx, r.exec(exec), &events, query, studentID); err != nil {
		return nil, fmt.Errorf("list student events: %w", err)
	}
	return normalizeEventDates(events), nil
}

// ListTeamEvents returns every team event by date.
func (r *CalendarRepository) ListTeamEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	const query = `SELECT id, post_id, name, event_date, color, created_at FROM team_calendar_events ORDER BY event_date ASC, name ASC`
	events := make([]models.CalendarEvent, 0)
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list team events: %w", err)
	}
	return normalizeEventDates(events), nil
}

// DeleteStudentEvent removes one event owned by the student. Otherwise sql.ErrNoRows.
func (r *CalendarRepository) DeleteStudentEvent(ctx context.Context, studentID, eventID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_calendar_events WHERE id = $1 AND student_id = $2`, eventID, studentID)
	if err != nil {
		return fmt.Errorf("delete student event: %w", err)
	}
	return expectAffected(res)
}

// DATE columns come back at the driver's location; keep the calendar date only.
func normalizeEventDates(events []models.CalendarEvent) []models.CalendarEvent {
	for i := range events {
		events[i].Date = dates.Day(events[i].Date)
	}
	return events
}
