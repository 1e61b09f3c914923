package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

func TestCalendarInsertStudentEventsBatches(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []models.CalendarEvent{
		{StudentID: "s1", PostID: "p1", Name: "Acme Hackathon Application Deadline", Date: day, Color: "#ff0000"},
		{StudentID: "s1", PostID: "p1", Name: "Acme Hackathon ", Date: day.AddDate(0, 1, 0), Color: "#ffcc00"},
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_calendar_events (id, student_id, post_id, name, event_date, color, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7), ($8, $9, $10, $11, $12, $13, $14)")).
		WithArgs(sqlmock.AnyArg(), "s1", "p1", events[0].Name, "2026-01-01", "#ff0000", sqlmock.AnyArg(),
			sqlmock.AnyArg(), "s1", "p1", events[1].Name, "2026-02-01", "#ffcc00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.InsertStudentEvents(context.Background(), nil, events))
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarInsertEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	require.NoError(t, repo.InsertTeamEvents(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarDeleteByPostClearsBothTablesInTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM team_calendar_events WHERE post_id = $1")).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_calendar_events WHERE post_id = $1")).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByPost(context.Background(), tx, "p1"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarListStudentEventsNormalizesDates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	ist := time.FixedZone("IST", 5*3600+1800)
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_calendar_events\nWHERE student_id = $1 ORDER BY event_date ASC")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "post_id", "name", "event_date", "color", "created_at"}).
			AddRow("e1", "s1", "p1", "Acme Event ", time.Date(2026, 8, 15, 0, 0, 0, 0, ist), "#ff3399", time.Now()))

	events, err := repo.ListStudentEvents(context.Background(), nil, "s1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), events[0].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarDeleteStudentEventScopedToOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_calendar_events WHERE id = $1 AND student_id = $2")).
		WithArgs("e1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteStudentEvent(context.Background(), "intruder", "e1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarDeleteStudentEventsForPostCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec("DELETE FROM student_calendar_events WHERE student_id = \\$1 AND post_id = \\$2").
		WithArgs("s1", "p1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteStudentEventsForPost(context.Background(), nil, "s1", "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
