package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

var exportJobRowColumns = []string{"id", "student_id", "format", "status", "result_url", "error", "created_at", "updated_at"}

func TestExportJobCreateAndGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO calendar_export_jobs")).
		WithArgs(sqlmock.AnyArg(), "s1", "ics", "QUEUED", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.CalendarExportJob{StudentID: "s1", Format: models.ExportFormatICS}
	require.NoError(t, repo.Create(context.Background(), job))

	mock.ExpectQuery(regexp.QuoteMeta("FROM calendar_export_jobs WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(sqlmock.NewRows(exportJobRowColumns).AddRow(job.ID, "s1", "ics", "QUEUED", nil, nil, time.Now(), time.Now()))

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusQueued, fetched.Status)
	require.Nil(t, fetched.ResultURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	status := models.ExportStatusFinished
	result := "/api/v1/calendar/exports/download/token"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE calendar_export_jobs SET status = $1, result_url = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(status, result, sqlmock.AnyArg(), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateExportJobParams{Status: &status, ResultURL: &result}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobUpdateWithoutChangesIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateExportJobParams{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobListQueued(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(exportJobRowColumns).AddRow("job-1", "s1", "csv", "QUEUED", nil, nil, time.Now(), time.Now()))

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
