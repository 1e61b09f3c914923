package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

const exportJobColumns = `id, student_id, format, status, result_url, error, created_at, updated_at`

// ExportJobRepository persists calendar export job metadata.
type ExportJobRepository struct {
	db *sqlx.DB
}

// NewExportJobRepository constructs the repository.
func NewExportJobRepository(db *sqlx.DB) *ExportJobRepository {
	return &ExportJobRepository{db: db}
}

// Create inserts a new job row with generated defaults.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.CalendarExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	const query = `INSERT INTO calendar_export_jobs (` + exportJobColumns + `)
VALUES (:id, :student_id, :format, :status, :result_url, :error, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// GetByID returns a job row. Absence yields sql.ErrNoRows.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.CalendarExportJob, error) {
	var job models.CalendarExportJob
	if err := r.db.GetContext(ctx, &job, `SELECT `+exportJobColumns+` FROM calendar_export_jobs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get export job: %w", err)
	}
	return &job, nil
}

// UpdateExportJobParams defines the mutable fields.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	ResultURL    *string
	ErrorMessage *string
}

// Update persists the provided changes for a job row.
func (r *ExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.ResultURL != nil {
		add("result_url", *params.ResultURL)
	}
	if params.ErrorMessage != nil {
		add("error", *params.ErrorMessage)
	}
	if len(set) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE calendar_export_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update export job: %w", err)
	}
	return nil
}

// ListQueued fetches queued jobs for cold start recovery.
func (r *ExportJobRepository) ListQueued(ctx context.Context, limit int) ([]models.CalendarExportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	var jobs []models.CalendarExportJob
	if err := r.db.SelectContext(ctx, &jobs, `SELECT `+exportJobColumns+` FROM calendar_export_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("list queued export jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves completed jobs older than cutoff for cleanup.
func (r *ExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.CalendarExportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	var jobs []models.CalendarExportJob
	if err := r.db.SelectContext(ctx, &jobs, `SELECT `+exportJobColumns+` FROM calendar_export_jobs WHERE status = 'FINISHED' AND updated_at < $1 ORDER BY updated_at ASC LIMIT $2`, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished export jobs: %w", err)
	}
	return jobs, nil
}
