package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/repository"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/export"
	"github.com/noah-isme/placement-portal-api/pkg/jobs"
	"github.com/noah-isme/placement-portal-api/pkg/storage"
)

// JobTypeCalendarExport tags queue jobs produced by CalendarExportService.
const JobTypeCalendarExport = "calendar_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.CalendarExportJob) error
	GetByID(ctx context.Context, id string) (*models.CalendarExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.CalendarExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.CalendarExportJob, error)
}

type studentEventLister interface {
	ListStudentEvents(ctx context.Context, studentID string) ([]models.CalendarEvent, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string) (storage.DownloadClaims, error)
}

// CalendarExportConfig governs download URLs, retention and cleanup.
type CalendarExportConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload is a resolved, ready-to-stream export file.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// CalendarExportService manages calendar export jobs from request to download.
type CalendarExportService struct {
	repo     exportJobStore
	events   studentEventLister
	queue    jobDispatcher
	storage  fileStorage
	signer   downloadSigner
	validate *validator.Validate
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      CalendarExportConfig
}

// NewCalendarExportService constructs the export service. queue may be set
// later with SetQueue since the queue needs the service's Handle method.
func NewCalendarExportService(repo exportJobStore, events studentEventLister, store fileStorage, signer downloadSigner, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg CalendarExportConfig) *CalendarExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &CalendarExportService{
		repo:     repo,
		events:   events,
		storage:  store,
		signer:   signer,
		validate: validate,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// SetQueue attaches the dispatcher jobs are pushed onto.
func (s *CalendarExportService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob persists a queued export for the student and dispatches it.
func (s *CalendarExportService) CreateJob(ctx context.Context, studentID string, req dto.CreateExportRequest) (*models.CalendarExportJob, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "format must be one of csv, pdf, ics")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "calendar exports are disabled")
	}

	job := &models.CalendarExportJob{
		StudentID: studentID,
		Format:    models.ExportFormat(req.Format),
		Status:    models.ExportStatusQueued,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Internal(err, "failed to create export job")
	}
	s.metrics.RecordExportJob(job.Format, job.Status)

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeCalendarExport}); err != nil {
		s.markFailed(ctx, job, "failed to enqueue job")
		return nil, appErrors.Internal(err, "failed to enqueue export job")
	}
	return job, nil
}

// GetStatus returns the job if it belongs to studentID. Jobs of other
// students are reported as missing.
func (s *CalendarExportService) GetStatus(ctx context.Context, studentID, id string) (*models.CalendarExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Internal(err, "failed to load export job")
	}
	if job.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// ResolveDownload validates a signed token and opens the stored file.
func (s *CalendarExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, claims.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Internal(err, "failed to load export job")
	}
	if job.ResultURL == nil || extractToken(*job.ResultURL) != token {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}

	renderer, err := export.RendererFor(string(job.Format))
	if err != nil {
		return nil, appErrors.Internal(err, "unsupported export format")
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    path.Base(claims.Path),
		ContentType: renderer.ContentType(),
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// Handle is the queue handler: it renders the student's calendar and
// records the signed download URL. Failed attempts put the job back in
// QUEUED so the status reflects the pending retry.
func (s *CalendarExportService) Handle(ctx context.Context, queued jobs.Job) error {
	job, err := s.repo.GetByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", queued.ID, err)
	}
	processing := models.ExportStatusProcessing
	if err := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing}); err != nil {
		return fmt.Errorf("mark export job processing: %w", err)
	}

	url, err := s.render(ctx, job)
	if err != nil {
		retry := models.ExportStatusQueued
		msg := err.Error()
		if updateErr := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &retry, ErrorMessage: &msg}); updateErr != nil {
			s.logger.Warn("failed to requeue export job", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	finished := models.ExportStatusFinished
	clear := ""
	if err := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		ResultURL:    &url,
		ErrorMessage: &clear,
	}); err != nil {
		return fmt.Errorf("mark export job finished: %w", err)
	}
	s.metrics.RecordExportJob(job.Format, finished)
	return nil
}

// GiveUp marks a job FAILED once the queue has exhausted its retries.
func (s *CalendarExportService) GiveUp(queued jobs.Job, cause error) {
	ctx := context.Background()
	job, err := s.repo.GetByID(ctx, queued.ID)
	if err != nil {
		s.logger.Warn("failed to load abandoned export job", zap.String("job_id", queued.ID), zap.Error(err))
		return
	}
	msg := "export failed"
	if cause != nil {
		msg = cause.Error()
	}
	s.markFailed(ctx, job, msg)
}

func (s *CalendarExportService) markFailed(ctx context.Context, job *models.CalendarExportJob, msg string) {
	failed := models.ExportStatusFailed
	if err := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &failed, ErrorMessage: &msg}); err != nil {
		s.logger.Warn("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	s.metrics.RecordExportJob(job.Format, failed)
}

func (s *CalendarExportService) render(ctx context.Context, job *models.CalendarExportJob) (string, error) {
	renderer, err := export.RendererFor(string(job.Format))
	if err != nil {
		return "", err
	}
	events, err := s.events.ListStudentEvents(ctx, job.StudentID)
	if err != nil {
		return "", err
	}
	cal := export.Calendar{Title: "Placement Calendar", Entries: make([]export.Entry, 0, len(events))}
	for _, event := range events {
		cal.Entries = append(cal.Entries, export.Entry{
			UID:   event.ID,
			Name:  event.Name,
			Date:  event.Date,
			Color: event.Color,
		})
	}
	payload, err := renderer.Render(cal)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("calendar_%s_%s.%s", job.ID, time.Now().UTC().Format("20060102_150405"), renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return "", err
	}
	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/calendar/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token), nil
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *CalendarExportService) RecoverPendingJobs(ctx context.Context) {
	if s.queue == nil {
		return
	}
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued export jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeCalendarExport}); err != nil {
			s.logger.Warn("failed to requeue pending export job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// StartCleanup purges expired exports every CleanupInterval until ctx ends.
func (s *CalendarExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *CalendarExportService) cleanupExpired(ctx context.Context) {
	const batch = 100
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	expired, err := s.repo.ListFinishedBefore(ctx, cutoff, batch)
	if err != nil {
		s.logger.Warn("export cleanup list failed", zap.Error(err))
		return
	}
	for _, job := range expired {
		if job.ResultURL == nil {
			continue
		}
		claims, err := s.signer.Parse(extractToken(*job.ResultURL))
		if err != nil && !errors.Is(err, storage.ErrTokenExpired) {
			continue
		}
		if err := s.storage.Delete(claims.Path); err != nil {
			s.logger.Warn("export cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if _, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export filesystem cleanup failed", zap.Error(err))
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}
