package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/catalog"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type calendarEventRepository interface {
	InsertTeamEvents(ctx context.Context, exec sqlx.ExtContext, events []models.CalendarEvent) error
	InsertStudentEvents(ctx context.Context, exec sqlx.ExtContext, events []models.CalendarEvent) error
	DeleteByPost(ctx context.Context, exec sqlx.ExtContext, postID string) error
	DeleteStudentEventsForPost(ctx context.Context, exec sqlx.ExtContext, studentID, postID string) (int64, error)
	ExistsForStudentPost(ctx context.Context, exec sqlx.ExtContext, studentID, postID string) (bool, error)
	ListStudentEvents(ctx context.Context, exec sqlx.ExtContext, studentID string) ([]models.CalendarEvent, error)
	ListTeamEvents(ctx context.Context) ([]models.CalendarEvent, error)
	DeleteStudentEvent(ctx context.Context, studentID, eventID string) error
}

type postReader interface {
	FindByID(ctx context.Context, id string) (*models.Post, error)
}

// ToggleResult reports whether the post was added to or removed from the
// student's calendar, with the student's events after the change.
type ToggleResult struct {
	Added  bool
	Events []models.CalendarEvent
}

// CalendarSyncService projects post milestones onto team and student calendars.
type CalendarSyncService struct {
	db         txProvider
	events     calendarEventRepository
	posts      postReader
	milestones []catalog.Milestone
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewCalendarSyncService constructs the calendar sync engine. Milestones are
// materialized in the order given.
func NewCalendarSyncService(db txProvider, events calendarEventRepository, posts postReader, milestones []catalog.Milestone, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *CalendarSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarSyncService{
		db:         db,
		events:     events,
		posts:      posts,
		milestones: milestones,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// MaterializeEventsForPost derives one event per present milestone. Stored
// labels and colors win over the kind defaults. The result is never nil.
func (s *CalendarSyncService) MaterializeEventsForPost(post *models.Post) []models.CalendarEvent {
	events := make([]models.CalendarEvent, 0, len(post.Milestones))
	for _, def := range s.milestones {
		ms, ok := post.Milestones[def.Kind]
		if !ok || ms.Date.IsZero() {
			continue
		}
		label := ms.Label
		if label == "" {
			label = def.Label
		}
		color := ms.Color
		if color == "" {
			color = def.Color
		}
		events = append(events, models.CalendarEvent{
			PostID: post.ID,
			Name:   strings.Join([]string{post.Organization, post.Category, label}, " "),
			Date:   ms.Date,
			Color:  color,
		})
	}
	return events
}

// ResyncPostWith replaces every event of the post with fresh team events
// using exec. Callers own the transaction and must call InvalidateTeamCalendar after commit.
func (s *CalendarSyncService) ResyncPostWith(ctx context.Context, exec sqlx.ExtContext, post *models.Post) error {
	if err := s.events.DeleteByPost(ctx, exec, post.ID); err != nil {
		return appErrors.Internal(err, "failed to purge calendar events")
	}
	events := s.MaterializeEventsForPost(post)
	if err := s.events.InsertTeamEvents(ctx, exec, events); err != nil {
		return appErrors.Internal(err, "failed to store calendar events")
	}
	s.metrics.AddCalendarEvents("team", len(events))
	return nil
}

// PurgeEventsWith deletes every team and student event of the post using exec.
func (s *CalendarSyncService) PurgeEventsWith(ctx context.Context, exec sqlx.ExtContext, postID string) error {
	if err := s.events.DeleteByPost(ctx, exec, postID); err != nil {
		return appErrors.Internal(err, "failed to purge calendar events")
	}
	return nil
}

// ResyncPost purges and re-materializes the post's events in one transaction.
func (s *CalendarSyncService) ResyncPost(ctx context.Context, post *models.Post) error {
	start := time.Now()
	if err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.ResyncPostWith(ctx, tx, post)
	}); err != nil {
		return err
	}
	s.metrics.ObserveDBQuery("calendar_resync", time.Since(start))
	s.InvalidateTeamCalendar(ctx)
	return nil
}

// PurgeEventsForPost deletes the post's events from both calendars. Idempotent.
func (s *CalendarSyncService) PurgeEventsForPost(ctx context.Context, postID string) error {
	if err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.PurgeEventsWith(ctx, tx, postID)
	}); err != nil {
		return err
	}
	s.InvalidateTeamCalendar(ctx)
	return nil
}

// InvalidateTeamCalendar drops the cached team calendar.
func (s *CalendarSyncService) InvalidateTeamCalendar(ctx context.Context) {
	s.cache.Invalidate(ctx, cacheKeyTeamCalendar)
}

// ToggleStudentCalendar removes the post's events from the student's calendar
// when any exist, otherwise adds one event per milestone.
func (s *CalendarSyncService) ToggleStudentCalendar(ctx context.Context, studentID, postID string) (*ToggleResult, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to load post")
	}

	result := &ToggleResult{}
	start := time.Now()
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		exists, err := s.events.ExistsForStudentPost(ctx, tx, studentID, postID)
		if err != nil {
			return appErrors.Internal(err, "failed to check calendar")
		}
		if exists {
			if _, err := s.events.DeleteStudentEventsForPost(ctx, tx, studentID, postID); err != nil {
				return appErrors.Internal(err, "failed to remove calendar events")
			}
		} else {
			events := s.MaterializeEventsForPost(post)
			for i := range events {
				events[i].StudentID = studentID
			}
			if err := s.events.InsertStudentEvents(ctx, tx, events); err != nil {
				return appErrors.Internal(err, "failed to add calendar events")
			}
			s.metrics.AddCalendarEvents("student", len(events))
			result.Added = true
		}

		result.Events, err = s.events.ListStudentEvents(ctx, tx, studentID)
		if err != nil {
			return appErrors.Internal(err, "failed to load calendar")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDBQuery("calendar_toggle", time.Since(start))
	return result, nil
}

// CheckStudentCalendar reports whether the student has any event for the post.
func (s *CalendarSyncService) CheckStudentCalendar(ctx context.Context, studentID, postID string) (bool, error) {
	exists, err := s.events.ExistsForStudentPost(ctx, nil, studentID, postID)
	if err != nil {
		return false, appErrors.Internal(err, "failed to check calendar")
	}
	return exists, nil
}

// ListStudentEvents returns the student's calendar.
func (s *CalendarSyncService) ListStudentEvents(ctx context.Context, studentID string) ([]models.CalendarEvent, error) {
	events, err := s.events.ListStudentEvents(ctx, nil, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load calendar")
	}
	return events, nil
}

// ListTeamEvents returns the shared team calendar, served from cache when warm.
func (s *CalendarSyncService) ListTeamEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	var cached []models.CalendarEvent
	if s.cache.Get(ctx, cacheKeyTeamCalendar, &cached) {
		return cached, nil
	}
	events, err := s.events.ListTeamEvents(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load calendar")
	}
	s.cache.Set(ctx, cacheKeyTeamCalendar, events, 0)
	return events, nil
}

// DeleteStudentEvent removes a single event owned by the student.
func (s *CalendarSyncService) DeleteStudentEvent(ctx context.Context, studentID, eventID string) error {
	if err := s.events.DeleteStudentEvent(ctx, studentID, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "calendar event not found")
		}
		return appErrors.Internal(err, "failed to delete calendar event")
	}
	return nil
}
