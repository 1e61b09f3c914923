package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/catalog"
	"github.com/noah-isme/placement-portal-api/pkg/dates"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type memCalendarRepo struct {
	team      []models.CalendarEvent
	student   []models.CalendarEvent
	teamLists int
	insertErr error
	nextID    int
}

func (m *memCalendarRepo) id() string {
	m.nextID++
	return fmt.Sprintf("e%d", m.nextID)
}

func (m *memCalendarRepo) InsertTeamEvents(_ context.Context, _ sqlx.ExtContext, events []models.CalendarEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, e := range events {
		e.ID = m.id()
		m.team = append(m.team, e)
	}
	return nil
}

func (m *memCalendarRepo) InsertStudentEvents(_ context.Context, _ sqlx.ExtContext, events []models.CalendarEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, e := range events {
		e.ID = m.id()
		m.student = append(m.student, e)
	}
	return nil
}

func (m *memCalendarRepo) DeleteByPost(_ context.Context, _ sqlx.ExtContext, postID string) error {
	m.team = filterEvents(m.team, func(e models.CalendarEvent) bool { return e.PostID != postID })
	m.student = filterEvents(m.student, func(e models.CalendarEvent) bool { return e.PostID != postID })
	return nil
}

func (m *memCalendarRepo) DeleteStudentEventsForPost(_ context.Context, _ sqlx.ExtContext, studentID, postID string) (int64, error) {
	before := len(m.student)
	m.student = filterEvents(m.student, func(e models.CalendarEvent) bool { return e.StudentID != studentID || e.PostID != postID })
	return int64(before - len(m.student)), nil
}

func (m *memCalendarRepo) ExistsForStudentPost(_ context.Context, _ sqlx.ExtContext, studentID, postID string) (bool, error) {
	for _, e := range m.student {
		if e.StudentID == studentID && e.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCalendarRepo) ListStudentEvents(_ context.Context, _ sqlx.ExtContext, studentID string) ([]models.CalendarEvent, error) {
	return filterEvents(m.student, func(e models.CalendarEvent) bool { return e.StudentID == studentID }), nil
}

func (m *memCalendarRepo) ListTeamEvents(context.Context) ([]models.CalendarEvent, error) {
	m.teamLists++
	return append([]models.CalendarEvent{}, m.team...), nil
}

func (m *memCalendarRepo) DeleteStudentEvent(_ context.Context, studentID, eventID string) error {
	before := len(m.student)
	m.student = filterEvents(m.student, func(e models.CalendarEvent) bool { return e.ID != eventID || e.StudentID != studentID })
	if len(m.student) == before {
		return sql.ErrNoRows
	}
	return nil
}

func filterEvents(in []models.CalendarEvent, keep func(models.CalendarEvent) bool) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(in))
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

type memPostReader map[string]*models.Post

func (m memPostReader) FindByID(_ context.Context, id string) (*models.Post, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func testMilestones(t *testing.T) []catalog.Milestone {
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat.Milestones
}

func day(t *testing.T, raw string) time.Time {
	d, err := dates.Normalize(raw)
	require.NoError(t, err)
	return d
}

func newSyncService(t *testing.T, repo *memCalendarRepo, posts memPostReader, cache *CacheService) (*CalendarSyncService, func(n int)) {
	db, mock := newTxProviderMock(t)
	svc := NewCalendarSyncService(db, repo, posts, testMilestones(t), cache, nil, nil)
	expectTx := func(n int) {
		for i := 0; i < n; i++ {
			mock.ExpectBegin()
			mock.ExpectCommit()
		}
	}
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return svc, expectTx
}

func TestMaterializeSingleDeadlineUsesDefaults(t *testing.T) {
	svc, _ := newSyncService(t, &memCalendarRepo{}, nil, nil)
	post := &models.Post{
		ID:           "p1",
		Organization: "Acme",
		Category:     models.CategoryHackathon,
		Milestones: map[string]models.Milestone{
			models.MilestoneApplicationDeadline: {Date: day(t, "01-01-2026")},
		},
	}

	events := svc.MaterializeEventsForPost(post)

	require.Len(t, events, 1)
	assert.Equal(t, "Acme Hackathon Application Deadline", events[0].Name)
	assert.Equal(t, "2026-01-01", dates.Format(events[0].Date))
	assert.Equal(t, "#ff0000", events[0].Color)
	assert.Equal(t, "p1", events[0].PostID)
}

func TestMaterializeWithoutMilestonesIsEmpty(t *testing.T) {
	svc, _ := newSyncService(t, &memCalendarRepo{}, nil, nil)

	events := svc.MaterializeEventsForPost(&models.Post{ID: "p1", Organization: "Acme", Category: models.CategoryEvent})

	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestMaterializeFollowsCatalogOrderAndOverrides(t *testing.T) {
	svc, _ := newSyncService(t, &memCalendarRepo{}, nil, nil)
	post := &models.Post{
		ID:           "p1",
		Organization: "Acme",
		Category:     models.CategoryPlacement,
		Milestones: map[string]models.Milestone{
			models.MilestoneInterview:           {Date: day(t, "2026-03-01"), Label: "Final Round", Color: "#123456"},
			models.MilestoneApplicationDeadline: {Date: day(t, "2026-01-01")},
			models.MilestoneHackathon:           {Date: day(t, "2026-02-01")},
			models.MilestoneCodingTest:          {},
		},
	}

	events := svc.MaterializeEventsForPost(post)

	require.Len(t, events, 3)
	assert.Equal(t, "Acme Internship and/or Placement Application Deadline", events[0].Name)
	assert.Equal(t, "Acme Internship and/or Placement Final Round", events[1].Name)
	assert.Equal(t, "#123456", events[1].Color)
	assert.Equal(t, "Acme Internship and/or Placement ", events[2].Name)
	assert.Equal(t, "#ffcc00", events[2].Color)
}

func TestResyncReplacesTeamAndStudentEvents(t *testing.T) {
	repo := &memCalendarRepo{
		student: []models.CalendarEvent{{ID: "old", StudentID: "s1", PostID: "p1", Name: "stale"}},
	}
	svc, expectTx := newSyncService(t, repo, nil, nil)
	post := &models.Post{
		ID:           "p1",
		Organization: "Acme",
		Category:     models.CategoryEvent,
		Milestones: map[string]models.Milestone{
			models.MilestoneEvent:        {Date: day(t, "2026-05-05")},
			models.MilestoneAptitudeTest: {Date: day(t, "2026-04-04")},
		},
	}
	expectTx(2)

	require.NoError(t, svc.ResyncPost(context.Background(), post))
	first := eventShapes(repo.team)
	require.NoError(t, svc.ResyncPost(context.Background(), post))

	assert.Equal(t, first, eventShapes(repo.team))
	assert.Len(t, repo.team, 2)
	assert.Empty(t, repo.student)
}

func eventShapes(events []models.CalendarEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Name+"|"+dates.Format(e.Date)+"|"+e.Color)
	}
	return out
}

func TestResyncFailureRollsBack(t *testing.T) {
	db, mock := newTxProviderMock(t)
	repo := &memCalendarRepo{insertErr: errors.New("disk full")}
	svc := NewCalendarSyncService(db, repo, nil, testMilestones(t), nil, nil, nil)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.ResyncPost(context.Background(), &models.Post{ID: "p1", Milestones: map[string]models.Milestone{
		models.MilestoneEvent: {Date: day(t, "2026-05-05")},
	}})

	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeWithoutEventsIsNoop(t *testing.T) {
	repo := &memCalendarRepo{}
	svc, expectTx := newSyncService(t, repo, nil, nil)
	expectTx(2)

	require.NoError(t, svc.PurgeEventsForPost(context.Background(), "p1"))
	require.NoError(t, svc.PurgeEventsForPost(context.Background(), "p1"))
}

func TestToggleTwiceAddsThenRemoves(t *testing.T) {
	repo := &memCalendarRepo{}
	posts := memPostReader{"p1": {
		ID:           "p1",
		Organization: "Acme",
		Category:     models.CategoryPlacement,
		Milestones: map[string]models.Milestone{
			models.MilestoneApplicationDeadline: {Date: day(t, "01-01-2026")},
			models.MilestoneCodingTest:          {Date: day(t, "10-01-2026")},
			models.MilestoneInterview:           {Date: day(t, "20-01-2026")},
		},
	}}
	svc, expectTx := newSyncService(t, repo, posts, nil)
	expectTx(2)
	ctx := context.Background()

	on, err := svc.ToggleStudentCalendar(ctx, "s1", "p1")
	require.NoError(t, err)
	assert.True(t, on.Added)
	assert.Len(t, on.Events, 3)
	for _, e := range on.Events {
		assert.Equal(t, "s1", e.StudentID)
	}
	added, err := svc.CheckStudentCalendar(ctx, "s1", "p1")
	require.NoError(t, err)
	assert.True(t, added)

	off, err := svc.ToggleStudentCalendar(ctx, "s1", "p1")
	require.NoError(t, err)
	assert.False(t, off.Added)
	assert.Empty(t, off.Events)
	added, err = svc.CheckStudentCalendar(ctx, "s1", "p1")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestToggleMissingPost(t *testing.T) {
	svc, _ := newSyncService(t, &memCalendarRepo{}, memPostReader{}, nil)

	_, err := svc.ToggleStudentCalendar(context.Background(), "s1", "missing")

	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDeleteStudentEventOfAnotherStudent(t *testing.T) {
	repo := &memCalendarRepo{student: []models.CalendarEvent{{ID: "e1", StudentID: "owner", PostID: "p1"}}}
	svc, _ := newSyncService(t, repo, nil, nil)

	err := svc.DeleteStudentEvent(context.Background(), "intruder", "e1")

	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Len(t, repo.student, 1)
}

func TestTeamCalendarCachedUntilResync(t *testing.T) {
	repo := &memCalendarRepo{}
	cacheRepo := &stubCacheRepo{}
	svc, expectTx := newSyncService(t, repo, nil, newTestCache(cacheRepo))
	expectTx(1)
	ctx := context.Background()

	_, err := svc.ListTeamEvents(ctx)
	require.NoError(t, err)
	_, err = svc.ListTeamEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.teamLists)

	require.NoError(t, svc.ResyncPost(ctx, &models.Post{ID: "p1", Organization: "Acme", Category: models.CategoryEvent,
		Milestones: map[string]models.Milestone{models.MilestoneEvent: {Date: day(t, "2026-05-05")}}}))

	events, err := svc.ListTeamEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.teamLists)
	require.Len(t, events, 1)
	assert.Equal(t, "2026-05-05", dates.Format(events[0].Date))

	cached, err := svc.ListTeamEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, events[0].Date, cached[0].Date)
	assert.Equal(t, 2, repo.teamLists)
}
