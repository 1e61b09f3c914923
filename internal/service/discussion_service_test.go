package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type memDiscussionRepo struct {
	queries []*models.Query
	replies []*models.Reply
}

func (m *memDiscussionRepo) CreateQuery(_ context.Context, q *models.Query) error {
	q.ID = fmt.Sprintf("q%d", len(m.queries)+1)
	m.queries = append(m.queries, q)
	return nil
}

func (m *memDiscussionRepo) FindQueryByID(_ context.Context, id string) (*models.Query, error) {
	for _, q := range m.queries {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memDiscussionRepo) CreateReply(_ context.Context, r *models.Reply) error {
	r.ID = fmt.Sprintf("r%d", len(m.replies)+1)
	m.replies = append(m.replies, r)
	return nil
}

func (m *memDiscussionRepo) ListThreads(context.Context, string) ([]models.QueryThread, error) {
	return []models.QueryThread{}, nil
}

type memNotificationRepo struct {
	team    []*models.TeamNotification
	student []*models.StudentNotification
	err     error
}

func (m *memNotificationRepo) CreateTeam(_ context.Context, n *models.TeamNotification) error {
	if m.err != nil {
		return m.err
	}
	m.team = append(m.team, n)
	return nil
}

func (m *memNotificationRepo) CreateStudent(_ context.Context, n *models.StudentNotification) error {
	if m.err != nil {
		return m.err
	}
	m.student = append(m.student, n)
	return nil
}

func discussionFixture() (memPostReader, *memDiscussionRepo, *memNotificationRepo) {
	posts := memPostReader{"p1": {ID: "p1", AuthorID: "t1", Organization: "Acme", Title: "SDE"}}
	return posts, &memDiscussionRepo{}, &memNotificationRepo{}
}

func TestAskQueryNotifiesPostAuthor(t *testing.T) {
	posts, discussions, notifications := discussionFixture()
	svc := NewDiscussionService(posts, discussions, notifications, nil, nil)

	query, err := svc.AskQuery(context.Background(), "s1", "p1", "  Is it remote?  ")
	require.NoError(t, err)
	assert.Equal(t, "Is it remote?", query.Text)

	require.Len(t, notifications.team, 1)
	n := notifications.team[0]
	assert.Equal(t, "t1", n.RecipientID)
	assert.Equal(t, models.NotificationQuery, n.Kind)
	assert.Equal(t, "s1", *n.RelatedStudentID)
	assert.Equal(t, query.ID, *n.RelatedQueryID)
}

func TestAskQueryEmptyTextFailsBeforeLookup(t *testing.T) {
	_, discussions, notifications := discussionFixture()
	svc := NewDiscussionService(memPostReader{}, discussions, notifications, nil, nil)

	_, err := svc.AskQuery(context.Background(), "s1", "missing", "   ")

	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, discussions.queries)
	assert.Empty(t, notifications.team)
}

func TestAskQueryMissingPost(t *testing.T) {
	_, discussions, notifications := discussionFixture()
	svc := NewDiscussionService(memPostReader{}, discussions, notifications, nil, nil)

	_, err := svc.AskQuery(context.Background(), "s1", "missing", "hello")

	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, discussions.queries)
}

func TestAskQuerySurvivesNotificationFailure(t *testing.T) {
	posts, discussions, notifications := discussionFixture()
	notifications.err = errors.New("connection reset")
	core, logs := observer.New(zap.WarnLevel)
	metrics := NewMetricsService()
	svc := NewDiscussionService(posts, discussions, notifications, metrics, zap.New(core))

	query, err := svc.AskQuery(context.Background(), "s1", "p1", "Stipend?")

	require.NoError(t, err)
	assert.NotEmpty(t, query.ID)
	assert.Len(t, discussions.queries, 1)
	assert.Equal(t, 1, logs.FilterMessage("failed to notify post author").Len())
	assert.EqualValues(t, 1, metrics.Snapshot().NotificationFailures)
}

func TestReplyNotifiesQueryAuthor(t *testing.T) {
	posts, discussions, notifications := discussionFixture()
	svc := NewDiscussionService(posts, discussions, notifications, nil, nil)
	ctx := context.Background()

	query, err := svc.AskQuery(ctx, "r-student", "p1", "Dress code?")
	require.NoError(t, err)

	reply, err := svc.ReplyToQuery(ctx, "t1", query.ID, "Formal.")
	require.NoError(t, err)
	assert.Equal(t, "p1", reply.PostID)

	require.Len(t, notifications.student, 1)
	n := notifications.student[0]
	assert.Equal(t, "r-student", n.RecipientID)
	assert.Equal(t, models.NotificationReply, n.Kind)
	assert.Equal(t, "t1", *n.RelatedTeamMemberID)
	assert.Equal(t, reply.ID, *n.RelatedReplyID)
}

func TestReplyToMissingQuery(t *testing.T) {
	posts, discussions, notifications := discussionFixture()
	svc := NewDiscussionService(posts, discussions, notifications, nil, nil)

	_, err := svc.ReplyToQuery(context.Background(), "t1", "nope", "text")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.ReplyToQuery(context.Background(), "t1", "nope", "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, notifications.student)
}

func TestReplyWhenPostWasDeleted(t *testing.T) {
	posts, discussions, notifications := discussionFixture()
	svc := NewDiscussionService(posts, discussions, notifications, nil, nil)
	query, err := svc.AskQuery(context.Background(), "s1", "p1", "Still open?")
	require.NoError(t, err)
	delete(posts, "p1")

	_, err = svc.ReplyToQuery(context.Background(), "t1", query.ID, "No.")

	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, discussions.replies)
}
