package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/catalog"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type memPostRepo struct {
	posts      map[string]*models.Post
	lastFilter *models.PostFilter
}

func (m *memPostRepo) FindByID(_ context.Context, id string) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (m *memPostRepo) List(_ context.Context, filter models.PostFilter) ([]models.PostView, error) {
	m.lastFilter = &filter
	views := make([]models.PostView, 0)
	for _, id := range filter.IDs {
		if p, ok := m.posts[id]; ok {
			views = append(views, models.PostView{Post: p})
		}
	}
	return views, nil
}

func (m *memPostRepo) Create(_ context.Context, _ sqlx.ExtContext, post *models.Post) error {
	post.ID = fmt.Sprintf("p%d", len(m.posts)+1)
	m.posts[post.ID] = post
	return nil
}

func (m *memPostRepo) Update(_ context.Context, _ sqlx.ExtContext, post *models.Post) error {
	if _, ok := m.posts[post.ID]; !ok {
		return sql.ErrNoRows
	}
	m.posts[post.ID] = post
	return nil
}

func (m *memPostRepo) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	if _, ok := m.posts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.posts, id)
	return nil
}

type memSavedRepo struct {
	saved map[string]bool
}

func (m *memSavedRepo) IsPostSaved(_ context.Context, studentID, postID string) (bool, error) {
	return m.saved[studentID+"/"+postID], nil
}

func (m *memSavedRepo) SavePost(_ context.Context, studentID, postID string) error {
	m.saved[studentID+"/"+postID] = true
	return nil
}

func (m *memSavedRepo) UnsavePost(_ context.Context, studentID, postID string) error {
	delete(m.saved, studentID+"/"+postID)
	return nil
}

func (m *memSavedRepo) ListSavedPostIDs(_ context.Context, studentID string) ([]string, error) {
	var ids []string
	for key := range m.saved {
		if len(key) > len(studentID) && key[:len(studentID)+1] == studentID+"/" {
			ids = append(ids, key[len(studentID)+1:])
		}
	}
	return ids, nil
}

type stubThreads struct{}

func (stubThreads) Threads(context.Context, string) ([]models.QueryThread, error) {
	return []models.QueryThread{}, nil
}

type stubMembers map[string]*models.TeamMember

func (s stubMembers) FindByID(_ context.Context, id string) (*models.TeamMember, error) {
	if m, ok := s[id]; ok {
		return m, nil
	}
	return nil, sql.ErrNoRows
}

type postFixture struct {
	svc      *PostService
	posts    *memPostRepo
	events   *memCalendarRepo
	saved    *memSavedRepo
	expectTx func(commit bool)
}

func newPostFixture(t *testing.T) *postFixture {
	cat, err := catalog.Default()
	require.NoError(t, err)
	validate, err := dto.NewValidator(cat)
	require.NoError(t, err)

	db, mock := newTxProviderMock(t)
	posts := &memPostRepo{posts: map[string]*models.Post{}}
	events := &memCalendarRepo{}
	saved := &memSavedRepo{saved: map[string]bool{}}
	sync := NewCalendarSyncService(db, events, posts, cat.Milestones, nil, nil, nil)
	members := stubMembers{"t1": {ID: "t1", Name: "Ravi"}}
	svc := NewPostService(db, posts, saved, sync, stubThreads{}, members, cat, validate, nil)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })

	return &postFixture{
		svc:    svc,
		posts:  posts,
		events: events,
		saved:  saved,
		expectTx: func(commit bool) {
			mock.ExpectBegin()
			if commit {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}
		},
	}
}

func validCreateRequest() dto.CreatePostRequest {
	cgpa := 7.0
	return dto.CreatePostRequest{
		Organization: "Acme",
		Title:        "SDE Intern",
		Category:     models.CategoryPlacement,
		Details:      "Summer internship",
		Branches:     []string{"COE"},
		Years:        []int{3},
		CGPA:         &cgpa,
		MilestoneInputs: dto.MilestoneInputs{
			ApplicationDeadline: &dto.MilestoneInput{Date: "01-01-2026"},
		},
	}
}

func TestCreatePostMaterializesTeamEvents(t *testing.T) {
	f := newPostFixture(t)
	f.expectTx(true)

	post, err := f.svc.CreatePost(context.Background(), "t1", validCreateRequest())

	require.NoError(t, err)
	assert.Equal(t, "Application Deadline", post.Milestones[models.MilestoneApplicationDeadline].Label)
	require.Len(t, f.events.team, 1)
	assert.Equal(t, "Acme Internship and/or Placement Application Deadline", f.events.team[0].Name)
	assert.Equal(t, post.ID, f.events.team[0].PostID)
}

func TestCreatePostRejectsMissingFields(t *testing.T) {
	f := newPostFixture(t)
	req := validCreateRequest()
	req.Title = ""
	req.Branches = []string{"Basket Weaving"}

	_, err := f.svc.CreatePost(context.Background(), "t1", req)

	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, f.posts.posts)
}

func TestCreatePostRejectsMalformedDate(t *testing.T) {
	f := newPostFixture(t)
	req := validCreateRequest()
	req.InterviewDate = &dto.MilestoneInput{Date: "31/31/2026"}

	_, err := f.svc.CreatePost(context.Background(), "t1", req)

	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, f.events.team)
}

func TestEditPostKeepsUnsetFieldsAndResyncs(t *testing.T) {
	f := newPostFixture(t)
	f.expectTx(true)
	post, err := f.svc.CreatePost(context.Background(), "t1", validCreateRequest())
	require.NoError(t, err)
	f.events.student = append(f.events.student, models.CalendarEvent{ID: "se", StudentID: "s1", PostID: post.ID})

	f.expectTx(true)
	edited, err := f.svc.EditPost(context.Background(), post.ID, dto.UpdatePostRequest{
		Title: "SDE Intern 2026",
		MilestoneInputs: dto.MilestoneInputs{
			InterviewDate: &dto.MilestoneInput{Date: "2026-02-10", Label: "Onsite"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "SDE Intern 2026", edited.Title)
	assert.Equal(t, "Acme", edited.Organization)
	assert.Len(t, edited.Milestones, 2)
	require.Len(t, f.events.team, 2)
	assert.Equal(t, "Acme Internship and/or Placement Onsite", f.events.team[1].Name)
	assert.Empty(t, f.events.student)
}

func TestEditMissingPost(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.EditPost(context.Background(), "nope", dto.UpdatePostRequest{Title: "x"})

	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDeletePostPurgesEventsAndReportsMissing(t *testing.T) {
	f := newPostFixture(t)
	f.expectTx(true)
	post, err := f.svc.CreatePost(context.Background(), "t1", validCreateRequest())
	require.NoError(t, err)

	f.expectTx(true)
	require.NoError(t, f.svc.DeletePost(context.Background(), post.ID))
	assert.Empty(t, f.events.team)

	f.expectTx(false)
	err = f.svc.DeletePost(context.Background(), post.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestGetPostIncludesAuthor(t *testing.T) {
	f := newPostFixture(t)
	f.expectTx(true)
	post, err := f.svc.CreatePost(context.Background(), "t1", validCreateRequest())
	require.NoError(t, err)

	view, err := f.svc.GetPost(context.Background(), post.ID)

	require.NoError(t, err)
	assert.Equal(t, "Ravi", view.Author.Name)
	assert.NotNil(t, view.Queries)
}

func TestListPostsTreatsAllAsNoFilter(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.ListPosts(context.Background(), dto.PostListQuery{SearchText: " acme ", Year: "All", EventType: "All", Branch: "COE", CGPA: "8.5"})

	require.NoError(t, err)
	filter := f.posts.lastFilter
	require.NotNil(t, filter)
	assert.Equal(t, "acme", filter.Search)
	assert.Nil(t, filter.Year)
	assert.Empty(t, filter.Category)
	assert.Equal(t, "COE", filter.Branch)
	require.NotNil(t, filter.MaxCGPA)
	assert.Equal(t, 8.5, *filter.MaxCGPA)

	_, err = f.svc.ListPosts(context.Background(), dto.PostListQuery{Year: "third"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestToggleSavedPost(t *testing.T) {
	f := newPostFixture(t)
	f.expectTx(true)
	post, err := f.svc.CreatePost(context.Background(), "t1", validCreateRequest())
	require.NoError(t, err)
	ctx := context.Background()

	saved, err := f.svc.ToggleSavedPost(ctx, "s1", post.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	views, err := f.svc.ListSavedPosts(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, views, 1)

	saved, err = f.svc.ToggleSavedPost(ctx, "s1", post.ID)
	require.NoError(t, err)
	assert.False(t, saved)

	f.posts.lastFilter = nil
	views, err = f.svc.ListSavedPosts(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Nil(t, f.posts.lastFilter)

	_, err = f.svc.ToggleSavedPost(ctx, "s1", "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCreatePostWithDefaultValidatorKnowsCatalogTags(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	db, mock := newTxProviderMock(t)
	posts := &memPostRepo{posts: map[string]*models.Post{}}
	sync := NewCalendarSyncService(db, &memCalendarRepo{}, posts, cat.Milestones, nil, nil, nil)
	svc := NewPostService(db, posts, &memSavedRepo{saved: map[string]bool{}}, sync, stubThreads{}, stubMembers{}, cat, nil, nil)

	req := validCreateRequest()
	req.Category = "Bake Sale"

	require.NotPanics(t, func() {
		_, err = svc.CreatePost(context.Background(), "t1", req)
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, posts.posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
