package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/catalog"
	"github.com/noah-isme/placement-portal-api/pkg/dates"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type postRepository interface {
	FindByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]models.PostView, error)
	Create(ctx context.Context, exec sqlx.ExtContext, post *models.Post) error
	Update(ctx context.Context, exec sqlx.ExtContext, post *models.Post) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type savedPostRepository interface {
	IsPostSaved(ctx context.Context, studentID, postID string) (bool, error)
	SavePost(ctx context.Context, studentID, postID string) error
	UnsavePost(ctx context.Context, studentID, postID string) error
	ListSavedPostIDs(ctx context.Context, studentID string) ([]string, error)
}

type postCalendar interface {
	ResyncPostWith(ctx context.Context, exec sqlx.ExtContext, post *models.Post) error
	PurgeEventsWith(ctx context.Context, exec sqlx.ExtContext, postID string) error
	InvalidateTeamCalendar(ctx context.Context)
}

type threadReader interface {
	Threads(ctx context.Context, postID string) ([]models.QueryThread, error)
}

type teamMemberReader interface {
	FindByID(ctx context.Context, id string) (*models.TeamMember, error)
}

// filterAll is the dropdown value meaning "no filter".
const filterAll = "All"

// PostService manages posts and keeps their calendar projection in step.
type PostService struct {
	db        txProvider
	posts     postRepository
	saved     savedPostRepository
	calendar  postCalendar
	threads   threadReader
	members   teamMemberReader
	catalog   *catalog.Catalog
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPostService constructs a post service.
func NewPostService(db txProvider, posts postRepository, saved savedPostRepository, calendar postCalendar, threads threadReader, members teamMemberReader, cat *catalog.Catalog, validate *validator.Validate, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = catalogValidator(cat)
	}
	return &PostService{
		db:        db,
		posts:     posts,
		saved:     saved,
		calendar:  calendar,
		threads:   threads,
		members:   members,
		catalog:   cat,
		validator: validate,
		logger:    logger,
	}
}

// CreatePost stores a post and materializes its team calendar events in one transaction.
func (s *PostService) CreatePost(ctx context.Context, authorID string, req dto.CreatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid post payload")
	}
	milestones, err := s.parseMilestones(req.MilestoneInputs)
	if err != nil {
		return nil, err
	}

	years := make(pq.Int64Array, 0, len(req.Years))
	for _, y := range req.Years {
		years = append(years, int64(y))
	}
	post := &models.Post{
		AuthorID:        authorID,
		Organization:    strings.TrimSpace(req.Organization),
		Title:           strings.TrimSpace(req.Title),
		Category:        req.Category,
		Details:         req.Details,
		RegistrationURL: req.RegistrationLink,
		Branches:        pq.StringArray(req.Branches),
		Years:           years,
		CGPA:            *req.CGPA,
		Milestones:      milestones,
	}

	if err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.posts.Create(ctx, tx, post); err != nil {
			return appErrors.Internal(err, "failed to create post")
		}
		return s.calendar.ResyncPostWith(ctx, tx, post)
	}); err != nil {
		return nil, err
	}
	s.calendar.InvalidateTeamCalendar(ctx)

	s.logger.Info("post created", zap.String("post_id", post.ID), zap.String("author_id", authorID), zap.Int("milestones", len(milestones)))
	return post, nil
}

// EditPost applies the provided fields and re-materializes the post's events.
// Student calendar entries for the post are dropped as part of the resync.
func (s *PostService) EditPost(ctx context.Context, postID string, req dto.UpdatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid post payload")
	}
	milestones, err := s.parseMilestones(req.MilestoneInputs)
	if err != nil {
		return nil, err
	}

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	applyPostUpdate(post, req, milestones)

	if err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.posts.Update(ctx, tx, post); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "post not found")
			}
			return appErrors.Internal(err, "failed to update post")
		}
		return s.calendar.ResyncPostWith(ctx, tx, post)
	}); err != nil {
		return nil, err
	}
	s.calendar.InvalidateTeamCalendar(ctx)
	return post, nil
}

func applyPostUpdate(post *models.Post, req dto.UpdatePostRequest, milestones map[string]models.Milestone) {
	if v := strings.TrimSpace(req.Organization); v != "" {
		post.Organization = v
	}
	if v := strings.TrimSpace(req.Title); v != "" {
		post.Title = v
	}
	if req.Category != "" {
		post.Category = req.Category
	}
	if req.Details != "" {
		post.Details = req.Details
	}
	if req.RegistrationLink != "" {
		post.RegistrationURL = req.RegistrationLink
	}
	if len(req.Branches) > 0 {
		post.Branches = pq.StringArray(req.Branches)
	}
	if len(req.Years) > 0 {
		years := make(pq.Int64Array, 0, len(req.Years))
		for _, y := range req.Years {
			years = append(years, int64(y))
		}
		post.Years = years
	}
	if req.CGPA != nil {
		post.CGPA = *req.CGPA
	}
	if post.Milestones == nil {
		post.Milestones = make(map[string]models.Milestone, len(milestones))
	}
	for kind, ms := range milestones {
		post.Milestones[kind] = ms
	}
}

// DeletePost removes the post and purges its calendar events. Notifications
// that reference it are kept.
func (s *PostService) DeletePost(ctx context.Context, postID string) error {
	if err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.posts.Delete(ctx, tx, postID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "post not found")
			}
			return appErrors.Internal(err, "failed to delete post")
		}
		return s.calendar.PurgeEventsWith(ctx, tx, postID)
	}); err != nil {
		return err
	}
	s.calendar.InvalidateTeamCalendar(ctx)
	s.logger.Info("post deleted", zap.String("post_id", postID))
	return nil
}

// GetPost returns a post with its author and discussion.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.PostView, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	view := &models.PostView{Post: post}

	author, err := s.members.FindByID(ctx, post.AuthorID)
	switch {
	case err == nil:
		view.Author = models.AuthorSummary{ID: author.ID, Name: author.Name, ProfilePicture: author.ProfilePicture}
	case errors.Is(err, sql.ErrNoRows):
		view.Author = models.AuthorSummary{ID: post.AuthorID}
	default:
		return nil, appErrors.Internal(err, "failed to load post author")
	}

	view.Queries, err = s.threads.Threads(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListPosts returns posts matching the query, newest first.
func (s *PostService) ListPosts(ctx context.Context, query dto.PostListQuery) ([]models.PostView, error) {
	filter, err := parsePostFilter(query)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// ListByAuthor returns the member's own posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]models.PostView, error) {
	return s.list(ctx, models.PostFilter{AuthorID: authorID})
}

// ToggleSavedPost saves the post for the student, or unsaves it when already saved.
func (s *PostService) ToggleSavedPost(ctx context.Context, studentID, postID string) (bool, error) {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return false, err
	}
	saved, err := s.saved.IsPostSaved(ctx, studentID, postID)
	if err != nil {
		return false, appErrors.Internal(err, "failed to check saved posts")
	}
	if saved {
		if err := s.saved.UnsavePost(ctx, studentID, postID); err != nil {
			return false, appErrors.Internal(err, "failed to unsave post")
		}
		return false, nil
	}
	if err := s.saved.SavePost(ctx, studentID, postID); err != nil {
		return false, appErrors.Internal(err, "failed to save post")
	}
	return true, nil
}

// ListSavedPosts returns the student's saved posts, newest first.
func (s *PostService) ListSavedPosts(ctx context.Context, studentID string) ([]models.PostView, error) {
	ids, err := s.saved.ListSavedPostIDs(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load saved posts")
	}
	if len(ids) == 0 {
		return []models.PostView{}, nil
	}
	return s.list(ctx, models.PostFilter{IDs: ids})
}

func (s *PostService) list(ctx context.Context, filter models.PostFilter) ([]models.PostView, error) {
	views, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list posts")
	}
	return views, nil
}

func (s *PostService) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to load post")
	}
	return post, nil
}

// parseMilestones normalizes provided milestone dates and fills in the
// catalog's default label and color.
func (s *PostService) parseMilestones(in dto.MilestoneInputs) (map[string]models.Milestone, error) {
	out := make(map[string]models.Milestone)
	for kind, input := range in.ByKind() {
		day, err := dates.Normalize(input.Date)
		if err != nil {
			return nil, appErrors.Validation(err, fmt.Sprintf("invalid %s", kind))
		}
		ms := models.Milestone{Date: day, Label: input.Label, Color: input.Color}
		if def, ok := s.catalog.Milestone(kind); ok {
			if ms.Label == "" {
				ms.Label = def.Label
			}
			if ms.Color == "" {
				ms.Color = def.Color
			}
		}
		out[kind] = ms
	}
	return out, nil
}

func parsePostFilter(q dto.PostListQuery) (models.PostFilter, error) {
	filter := models.PostFilter{Search: strings.TrimSpace(q.SearchText)}
	if v := filterValue(q.EventType); v != "" {
		filter.Category = v
	}
	if v := filterValue(q.Branch); v != "" {
		filter.Branch = v
	}
	if v := filterValue(q.Year); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return filter, appErrors.Validation(err, "year must be a number")
		}
		filter.Year = &year
	}
	if v := filterValue(q.CGPA); v != "" {
		cgpa, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, appErrors.Validation(err, "cgpa must be a number")
		}
		filter.MaxCGPA = &cgpa
	}
	return filter, nil
}

func filterValue(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, filterAll) {
		return ""
	}
	return v
}
