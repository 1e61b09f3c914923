package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type discussionRepository interface {
	CreateQuery(ctx context.Context, query *models.Query) error
	FindQueryByID(ctx context.Context, id string) (*models.Query, error)
	CreateReply(ctx context.Context, reply *models.Reply) error
	ListThreads(ctx context.Context, postID string) ([]models.QueryThread, error)
}

type notificationWriter interface {
	CreateTeam(ctx context.Context, n *models.TeamNotification) error
	CreateStudent(ctx context.Context, n *models.StudentNotification) error
}

// DiscussionService handles queries on posts and replies to them. Each
// action notifies the other party; notification failures never fail the action.
type DiscussionService struct {
	posts         postReader
	discussions   discussionRepository
	notifications notificationWriter
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewDiscussionService constructs a discussion service.
func NewDiscussionService(posts postReader, discussions discussionRepository, notifications notificationWriter, metrics *MetricsService, logger *zap.Logger) *DiscussionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscussionService{
		posts:         posts,
		discussions:   discussions,
		notifications: notifications,
		metrics:       metrics,
		logger:        logger,
	}
}

// AskQuery records a student's question on a post and notifies the post author.
func (s *DiscussionService) AskQuery(ctx context.Context, studentID, postID, text string) (*models.Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "query text is required")
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to load post")
	}

	query := &models.Query{PostID: post.ID, StudentID: studentID, Text: text}
	if err := s.discussions.CreateQuery(ctx, query); err != nil {
		return nil, appErrors.Internal(err, "failed to save query")
	}

	err = s.notifications.CreateTeam(ctx, &models.TeamNotification{
		RecipientID:      post.AuthorID,
		Kind:             models.NotificationQuery,
		RelatedStudentID: &studentID,
		RelatedPostID:    &post.ID,
		RelatedQueryID:   &query.ID,
	})
	s.metrics.RecordNotification(models.NotificationQuery, err)
	if err != nil {
		s.logger.Warn("failed to notify post author",
			zap.String("post_id", post.ID), zap.String("query_id", query.ID), zap.Error(err))
	}

	return query, nil
}

// ReplyToQuery records a team member's answer and notifies the query author.
func (s *DiscussionService) ReplyToQuery(ctx context.Context, teamMemberID, queryID, text string) (*models.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reply text is required")
	}

	query, err := s.discussions.FindQueryByID(ctx, queryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "query not found")
		}
		return nil, appErrors.Internal(err, "failed to load query")
	}
	if _, err := s.posts.FindByID(ctx, query.PostID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to load post")
	}

	reply := &models.Reply{QueryID: query.ID, PostID: query.PostID, TeamMemberID: teamMemberID, Text: text}
	if err := s.discussions.CreateReply(ctx, reply); err != nil {
		return nil, appErrors.Internal(err, "failed to save reply")
	}

	err = s.notifications.CreateStudent(ctx, &models.StudentNotification{
		RecipientID:         query.StudentID,
		Kind:                models.NotificationReply,
		RelatedTeamMemberID: &teamMemberID,
		RelatedPostID:       &reply.PostID,
		RelatedQueryID:      &query.ID,
		RelatedReplyID:      &reply.ID,
	})
	s.metrics.RecordNotification(models.NotificationReply, err)
	if err != nil {
		s.logger.Warn("failed to notify query author",
			zap.String("query_id", query.ID), zap.String("reply_id", reply.ID), zap.Error(err))
	}

	return reply, nil
}

// Threads returns the post's queries with replies, oldest first.
func (s *DiscussionService) Threads(ctx context.Context, postID string) ([]models.QueryThread, error) {
	threads, err := s.discussions.ListThreads(ctx, postID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load queries")
	}
	return threads, nil
}
