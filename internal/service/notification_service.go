package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type notificationReader interface {
	ListTeam(ctx context.Context, recipientID string) ([]models.TeamNotificationView, error)
	ListStudent(ctx context.Context, recipientID string) ([]models.StudentNotificationView, error)
	MarkTeamRead(ctx context.Context, recipientID, id string) error
	MarkStudentRead(ctx context.Context, recipientID, id string) error
}

// NotificationService lists notifications and moves them from unread to read.
type NotificationService struct {
	repo   notificationReader
	logger *zap.Logger
}

// NewNotificationService constructs a notification service.
func NewNotificationService(repo notificationReader, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// ListStudentNotifications returns the student's notifications newest first.
func (s *NotificationService) ListStudentNotifications(ctx context.Context, studentID string) ([]models.StudentNotificationView, error) {
	items, err := s.repo.ListStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load notifications")
	}
	return items, nil
}

// ListTeamNotifications returns the member's notifications newest first.
func (s *NotificationService) ListTeamNotifications(ctx context.Context, memberID string) ([]models.TeamNotificationView, error) {
	items, err := s.repo.ListTeam(ctx, memberID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load notifications")
	}
	return items, nil
}

// MarkStudentNotificationRead marks one of the student's notifications as read.
func (s *NotificationService) MarkStudentNotificationRead(ctx context.Context, studentID, id string) error {
	return markRead(s.repo.MarkStudentRead(ctx, studentID, id))
}

// MarkTeamNotificationRead marks one of the member's notifications as read.
func (s *NotificationService) MarkTeamNotificationRead(ctx context.Context, memberID, id string) error {
	return markRead(s.repo.MarkTeamRead(ctx, memberID, id))
}

func markRead(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return appErrors.Internal(err, "failed to update notification")
}
