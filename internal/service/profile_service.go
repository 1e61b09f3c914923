package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/upload"
)

type studentProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
}

type imageUploader interface {
	Upload(ctx context.Context, source string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

// ProfileService reads and edits account profiles.
type ProfileService struct {
	students  studentProfileRepository
	members   teamMemberReader
	uploader  imageUploader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a profile service. A nil uploader disables picture uploads.
func NewProfileService(students studentProfileRepository, members teamMemberReader, uploader imageUploader, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = catalogValidator(nil)
	}
	return &ProfileService{students: students, members: members, uploader: uploader, validator: validate, logger: logger}
}

// GetStudentProfile returns the student's profile.
func (s *ProfileService) GetStudentProfile(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// GetTeamProfile returns the member's profile.
func (s *ProfileService) GetTeamProfile(ctx context.Context, memberID string) (*models.TeamMember, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "placement team member not found")
		}
		return nil, appErrors.Internal(err, "failed to load placement team member")
	}
	return member, nil
}

// CompleteProfile fills the academic details of a student account.
func (s *ProfileService) CompleteProfile(ctx context.Context, studentID string, req dto.CompleteProfileRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid profile payload")
	}
	student, err := s.GetStudentProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}

	student.RollNo = strings.TrimSpace(req.RollNo)
	student.Branch = req.Branch
	student.Year = req.Year
	student.CGPA = req.CGPA
	student.Phone = req.Phone
	student.LinkedIn = req.LinkedIn
	student.Skills = pq.StringArray(cleanSkills(req.Skills))

	if err := s.save(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// UpdateProfile applies the provided allow-listed fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, studentID string, req dto.UpdateProfileRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid profile payload")
	}
	student, err := s.GetStudentProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.RollNo != nil {
		student.RollNo = strings.TrimSpace(*req.RollNo)
	}
	if req.Branch != nil {
		student.Branch = *req.Branch
	}
	if req.Year != nil {
		student.Year = *req.Year
	}
	if req.CGPA != nil {
		student.CGPA = *req.CGPA
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.LinkedIn != nil {
		student.LinkedIn = *req.LinkedIn
	}
	if req.Skills != nil {
		student.Skills = pq.StringArray(cleanSkills(*req.Skills))
	}

	if err := s.save(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// UpdateProfilePicture uploads the image and stores its URL. The previous
// image is removed best-effort.
func (s *ProfileService) UpdateProfilePicture(ctx context.Context, studentID string, req dto.ProfilePictureRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid profile picture payload")
	}
	if s.uploader == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "profile picture uploads are disabled")
	}
	student, err := s.GetStudentProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, req.ProfilePicture)
	if err != nil {
		if errors.Is(err, upload.ErrDisabled) {
			return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "profile picture uploads are disabled")
		}
		return nil, appErrors.Internal(err, "failed to upload profile picture")
	}

	previous := student.ProfilePicture
	student.ProfilePicture = url
	if err := s.save(ctx, student); err != nil {
		return nil, err
	}

	if previous != "" && previous != url {
		if err := s.uploader.Delete(ctx, previous); err != nil {
			s.logger.Warn("failed to delete previous profile picture", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return student, nil
}

func (s *ProfileService) save(ctx context.Context, student *models.Student) error {
	if err := s.students.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Internal(err, "failed to update profile")
	}
	return nil
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, skill := range in {
		if v := strings.TrimSpace(skill); v != "" {
			out = append(out, v)
		}
	}
	return out
}
