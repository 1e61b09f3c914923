package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type studentAccountRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

type teamAccountRepository interface {
	FindByID(ctx context.Context, id string) (*models.TeamMember, error)
	FindByEmail(ctx context.Context, email string) (*models.TeamMember, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, member *models.TeamMember) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret             string
	Expiry             time.Duration
	Issuer             string
	AllowedEmailDomain string
}

// AuthService provides signup and login for students and placement-team members.
type AuthService struct {
	students  studentAccountRepository
	team      teamAccountRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students studentAccountRepository, team teamAccountRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = catalogValidator(nil)
	}
	return &AuthService{students: students, team: team, validator: validate, logger: logger, config: config}
}

// SignupStudent creates a student account and signs the student in.
func (s *AuthService) SignupStudent(ctx context.Context, req dto.SignupRequest) (*models.AuthResult, error) {
	email, hash, err := s.prepareSignup(ctx, req)
	if err != nil {
		return nil, err
	}
	student := &models.Student{Name: strings.TrimSpace(req.Name), Email: email, PasswordHash: hash}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, signupError(err)
	}
	s.logger.Info("student signed up", zap.String("user_id", student.ID))
	return s.issue(models.UserInfo{ID: student.ID, Name: student.Name, Email: student.Email, Role: models.RoleStudent})
}

// SignupTeam creates a placement-team account and signs the member in.
func (s *AuthService) SignupTeam(ctx context.Context, req dto.SignupRequest) (*models.AuthResult, error) {
	email, hash, err := s.prepareSignup(ctx, req)
	if err != nil {
		return nil, err
	}
	member := &models.TeamMember{Name: strings.TrimSpace(req.Name), Email: email, PasswordHash: hash}
	if err := s.team.Create(ctx, member); err != nil {
		return nil, signupError(err)
	}
	s.logger.Info("placement team member signed up", zap.String("user_id", member.ID))
	return s.issue(models.UserInfo{ID: member.ID, Name: member.Name, Email: member.Email, Role: models.RoleTeam})
}

// prepareSignup validates the payload, enforces the institutional domain and
// cross-role email uniqueness, and hashes the password.
func (s *AuthService) prepareSignup(ctx context.Context, req dto.SignupRequest) (string, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", "", appErrors.Validation(err, "invalid signup payload")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if domain := strings.ToLower(s.config.AllowedEmailDomain); domain != "" && !strings.HasSuffix(email, domain) {
		return "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("email must end with %s", s.config.AllowedEmailDomain))
	}

	for _, exists := range []func(context.Context, string) (bool, error){s.students.EmailExists, s.team.EmailExists} {
		taken, err := exists(ctx, email)
		if err != nil {
			return "", "", appErrors.Internal(err, "failed to check email")
		}
		if taken {
			return "", "", appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", appErrors.Internal(err, "failed to hash password")
	}
	return email, string(hash), nil
}

func signupError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	return appErrors.Internal(err, "failed to create account")
}

// LoginStudent authenticates a student.
func (s *AuthService) LoginStudent(ctx context.Context, req dto.LoginRequest) (*models.AuthResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}
	student, err := s.students.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, loginLookupError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	return s.issue(models.UserInfo{ID: student.ID, Name: student.Name, Email: student.Email, Role: models.RoleStudent, ProfilePicture: student.ProfilePicture})
}

// LoginTeam authenticates a placement-team member.
func (s *AuthService) LoginTeam(ctx context.Context, req dto.LoginRequest) (*models.AuthResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}
	member, err := s.team.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, loginLookupError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	return s.issue(models.UserInfo{ID: member.ID, Name: member.Name, Email: member.Email, Role: models.RoleTeam, ProfilePicture: member.ProfilePicture})
}

func loginLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	return appErrors.Internal(err, "failed to fetch account")
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Authenticate validates the token and confirms that its account still exists.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	switch claims.Role {
	case models.RoleStudent:
		_, err = s.students.FindByID(ctx, claims.UserID)
	case models.RoleTeam:
		_, err = s.team.FindByID(ctx, claims.UserID)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user not found")
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return claims, nil
}

func (s *AuthService) issue(user models.UserInfo) (*models.AuthResult, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiry)
	claims := &models.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create token")
	}
	return &models.AuthResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}
