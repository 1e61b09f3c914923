package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

// TeamMemberRepository provides database access for placement-team accounts.
type TeamMemberRepository struct {
	db *sqlx.DB
}

// NewTeamMemberRepository creates a new instance of TeamMemberRepository.
func NewTeamMemberRepository(db *sqlx.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

// FindByID returns a team member by identifier.
func (r *TeamMemberRepository) FindByID(ctx context.Context, id string) (*models.TeamMember, error) {
	const query = `SELECT id, name, email, password_hash, profile_picture, created_at, updated_at FROM team_members WHERE id = $1 LIMIT 1`
	var member models.TeamMember
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find team member by id: %w", err)
	}
	return &member, nil
}

// FindByEmail returns a team member by email address.
func (r *TeamMemberRepository) FindByEmail(ctx context.Context, email string) (*models.TeamMember, error) {
	const query = `SELECT id, name, email, password_hash, profile_picture, created_at, updated_at FROM team_members WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var member models.TeamMember
	if err := r.db.GetContext(ctx, &member, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find team member by email: %w", err)
	}
	return &member, nil
}

// EmailExists reports whether a team account uses email.
func (r *TeamMemberRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM team_members WHERE LOWER(email) = LOWER($1))`, email); err != nil {
		return false, fmt.Errorf("check team member email: %w", err)
	}
	return exists, nil
}

// Create inserts a team member account.
func (r *TeamMemberRepository) Create(ctx context.Context, member *models.TeamMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now
	const query = `INSERT INTO team_members (id, name, email, password_hash, profile_picture, created_at, updated_at)
VALUES (:id, :name, :email, :password_hash, :profile_picture, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("create team member: %w", err)
	}
	return nil
}
