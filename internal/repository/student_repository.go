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

const studentColumns = `id, name, email, password_hash, roll_no, branch, year, cgpa, phone, linkedin, skills, profile_picture, created_at, updated_at`

// StudentRepository provides database access for student accounts and their saved posts.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by identifier. Absence yields sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// FindByEmail returns a student by email address. Absence yields sql.ErrNoRows.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &student, nil
}

// EmailExists reports whether a student account uses email.
func (r *StudentRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM students WHERE LOWER(email) = LOWER($1))`, email); err != nil {
		return false, fmt.Errorf("check student email: %w", err)
	}
	return exists, nil
}

// Create inserts a student account.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	if student.Skills == nil {
		student.Skills = []string{}
	}
	const query = `INSERT INTO students (id, name, email, password_hash, roll_no, branch, year, cgpa, phone, linkedin, skills, profile_picture, created_at, updated_at)
VALUES (:id, :name, :email, :password_hash, :roll_no, :branch, :year, :cgpa, :phone, :linkedin, :skills, :profile_picture, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update writes every editable profile column.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	if student.Skills == nil {
		student.Skills = []string{}
	}
	const query = `UPDATE students SET name = :name, roll_no = :roll_no, branch = :branch, year = :year, cgpa = :cgpa, phone = :phone,
linkedin = :linkedin, skills = :skills, profile_picture = :profile_picture, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return expectAffected(res)
}

// IsPostSaved reports whether the student bookmarked the post.
func (r *StudentRepository) IsPostSaved(ctx context.Context, studentID, postID string) (bool, error) {
	var saved bool
	if err := r.db.GetContext(ctx, &saved, `SELECT EXISTS(SELECT 1 FROM saved_posts WHERE student_id = $1 AND post_id = $2)`, studentID, postID); err != nil {
		return false, fmt.Errorf("check saved post: %w", err)
	}
	return saved, nil
}

// SavePost bookmarks a post; saving twice is a no-op.
func (r *StudentRepository) SavePost(ctx context.Context, studentID, postID string) error {
	const query = `INSERT INTO saved_posts (student_id, post_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, studentID, postID, time.Now().UTC()); err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

// UnsavePost removes a bookmark.
func (r *StudentRepository) UnsavePost(ctx context.Context, studentID, postID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM saved_posts WHERE student_id = $1 AND post_id = $2`, studentID, postID); err != nil {
		return fmt.Errorf("unsave post: %w", err)
	}
	return nil
}

// ListSavedPostIDs returns the bookmarked post ids, most recent first.
func (r *StudentRepository) ListSavedPostIDs(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT post_id FROM saved_posts WHERE student_id = $1 ORDER BY created_at DESC`, studentID); err != nil {
		return nil, fmt.Errorf("list saved posts: %w", err)
	}
	return ids, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
