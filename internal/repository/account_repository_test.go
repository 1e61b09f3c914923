package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

func TestStudentFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "roll_no", "branch", "year", "cgpa", "phone", "linkedin", "skills", "profile_picture", "created_at", "updated_at"}).
		AddRow("s1", "Asha", "asha@thapar.edu", "hash", "102", "COE", 3, 8.7, "9876543210", "", "{go,sql}", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("asha@thapar.edu").
		WillReturnRows(rows)

	student, err := repo.FindByEmail(context.Background(), "asha@thapar.edu")
	require.NoError(t, err)
	assert.Equal(t, "COE", student.Branch)
	assert.Equal(t, []string{"go", "sql"}, []string(student.Skills))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students WHERE id = \\$1").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Student{ID: "gone"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentSavePostIsIdempotent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO saved_posts (student_id, post_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING")).
		WithArgs("s1", "p1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SavePost(context.Background(), "s1", "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamMemberCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamMemberRepository(db)

	mock.ExpectExec("INSERT INTO team_members").WillReturnResult(sqlmock.NewResult(1, 1))

	member := &models.TeamMember{Name: "Ravi", Email: "ravi@thapar.edu", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), member))
	assert.NotEmpty(t, member.ID)
	assert.False(t, member.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM team_members")).
		WithArgs("x@thapar.edu").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewTeamMemberRepository(db).EmailExists(context.Background(), "x@thapar.edu")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
