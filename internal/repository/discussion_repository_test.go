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

func TestDiscussionCreateReplyCarriesPost(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDiscussionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO replies")).
		WithArgs(sqlmock.AnyArg(), "q1", "p1", "t1", "Yes, remote.", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	reply := &models.Reply{QueryID: "q1", PostID: "p1", TeamMemberID: "t1", Text: "Yes, remote."}
	require.NoError(t, repo.CreateReply(context.Background(), reply))
	assert.NotEmpty(t, reply.ID)
	assert.False(t, reply.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscussionFindQueryMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDiscussionRepository(db)

	mock.ExpectQuery("FROM queries WHERE id = \\$1").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindQueryByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDiscussionListThreadsGroupsReplies(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDiscussionRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM queries q JOIN students s ON s.id = q.student_id WHERE q.post_id = $1 ORDER BY q.created_at ASC")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "student_id", "text", "created_at", "author_name", "author_picture"}).
			AddRow("q1", "p1", "s1", "Stipend?", now, "Asha", "").
			AddRow("q2", "p1", "s2", "Remote?", now.Add(time.Minute), "Kabir", ""))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.query_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "query_id", "post_id", "team_member_id", "text", "created_at", "author_name", "author_picture"}).
			AddRow("r1", "q2", "p1", "t1", "Hybrid.", now, "Ravi", "pic"))

	threads, err := repo.ListThreads(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, "Asha", threads[0].Author.Name)
	assert.Empty(t, threads[0].Replies)
	require.Len(t, threads[1].Replies, 1)
	assert.Equal(t, "Ravi", threads[1].Replies[0].Author.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscussionListThreadsEmptySkipsReplies(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDiscussionRepository(db)

	mock.ExpectQuery("FROM queries q").WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "student_id", "text", "created_at", "author_name", "author_picture"}))

	threads, err := repo.ListThreads(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)
	assert.NoError(t, mock.ExpectationsWereMet())
}
