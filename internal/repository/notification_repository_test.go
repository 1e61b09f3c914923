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

func TestNotificationCreateStudentStartsUnread(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	member, post, query, reply := "t1", "p1", "q1", "r1"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_notifications")).
		WithArgs(sqlmock.AnyArg(), "s1", "reply", member, post, query, reply, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	n := &models.StudentNotification{
		RecipientID:         "s1",
		Kind:                models.NotificationReply,
		RelatedTeamMemberID: &member,
		RelatedPostID:       &post,
		RelatedQueryID:      &query,
		RelatedReplyID:      &reply,
		Read:                true,
	}
	require.NoError(t, repo.CreateStudent(context.Background(), n))
	assert.False(t, n.Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationListTeamKeepsDanglingRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE n.recipient_id = $1 ORDER BY n.created_at DESC")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "kind", "related_student_id", "related_post_id", "related_query_id", "read", "created_at", "student_name", "post_title", "query_text"}).
			AddRow("n1", "t1", "query", "s1", "gone", "q1", false, time.Now(), "Asha", nil, nil))

	items, err := repo.ListTeam(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].RelatedPostID)
	assert.Equal(t, "gone", *items[0].RelatedPostID)
	assert.Nil(t, items[0].PostTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkReadOtherRecipient(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2")).
		WithArgs("n1", "someone-else").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkStudentRead(context.Background(), "someone-else", "n1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
