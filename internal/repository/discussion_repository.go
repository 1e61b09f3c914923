package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

// DiscussionRepository persists queries on posts and their replies.
type DiscussionRepository struct {
	db *sqlx.DB
}

// NewDiscussionRepository constructs a discussion repository.
func NewDiscussionRepository(db *sqlx.DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

// CreateQuery inserts a query. Ordering on the post follows created_at.
func (r *DiscussionRepository) CreateQuery(ctx context.Context, query *models.Query) error {
	if query.ID == "" {
		query.ID = uuid.NewString()
	}
	query.CreatedAt = time.Now().UTC()
	const stmt = `INSERT INTO queries (id, post_id, student_id, text, created_at) VALUES (:id, :post_id, :student_id, :text, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, stmt, query); err != nil {
		return fmt.Errorf("create query: %w", err)
	}
	return nil
}

// FindQueryByID returns a query. Absence yields sql.ErrNoRows.
func (r *DiscussionRepository) FindQueryByID(ctx context.Context, id string) (*models.Query, error) {
	var query models.Query
	if err := r.db.GetContext(ctx, &query, `SELECT id, post_id, student_id, text, created_at FROM queries WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find query by id: %w", err)
	}
	return &query, nil
}

// CreateReply inserts a reply.
func (r *DiscussionRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	reply.CreatedAt = time.Now().UTC()
	const stmt = `INSERT INTO replies (id, query_id, post_id, team_member_id, text, created_at)
VALUES (:id, :query_id, :post_id, :team_member_id, :text, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, stmt, reply); err != nil {
		return fmt.Errorf("create reply: %w", err)
	}
	return nil
}

type queryRow struct {
	models.Query
	AuthorName    string `db:"author_name"`
	AuthorPicture string `db:"author_picture"`
}

type replyRow struct {
	models.Reply
	AuthorName    string `db:"author_name"`
	AuthorPicture string `db:"author_picture"`
}

// ListThreads returns the post's queries oldest first, each with its replies in order.
func (r *DiscussionRepository) ListThreads(ctx context.Context, postID string) ([]models.QueryThread, error) {
	const queriesSQL = `SELECT q.id, q.post_id, q.student_id, q.text, q.created_at, s.name AS author_name, s.profile_picture AS author_picture
FROM queries q JOIN students s ON s.id = q.student_id WHERE q.post_id = $1 ORDER BY q.created_at ASC`
	var queries []queryRow
	if err := r.db.SelectContext(ctx, &queries, queriesSQL, postID); err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}

	threads := make([]models.QueryThread, 0, len(queries))
	if len(queries) == 0 {
		return threads, nil
	}

	ids := make([]string, len(queries))
	index := make(map[string]int, len(queries))
	for i, q := range queries {
		ids[i] = q.ID
		index[q.ID] = i
		threads = append(threads, models.QueryThread{
			Query:   q.Query,
			Author:  models.AuthorSummary{ID: q.StudentID, Name: q.AuthorName, ProfilePicture: q.AuthorPicture},
			Replies: []models.ReplyView{},
		})
	}

	const repliesSQL = `SELECT r.id, r.query_id, r.post_id, r.team_member_id, r.text, r.created_at, t.name AS author_name, t.profile_picture AS author_picture
FROM replies r JOIN team_members t ON t.id = r.team_member_id WHERE r.query_id = ANY($1) ORDER BY r.created_at ASC`
	var replies []replyRow
	if err := r.db.SelectContext(ctx, &replies, repliesSQL, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	for _, rep := range replies {
		i, ok := index[rep.QueryID]
		if !ok {
			continue
		}
		threads[i].Replies = append(threads[i].Replies, models.ReplyView{
			Reply:  rep.Reply,
			Author: models.AuthorSummary{ID: rep.TeamMemberID, Name: rep.AuthorName, ProfilePicture: rep.AuthorPicture},
		})
	}
	return threads, nil
}
