package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/catalog"
	"github.com/noah-isme/placement-portal-api/pkg/dates"
)

var postBaseColumns = []string{"id", "author_id", "organization", "title", "category", "details", "registration_url", "branches", "years", "cgpa"}

// PostRepository persists posts. Each milestone kind maps to a
// <column>_date/_label/_color triple on the posts table.
type PostRepository struct {
	db         *sqlx.DB
	milestones []catalog.Milestone
}

// NewPostRepository constructs a post repository for the given milestone table.
func NewPostRepository(db *sqlx.DB, milestones []catalog.Milestone) *PostRepository {
	return &PostRepository{db: db, milestones: milestones}
}

func (r *PostRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *PostRepository) columns() []string {
	cols := append([]string(nil), postBaseColumns...)
	for _, m := range r.milestones {
		cols = append(cols, m.Column+"_date", m.Column+"_label", m.Column+"_color")
	}
	return append(cols, "created_at", "updated_at")
}

func (r *PostRepository) selectList(alias string) string {
	cols := r.columns()
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// FindByID returns a post. Absence yields sql.ErrNoRows.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p WHERE p.id = $1 LIMIT 1`, r.selectList("p"))
	rows, err := r.db.QueryxContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("find post by id: %w", err)
		}
		return nil, sql.ErrNoRows
	}
	sc := r.newScanner(false)
	if err := rows.Scan(sc.targets...); err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return sc.finish(), nil
}

// List returns posts matching the filter with their author, newest first.
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]models.PostView, error) {
	var (
		where []string
		args  []interface{}
	)
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		p := next("%" + escapeLike(s) + "%")
		where = append(where, fmt.Sprintf("(p.title ILIKE %[1]s OR p.details ILIKE %[1]s OR t.name ILIKE %[1]s)", p))
	}
	if filter.Year != nil {
		where = append(where, fmt.Sprintf("%s = ANY(p.years)", next(*filter.Year)))
	}
	if filter.Category != "" {
		where = append(where, "p.category = "+next(filter.Category))
	}
	if filter.Branch != "" {
		where = append(where, fmt.Sprintf("%s = ANY(p.branches)", next(filter.Branch)))
	}
	if filter.MaxCGPA != nil {
		where = append(where, "p.cgpa <= "+next(*filter.MaxCGPA))
	}
	if filter.AuthorID != "" {
		where = append(where, "p.author_id = "+next(filter.AuthorID))
	}
	if filter.IDs != nil {
		where = append(where, fmt.Sprintf("p.id = ANY(%s)", next(pq.Array(filter.IDs))))
	}

	query := fmt.Sprintf(`SELECT %s, t.id, t.name, t.profile_picture FROM posts p JOIN team_members t ON t.id = p.author_id`, r.selectList("p"))
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	views := make([]models.PostView, 0)
	for rows.Next() {
		sc := r.newScanner(true)
		if err := rows.Scan(sc.targets...); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		views = append(views, models.PostView{Post: sc.finish(), Author: sc.author})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return views, nil
}

// Create inserts a post.
func (r *PostRepository) Create(ctx context.Context, exec sqlx.ExtContext, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	cols := r.columns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO posts (%s) VALUES (%s)`, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := r.exec(exec).ExecContext(ctx, query, r.values(post)...); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update rewrites every column of the post. A missing row yields sql.ErrNoRows.
func (r *PostRepository) Update(ctx context.Context, exec sqlx.ExtContext, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()

	cols := r.columns()
	values := r.values(post)
	sets := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for i, c := range cols {
		if c == "id" || c == "author_id" || c == "created_at" {
			continue
		}
		args = append(args, values[i])
		sets = append(sets, fmt.Sprintf("%s = $%d", c, len(args)))
	}
	args = append(args, post.ID)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.exec(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a post. A missing row yields sql.ErrNoRows.
func (r *PostRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	res, err := r.exec(exec).ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return expectAffected(res)
}

// values lists column values in columns() order. Absent milestones are NULL dates.
func (r *PostRepository) values(post *models.Post) []interface{} {
	branches := post.Branches
	if branches == nil {
		branches = pq.StringArray{}
	}
	years := post.Years
	if years == nil {
		years = pq.Int64Array{}
	}
	vals := []interface{}{
		post.ID, post.AuthorID, post.Organization, post.Title, post.Category, post.Details,
		post.RegistrationURL, branches, years, post.CGPA,
	}
	for _, m := range r.milestones {
		ms, ok := post.Milestones[m.Kind]
		if !ok || ms.Date.IsZero() {
			vals = append(vals, nil, "", "")
			continue
		}
		vals = append(vals, dates.Format(ms.Date), ms.Label, ms.Color)
	}
	return append(vals, post.CreatedAt, post.UpdatedAt)
}

type milestoneSlot struct {
	date  sql.NullTime
	label string
	color string
}

// postScanner holds the scan destinations for one row.
type postScanner struct {
	milestones []catalog.Milestone
	post       *models.Post
	author     models.AuthorSummary
	slots      []milestoneSlot
	targets    []interface{}
}

func (r *PostRepository) newScanner(withAuthor bool) *postScanner {
	sc := &postScanner{
		milestones: r.milestones,
		post:       &models.Post{},
		slots:      make([]milestoneSlot, len(r.milestones)),
	}
	p := sc.post
	sc.targets = []interface{}{
		&p.ID, &p.AuthorID, &p.Organization, &p.Title, &p.Category, &p.Details,
		&p.RegistrationURL, &p.Branches, &p.Years, &p.CGPA,
	}
	for i := range sc.slots {
		sc.targets = append(sc.targets, &sc.slots[i].date, &sc.slots[i].label, &sc.slots[i].color)
	}
	sc.targets = append(sc.targets, &p.CreatedAt, &p.UpdatedAt)
	if withAuthor {
		sc.targets = append(sc.targets, &sc.author.ID, &sc.author.Name, &sc.author.ProfilePicture)
	}
	return sc
}

func (sc *postScanner) finish() *models.Post {
	sc.post.Milestones = make(map[string]models.Milestone, len(sc.milestones))
	for i, m := range sc.milestones {
		slot := sc.slots[i]
		if !slot.date.Valid {
			continue
		}
		sc.post.Milestones[m.Kind] = models.Milestone{
			Date:  dates.Day(slot.date.Time),
			Label: slot.label,
			Color: slot.color,
		}
	}
	return sc.post
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
