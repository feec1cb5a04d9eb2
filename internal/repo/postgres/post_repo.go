package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, authorUserID int64, kind enums.PostKind, body string, now time.Time) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, fmt.Errorf("postgres pool is nil")
	}
	if authorUserID <= 0 || !kind.Valid() || strings.TrimSpace(body) == "" {
		return model.Post{}, fmt.Errorf("invalid post payload")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec model.Post
	var kindRaw string
	err := r.pool.QueryRow(ctx, `
INSERT INTO posts (
	author_user_id,
	kind,
	body,
	created_at
) VALUES ($1, $2, $3, $4)
RETURNING id, author_user_id, kind, body, created_at
`, authorUserID, string(kind), body, now.UTC()).Scan(
		&rec.ID,
		&rec.AuthorUserID,
		&kindRaw,
		&rec.Body,
		&rec.CreatedAt,
	)
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}
	rec.Kind = enums.PostKind(kindRaw)

	return rec, nil
}

// ListAll returns the full post log in stable feed order: created_at
// ascending with id as the insertion-order tiebreaker.
func (r *PostRepo) ListAll(ctx context.Context) ([]model.Post, error) {
	return r.list(ctx, ``)
}

func (r *PostRepo) ListByAuthor(ctx context.Context, authorUserID int64) ([]model.Post, error) {
	if authorUserID <= 0 {
		return nil, fmt.Errorf("invalid author id")
	}
	return r.list(ctx, `WHERE author_user_id = $1`, authorUserID)
}

func (r *PostRepo) list(ctx context.Context, where string, args ...any) ([]model.Post, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, author_user_id, kind, body, created_at
FROM posts
`+where+`
ORDER BY created_at, id
`, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		var kindRaw string
		if err := rows.Scan(&p.ID, &p.AuthorUserID, &kindRaw, &p.Body, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		p.Kind = enums.PostKind(kindRaw)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post rows: %w", err)
	}

	return posts, nil
}
