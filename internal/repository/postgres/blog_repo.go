package postgres

import (
	"context"
	"errors"

	"github.com/and161185/bloglist/internal/errs"
	"github.com/and161185/bloglist/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// BlogRepo implements BlogRepository using PostgreSQL.
type BlogRepo struct{ db *DB }

// NewBlogRepo constructs a blog repository.
func NewBlogRepo(db *DB) *BlogRepo { return &BlogRepo{db: db} }

const blogColumns = `id, title, author, url, likes, user_id, created_at`

// Create inserts a blog row; created_at is filled from the database.
func (r *BlogRepo) Create(ctx context.Context, b *model.Blog) error {
	const q = `
INSERT INTO blogs (id, title, author, url, likes, user_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`
	return r.db.Pool.QueryRow(ctx, q, b.ID, b.Title, b.Author, b.URL, b.Likes, b.OwnerID).Scan(&b.CreatedAt)
}

// GetByID selects a blog by ID.
func (r *BlogRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Blog, error) {
	const q = `SELECT ` + blogColumns + ` FROM blogs WHERE id=$1`
	return scanBlog(r.db.Pool.QueryRow(ctx, q, id))
}

// List returns all blogs ordered by creation time.
func (r *BlogRepo) List(ctx context.Context) ([]model.Blog, error) {
	const q = `SELECT ` + blogColumns + ` FROM blogs ORDER BY created_at, id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Blog{}
	for rows.Next() {
		var b model.Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &b.OwnerID, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateLikes sets likes and returns the updated row.
func (r *BlogRepo) UpdateLikes(ctx context.Context, id uuid.UUID, likes int64) (*model.Blog, error) {
	const q = `
UPDATE blogs SET likes=$2
WHERE id=$1
RETURNING ` + blogColumns
	return scanBlog(r.db.Pool.QueryRow(ctx, q, id, likes))
}

// Delete removes a blog row.
func (r *BlogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM blogs WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanBlog(row pgx.Row) (*model.Blog, error) {
	var b model.Blog
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &b.OwnerID, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
