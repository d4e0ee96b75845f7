package repository

import (
	"context"

	"github.com/and161185/bloglist/internal/model"
	"github.com/gofrs/uuid/v5"
)

// BlogRepository is the blog store.
type BlogRepository interface {
	// Create inserts a new blog; the caller assigns the ID.
	Create(ctx context.Context, b *model.Blog) error
	// GetByID returns a single blog by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Blog, error)
	// List returns all blogs in creation order.
	List(ctx context.Context) ([]model.Blog, error)
	// UpdateLikes overwrites the like count and returns the updated record.
	UpdateLikes(ctx context.Context, id uuid.UUID, likes int64) (*model.Blog, error)
	// Delete removes a blog.
	Delete(ctx context.Context, id uuid.UUID) error
}
