// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/bloglist/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository is the account store.
type UserRepository interface {
	// Create inserts a new user; a taken username yields errs.ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// List returns all users in registration order.
	List(ctx context.Context) ([]model.User, error)
	// AppendBlog appends blogID to the user's owned blog list.
	AppendBlog(ctx context.Context, userID, blogID uuid.UUID) error
	// RemoveBlog drops blogID from the user's owned blog list.
	RemoveBlog(ctx context.Context, userID, blogID uuid.UUID) error
}
