package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/bloglist/internal/errs"
	"github.com/and161185/bloglist/internal/model"
	"github.com/and161185/bloglist/internal/repository"
	"github.com/and161185/bloglist/internal/stats"
)

// BlogService defines the blog mutation pipeline and read paths.
type BlogService interface {
	// Create validates a draft and persists it, stamping ownership when the identity has an account.
	Create(ctx context.Context, who *model.Identity, draft model.BlogDraft) (model.Blog, error)
	// Delete removes a blog owned by who.
	Delete(ctx context.Context, who model.Identity, id uuid.UUID) error
	// UpdateLikes overwrites the like count; it is not ownership-checked.
	UpdateLikes(ctx context.Context, id uuid.UUID, likes *int64) (model.Blog, error)
	// List returns every blog joined with its owner projection.
	List(ctx context.Context) ([]model.BlogWithOwner, error)
	// Stats aggregates over the current blog collection.
	Stats(ctx context.Context) (model.Summary, error)
}

type BlogServiceImpl struct {
	blogs repository.BlogRepository
	users repository.UserRepository
	log   *zap.Logger
}

// NewBlogService constructs BlogService. A nil logger discards output.
func NewBlogService(blogs repository.BlogRepository, users repository.UserRepository, log *zap.Logger) *BlogServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &BlogServiceImpl{blogs: blogs, users: users, log: log}
}

// Create runs validation, defaulting, then the two non-transactional writes:
// blog insert and owner list append. If the append fails the blog stays
// persisted without appearing in the owner's list.
func (s *BlogServiceImpl) Create(ctx context.Context, who *model.Identity, d model.BlogDraft) (model.Blog, error) {
	if err := validateDraft(d); err != nil {
		return model.Blog{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.Blog{}, err
	}
	b := model.Blog{ID: id, Title: *d.Title, URL: *d.URL}
	if d.Author != nil {
		b.Author = *d.Author
	}
	if d.Likes != nil {
		b.Likes = *d.Likes
	}

	var owner *model.User
	if who != nil && who.User != nil {
		owner = who.User
		ownerID := owner.ID
		b.OwnerID = &ownerID
	}

	if err := s.blogs.Create(ctx, &b); err != nil {
		return model.Blog{}, fmt.Errorf("create blog: %w", err)
	}
	if owner == nil {
		return b, nil
	}
	if err := s.users.AppendBlog(ctx, owner.ID, b.ID); err != nil {
		return model.Blog{}, fmt.Errorf("link blog %s to %s: %w", b.ID, owner.Username, err)
	}
	return b, nil
}

func validateDraft(d model.BlogDraft) error {
	switch {
	case d.Title == nil:
		return errs.NewFieldError("title", "Path `title` is required.")
	case d.URL == nil:
		return errs.NewFieldError("url", "Path `url` is required.")
	case d.Likes != nil && *d.Likes < 0:
		return errs.NewFieldError("likes", "must not be negative")
	}
	return nil
}

// Delete checks existence, then ownership, then removes the blog and drops
// its id from the owner's list. The list cleanup is best-effort.
func (s *BlogServiceImpl) Delete(ctx context.Context, who model.Identity, id uuid.UUID) error {
	b, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("blog %s: %w", id, err)
	}
	if b.OwnerID == nil || *b.OwnerID != who.UserID {
		return errs.ErrForbidden
	}
	if err := s.blogs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete blog %s: %w", id, err)
	}

	if err := s.users.RemoveBlog(ctx, who.UserID, id); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.log.Warn("owner list cleanup failed",
			zap.String("blog_id", id.String()),
			zap.String("user_id", who.UserID.String()),
			zap.Error(err))
	}
	return nil
}

// UpdateLikes requires likes to be present and non-negative.
func (s *BlogServiceImpl) UpdateLikes(ctx context.Context, id uuid.UUID, likes *int64) (model.Blog, error) {
	if likes == nil {
		return model.Blog{}, errs.NewFieldError("likes", "Path `likes` is required.")
	}
	if *likes < 0 {
		return model.Blog{}, errs.NewFieldError("likes", "must not be negative")
	}
	b, err := s.blogs.UpdateLikes(ctx, id, *likes)
	if err != nil {
		return model.Blog{}, fmt.Errorf("blog %s: %w", id, err)
	}
	return *b, nil
}

// List projects each blog's owner down to {id, username, name}. An owner id
// that no longer resolves leaves Owner nil.
func (s *BlogServiceImpl) List(ctx context.Context) ([]model.BlogWithOwner, error) {
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	owners := make(map[uuid.UUID]*model.Owner, len(users))
	for _, u := range users {
		owners[u.ID] = &model.Owner{ID: u.ID, Username: u.Username, Name: u.Name}
	}

	out := make([]model.BlogWithOwner, 0, len(blogs))
	for _, b := range blogs {
		bw := model.BlogWithOwner{Blog: b}
		if b.OwnerID != nil {
			bw.Owner = owners[*b.OwnerID]
		}
		out = append(out, bw)
	}
	return out, nil
}

func (s *BlogServiceImpl) Stats(ctx context.Context) (model.Summary, error) {
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		return model.Summary{}, fmt.Errorf("list blogs: %w", err)
	}
	return stats.Summarize(blogs), nil
}
