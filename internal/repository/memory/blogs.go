package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/bloglist/internal/errs"
	"github.com/and161185/bloglist/internal/model"
)

// Blogs implements repository.BlogRepository.
type Blogs struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]*model.Blog
	now   func() time.Time
}

// NewBlogs returns an empty blog store.
func NewBlogs() *Blogs {
	return &Blogs{byID: make(map[uuid.UUID]*model.Blog), now: time.Now}
}

func (s *Blogs) Create(_ context.Context, b *model.Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byID[b.ID]; taken {
		return fmt.Errorf("blog %s: %w", b.ID, errs.ErrAlreadyExists)
	}
	if b.Likes < 0 {
		return fmt.Errorf("likes %d: %w", b.Likes, errs.ErrValidation)
	}
	b.CreatedAt = s.now()
	s.byID[b.ID] = cloneBlog(b)
	s.order = append(s.order, b.ID)
	return nil
}

func (s *Blogs) GetByID(_ context.Context, id uuid.UUID) (*model.Blog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneBlog(b), nil
}

func (s *Blogs) List(_ context.Context) ([]model.Blog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Blog, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *cloneBlog(s.byID[id]))
	}
	return out, nil
}

func (s *Blogs) UpdateLikes(_ context.Context, id uuid.UUID, likes int64) (*model.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if likes < 0 {
		return nil, fmt.Errorf("likes %d: %w", likes, errs.ErrValidation)
	}
	b.Likes = likes
	return cloneBlog(b), nil
}

func (s *Blogs) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(x uuid.UUID) bool { return x == id })
	return nil
}

func cloneBlog(b *model.Blog) *model.Blog {
	c := *b
	if b.OwnerID != nil {
		owner := *b.OwnerID
		c.OwnerID = &owner
	}
	return &c
}
