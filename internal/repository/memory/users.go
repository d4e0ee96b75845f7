// Package memory contains in-process implementations of the repository
// interfaces. State lives for the lifetime of the process.
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

// Users implements repository.UserRepository.
type Users struct {
	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]*model.User
	names map[string]uuid.UUID
	now   func() time.Time
}

// NewUsers returns an empty account store.
func NewUsers() *Users {
	return &Users{
		byID:  make(map[uuid.UUID]*model.User),
		names: make(map[string]uuid.UUID),
		now:   time.Now,
	}
}

func (s *Users) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.names[u.Username]; taken {
		return fmt.Errorf("username %q: %w", u.Username, errs.ErrAlreadyExists)
	}
	if _, taken := s.byID[u.ID]; taken {
		return fmt.Errorf("user %s: %w", u.ID, errs.ErrAlreadyExists)
	}
	u.CreatedAt = s.now()
	stored := cloneUser(u)
	s.byID[u.ID] = stored
	s.names[u.Username] = u.ID
	s.order = append(s.order, u.ID)
	return nil
}

func (s *Users) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.names[username]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *Users) List(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *cloneUser(s.byID[id]))
	}
	return out, nil
}

func (s *Users) AppendBlog(_ context.Context, userID, blogID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return errs.ErrNotFound
	}
	u.BlogIDs = append(u.BlogIDs, blogID)
	return nil
}

func (s *Users) RemoveBlog(_ context.Context, userID, blogID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return errs.ErrNotFound
	}
	u.BlogIDs = slices.DeleteFunc(u.BlogIDs, func(id uuid.UUID) bool { return id == blogID })
	return nil
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.BlogIDs = append([]uuid.UUID{}, u.BlogIDs...)
	return &c
}
