package service

import (
	"context"
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/bloglist/internal/errs"
	"github.com/and161185/bloglist/internal/limiter"
	"github.com/and161185/bloglist/internal/model"
	"github.com/and161185/bloglist/internal/repository"
)

type fakeUsers struct {
	list []*model.User

	createErr error
	getErr    error
	listErr   error
	appendErr error
	removeErr error

	removed []uuid.UUID
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, x := range f.list {
		if x.Username == u.Username {
			return errs.ErrAlreadyExists
		}
	}
	cpy := *u
	f.list = append(f.list, &cpy)
	return nil
}

func (f *fakeUsers) find(pred func(*model.User) bool) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.list {
		if pred(u) {
			c := *u
			c.BlogIDs = slices.Clone(u.BlogIDs)
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.User, 0, len(f.list))
	for _, u := range f.list {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) AppendBlog(_ context.Context, userID, blogID uuid.UUID) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	for _, u := range f.list {
		if u.ID == userID {
			u.BlogIDs = append(u.BlogIDs, blogID)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeUsers) RemoveBlog(_ context.Context, userID, blogID uuid.UUID) error {
	f.removed = append(f.removed, blogID)
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, u := range f.list {
		if u.ID == userID {
			u.BlogIDs = slices.DeleteFunc(u.BlogIDs, func(id uuid.UUID) bool { return id == blogID })
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeBlogs struct {
	list []*model.Blog

	createErr error
	listErr   error
	deleteErr error

	deleted []uuid.UUID
}

var _ repository.BlogRepository = (*fakeBlogs)(nil)

func (f *fakeBlogs) Create(_ context.Context, b *model.Blog) error {
	if f.createErr != nil {
		return f.createErr
	}
	cpy := *b
	f.list = append(f.list, &cpy)
	return nil
}

func (f *fakeBlogs) GetByID(_ context.Context, id uuid.UUID) (*model.Blog, error) {
	for _, b := range f.list {
		if b.ID == id {
			c := *b
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeBlogs) List(context.Context) ([]model.Blog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Blog, 0, len(f.list))
	for _, b := range f.list {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBlogs) UpdateLikes(_ context.Context, id uuid.UUID, likes int64) (*model.Blog, error) {
	for _, b := range f.list {
		if b.ID == id {
			b.Likes = likes
			c := *b
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeBlogs) Delete(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, b := range f.list {
		if b.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return errs.ErrNotFound
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}

func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}

func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

type fakeTokens struct {
	subject   uuid.UUID
	verifyErr error
	issueErr  error
}

var _ TokenIssuer = (*fakeTokens)(nil)

func (f *fakeTokens) Issue(userID uuid.UUID) (string, time.Time, error) {
	if f.issueErr != nil {
		return "", time.Time{}, f.issueErr
	}
	return "tok-" + userID.String(), time.Now().Add(time.Hour), nil
}

func (f *fakeTokens) Verify(string) (uuid.UUID, error) {
	return f.subject, f.verifyErr
}

func ptr[T any](v T) *T { return &v }
