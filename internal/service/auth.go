// Package service contains the application services: identity resolution,
// account management and the blog mutation pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/bloglist/internal/crypto"
	"github.com/and161185/bloglist/internal/errs"
	"github.com/and161185/bloglist/internal/limiter"
	"github.com/and161185/bloglist/internal/model"
	"github.com/and161185/bloglist/internal/repository"
)

// MinPasswordLength is the shortest raw password accepted at registration.
const MinPasswordLength = 3

// TokenIssuer issues and verifies bearer credentials.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, time.Time, error)
	Verify(raw string) (uuid.UUID, error)
}

// AuthService defines identity and account operations.
type AuthService interface {
	// Authorize verifies a raw bearer token and resolves the account it names.
	Authorize(ctx context.Context, rawToken string) (model.Identity, error)
	// Register validates input and creates a new account.
	Register(ctx context.Context, in model.Registration) (model.User, error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error)
	// ListUsers returns every account with the blogs it currently owns.
	ListUsers(ctx context.Context) ([]model.UserWithBlogs, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	blogs  repository.BlogRepository
	tokens TokenIssuer
	lim    limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, blogs repository.BlogRepository, tokens TokenIssuer, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, blogs: blogs, tokens: tokens, lim: lim}
}

// Authorize never fails on a stale identity: a valid token whose account is
// gone yields an Identity with a nil User.
func (s *AuthServiceImpl) Authorize(ctx context.Context, rawToken string) (model.Identity, error) {
	uid, err := s.tokens.Verify(rawToken)
	if err != nil {
		if !errors.Is(err, errs.ErrInvalidToken) {
			err = fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
		}
		return model.Identity{}, err
	}

	u, err := s.users.GetByID(ctx, uid)
	switch {
	case err == nil:
		return model.Identity{UserID: uid, User: u}, nil
	case errors.Is(err, errs.ErrNotFound):
		return model.Identity{UserID: uid}, nil
	default:
		return model.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
}

// Register checks username presence and password length before touching the store.
func (s *AuthServiceImpl) Register(ctx context.Context, in model.Registration) (model.User, error) {
	if strings.TrimSpace(in.Username) == "" {
		return model.User{}, errs.NewFieldError("username", "Path `username` is required.")
	}
	if len(in.Password) < MinPasswordLength {
		return model.User{}, errs.ErrInvalidPassword
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, err
	}
	digest, err := pkgcrypto.HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}

	u := &model.User{
		ID:        uid,
		Username:  in.Username,
		Name:      in.Name,
		PwdDigest: digest,
		BlogIDs:   []uuid.UUID{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return model.User{}, &errs.FieldError{
				Field: "username",
				Msg:   fmt.Sprintf("Error, expected `username` to be unique. Value: `%s`", in.Username),
				Cause: err,
			}
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return *u, nil
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PwdDigest) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown user and wrong password look the same to the caller
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, username, ipHash)

	access, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return model.Tokens{}, model.User{}, fmt.Errorf("issue token: %w", err)
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// ListUsers joins each account with its owned blogs. Ids in BlogIDs that no
// longer resolve to a blog are skipped.
func (s *AuthServiceImpl) ListUsers(ctx context.Context) ([]model.UserWithBlogs, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}

	byID := make(map[uuid.UUID]model.Blog, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
	}

	out := make([]model.UserWithBlogs, 0, len(users))
	for _, u := range users {
		owned := make([]model.Blog, 0, len(u.BlogIDs))
		for _, id := range u.BlogIDs {
			if b, ok := byID[id]; ok {
				owned = append(owned, b)
			}
		}
		out = append(out, model.UserWithBlogs{User: u, Blogs: owned})
	}
	return out, nil
}
