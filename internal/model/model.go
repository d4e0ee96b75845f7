// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents a registered account. PwdDigest is never exposed outward.
type User struct {
	ID        uuid.UUID   // PK
	Username  string      // unique
	Name      string      // optional display name
	PwdDigest string      // self-describing argon2id digest
	BlogIDs   []uuid.UUID // blogs created by this account, in creation order
	CreatedAt time.Time
}

// Registration is the raw input of account creation.
type Registration struct {
	Username string
	Name     string
	Password string
}

// Blog is a titled URL record with a like count and an optional owner.
type Blog struct {
	ID        uuid.UUID
	Title     string
	Author    string
	URL       string
	Likes     int64
	OwnerID   *uuid.UUID // nil when created without a resolved account
	CreatedAt time.Time
}

// BlogDraft carries candidate fields for creation; nil means the field was absent.
type BlogDraft struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int64
}

// Owner is the public projection of a blog's owning account.
type Owner struct {
	ID       uuid.UUID
	Username string
	Name     string
}

// BlogWithOwner is a blog joined with its owner projection (nil if unowned or stale).
type BlogWithOwner struct {
	Blog
	Owner *Owner
}

// UserWithBlogs is an account joined with the blogs it currently owns.
type UserWithBlogs struct {
	User
	Blogs []Blog
}

// Identity is what the authorization gate resolves a bearer token to.
// User is nil when the token is valid but no such account exists anymore.
type Identity struct {
	UserID uuid.UUID
	User   *User
}

// AuthorBlogs is the author with the highest post count.
type AuthorBlogs struct {
	Author string
	Blogs  int
}

// AuthorLikes is the author with the highest cumulative likes.
type AuthorLikes struct {
	Author string
	Likes  int64
}

// Summary bundles all collection statistics; pointers are nil for an empty collection.
type Summary struct {
	TotalLikes   int64
	FavoriteBlog *Blog
	MostBlogs    *AuthorBlogs
	MostLikes    *AuthorLikes
}
