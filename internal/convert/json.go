// Package convert maps domain models to the JSON shapes of the HTTP API and
// request bodies back to domain inputs.
package convert

import (
	"github.com/and161185/bloglist/internal/model"
)

// --- requests (client -> server) ---

// BlogRequest is the body of POST /api/blogs. Pointer fields distinguish an
// absent key from a present zero value.
type BlogRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	URL    *string `json:"url"`
	Likes  *int64  `json:"likes"`
}

// LikesRequest is the body of PUT /api/blogs/{id}.
type LikesRequest struct {
	Likes *int64 `json:"likes"`
}

// RegisterRequest is the body of POST /api/users.
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToDraft converts a create request into a domain draft.
func (r BlogRequest) ToDraft() model.BlogDraft {
	return model.BlogDraft{Title: r.Title, Author: r.Author, URL: r.URL, Likes: r.Likes}
}

// ToRegistration converts a register request into domain input.
func (r RegisterRequest) ToRegistration() model.Registration {
	return model.Registration{Username: r.Username, Name: r.Name, Password: r.Password}
}

// --- views (server -> client) ---

// OwnerView is the reduced owner projection embedded in a blog.
type OwnerView struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// BlogView is the public shape of a blog.
type BlogView struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Author string     `json:"author"`
	URL    string     `json:"url"`
	Likes  int64      `json:"likes"`
	User   *OwnerView `json:"user,omitempty"`
}

// OwnedBlogView is a blog as listed under its owner.
type OwnedBlogView struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int64  `json:"likes"`
}

// UserView is the public shape of an account; it never carries the digest.
type UserView struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Blogs    []OwnedBlogView `json:"blogs"`
}

// LoginView is the successful login response.
type LoginView struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// FavoriteView is the most liked blog in stats output.
type FavoriteView struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Likes  int64  `json:"likes"`
}

// AuthorBlogsView is the most prolific author.
type AuthorBlogsView struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

// AuthorLikesView is the author with the most cumulative likes.
type AuthorLikesView struct {
	Author string `json:"author"`
	Likes  int64  `json:"likes"`
}

// SummaryView is the body of GET /api/blogs/stats. Finders are null for an
// empty collection.
type SummaryView struct {
	TotalLikes   int64            `json:"totalLikes"`
	FavoriteBlog *FavoriteView    `json:"favoriteBlog"`
	MostBlogs    *AuthorBlogsView `json:"mostBlogs"`
	MostLikes    *AuthorLikesView `json:"mostLikes"`
}

// ToBlogView converts a blog; owner may be nil.
func ToBlogView(b model.Blog, owner *model.Owner) BlogView {
	v := BlogView{
		ID:     b.ID.String(),
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
	}
	if owner != nil {
		v.User = &OwnerView{Username: owner.Username, Name: owner.Name}
	}
	return v
}

// ToBlogViews converts a listing of blogs with owners.
func ToBlogViews(bs []model.BlogWithOwner) []BlogView {
	out := make([]BlogView, 0, len(bs))
	for _, b := range bs {
		out = append(out, ToBlogView(b.Blog, b.Owner))
	}
	return out
}

// ToOwner projects an account down to its public owner fields.
func ToOwner(u *model.User) *model.Owner {
	if u == nil {
		return nil
	}
	return &model.Owner{ID: u.ID, Username: u.Username, Name: u.Name}
}

// ToUserView converts an account and the blogs it owns.
func ToUserView(u model.User, blogs []model.Blog) UserView {
	v := UserView{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Blogs:    make([]OwnedBlogView, 0, len(blogs)),
	}
	for _, b := range blogs {
		v.Blogs = append(v.Blogs, OwnedBlogView{
			ID:     b.ID.String(),
			Title:  b.Title,
			Author: b.Author,
			URL:    b.URL,
			Likes:  b.Likes,
		})
	}
	return v
}

// ToUserViews converts the user listing.
func ToUserViews(us []model.UserWithBlogs) []UserView {
	out := make([]UserView, 0, len(us))
	for _, u := range us {
		out = append(out, ToUserView(u.User, u.Blogs))
	}
	return out
}

// ToLoginView builds the login response.
func ToLoginView(t model.Tokens, u model.User) LoginView {
	return LoginView{Token: t.AccessToken, Username: u.Username, Name: u.Name}
}

// ToSummaryView converts collection statistics.
func ToSummaryView(s model.Summary) SummaryView {
	v := SummaryView{TotalLikes: s.TotalLikes}
	if s.FavoriteBlog != nil {
		v.FavoriteBlog = &FavoriteView{Title: s.FavoriteBlog.Title, Author: s.FavoriteBlog.Author, Likes: s.FavoriteBlog.Likes}
	}
	if s.MostBlogs != nil {
		v.MostBlogs = &AuthorBlogsView{Author: s.MostBlogs.Author, Blogs: s.MostBlogs.Blogs}
	}
	if s.MostLikes != nil {
		v.MostLikes = &AuthorLikesView{Author: s.MostLikes.Author, Likes: s.MostLikes.Likes}
	}
	return v
}
