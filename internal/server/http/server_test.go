package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/bloglist/internal/convert"
	"github.com/and161185/bloglist/internal/limiter"
	"github.com/and161185/bloglist/internal/repository/memory"
	"github.com/and161185/bloglist/internal/service"
	"github.com/and161185/bloglist/internal/token"
)

type apiFixture struct {
	t      *testing.T
	srv    *httptest.Server
	blogs  *memory.Blogs
	users  *memory.Users
	issuer *token.Issuer
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	users := memory.NewUsers()
	blogs := memory.NewBlogs()
	issuer := token.NewIssuer([]byte("test-secret"), time.Hour)
	auth := service.NewAuthService(users, blogs, issuer, limiter.NewMemory(limiter.DefaultPolicy))
	blogSvc := service.NewBlogService(blogs, users, log)

	srv := httptest.NewServer(New(auth, blogSvc, log, Options{}).Handler())
	t.Cleanup(srv.Close)
	return &apiFixture{t: t, srv: srv, blogs: blogs, users: users, issuer: issuer}
}

func (f *apiFixture) do(method, path, tok string, body any) (*http.Response, []byte) {
	f.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(f.t, err)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", tok)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	return resp, raw
}

func (f *apiFixture) register(username, name, password string) {
	f.t.Helper()
	resp, raw := f.do(http.MethodPost, "/api/users", "", map[string]string{
		"username": username, "name": name, "password": password,
	})
	require.Equal(f.t, http.StatusCreated, resp.StatusCode, string(raw))
}

func (f *apiFixture) login(username, password string) string {
	f.t.Helper()
	resp, raw := f.do(http.MethodPost, "/api/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(f.t, http.StatusOK, resp.StatusCode, string(raw))
	var lv convert.LoginView
	require.NoError(f.t, json.Unmarshal(raw, &lv))
	require.Equal(f.t, username, lv.Username)
	require.NotEmpty(f.t, lv.Token)
	return "Bearer " + lv.Token
}

func (f *apiFixture) listBlogs() []convert.BlogView {
	f.t.Helper()
	resp, raw := f.do(http.MethodGet, "/api/blogs", "", nil)
	require.Equal(f.t, http.StatusOK, resp.StatusCode)
	require.Contains(f.t, resp.Header.Get("Content-Type"), "application/json")
	var out []convert.BlogView
	require.NoError(f.t, json.Unmarshal(raw, &out))
	return out
}

func (f *apiFixture) storedBlogs() int {
	f.t.Helper()
	bs, err := f.blogs.List(context.Background())
	require.NoError(f.t, err)
	return len(bs)
}

func errorOf(t *testing.T, raw []byte) string {
	t.Helper()
	var e struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e.Error
}

func TestAPI_CreateBlog_DefaultsLikesAndOwner(t *testing.T) {
	f := newAPI(t)
	f.register("root", "Superuser", "sekret")
	tok := f.login("root", "sekret")

	resp, raw := f.do(http.MethodPost, "/api/blogs", tok, map[string]string{"title": "T", "url": "U"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var created convert.BlogView
	require.NoError(t, json.Unmarshal(raw, &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, int64(0), created.Likes)

	list := f.listBlogs()
	require.Len(t, list, 1)
	require.Equal(t, created.ID, list[0].ID)
	require.NotNil(t, list[0].User)
	require.Equal(t, "root", list[0].User.Username)
	require.Equal(t, "Superuser", list[0].User.Name)
	require.NotContains(t, string(raw), "_id")

	u, err := f.users.GetByUsername(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, u.BlogIDs, 1)
	require.Equal(t, created.ID, u.BlogIDs[0].String())
}

func TestAPI_CreateBlog_TokenRequired(t *testing.T) {
	f := newAPI(t)

	for name, tok := range map[string]string{
		"missing":   "",
		"garbage":   "Bearer not.a.token",
		"no scheme": "abc",
		"basic":     "Basic dXNlcjpwYXNz",
	} {
		resp, raw := f.do(http.MethodPost, "/api/blogs", tok, map[string]string{"title": "T", "url": "U"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, name)
		require.Equal(t, "token missing or invalid", errorOf(t, raw), name)
	}

	// token check happens before body validation
	resp, raw := f.do(http.MethodPost, "/api/blogs", "", map[string]string{"author": "A"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "token missing or invalid", errorOf(t, raw))

	require.Zero(t, f.storedBlogs())
}

func TestAPI_CreateBlog_LowercaseBearer(t *testing.T) {
	f := newAPI(t)
	f.register("root", "", "sekret")
	tok := strings.Replace(f.login("root", "sekret"), "Bearer", "bearer", 1)

	resp, _ := f.do(http.MethodPost, "/api/blogs", tok, map[string]string{"title": "T", "url": "U"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAPI_CreateBlog_MissingFields(t *testing.T) {
	f := newAPI(t)
	f.register("root", "", "sekret")
	tok := f.login("root", "sekret")

	for name, body := range map[string]any{
		"no title": map[string]any{"author": "A", "url": "U", "likes": 1},
		"no url":   map[string]any{"title": "T", "author": "A"},
		"bad json": "{not json",
	} {
		resp, raw := f.do(http.MethodPost, "/api/blogs", tok, body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		require.Empty(t, raw, name)
	}
	require.Zero(t, f.storedBlogs())

	// present but empty is accepted
	resp, _ := f.do(http.MethodPost, "/api/blogs", tok, map[string]string{"title": "", "url": ""})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAPI_CreateBlog_StaleAccountCreatesUnowned(t *testing.T) {
	f := newAPI(t)
	raw, _, err := f.issuer.Issue(uuid.Must(uuid.NewV4()))
	require.NoError(t, err)

	resp, body := f.do(http.MethodPost, "/api/blogs", "Bearer "+raw, map[string]string{"title": "T", "url": "U"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	list := f.listBlogs()
	require.Len(t, list, 1)
	require.Nil(t, list[0].User)
}

func TestAPI_DeleteBlog_Ownership(t *testing.T) {
	f := newAPI(t)
	f.register("alice", "", "alicepw")
	f.register("bob", "", "bobpw")
	alice := f.login("alice", "alicepw")
	bob := f.login("bob", "bobpw")

	resp, raw := f.do(http.MethodPost, "/api/blogs", alice, map[string]string{"title": "T", "url": "U"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var b convert.BlogView
	require.NoError(t, json.Unmarshal(raw, &b))

	resp, raw = f.do(http.MethodDelete, "/api/blogs/"+b.ID, bob, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "You can delete only your own blogs", errorOf(t, raw))
	require.Len(t, f.listBlogs(), 1)

	resp, raw = f.do(http.MethodDelete, "/api/blogs/"+b.ID, "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "token missing or invalid", errorOf(t, raw))

	resp, raw = f.do(http.MethodDelete, "/api/blogs/"+b.ID, alice, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Empty(t, raw)
	require.Empty(t, f.listBlogs())

	u, err := f.users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Empty(t, u.BlogIDs)

	resp, _ = f.do(http.MethodDelete, "/api/blogs/"+b.ID, alice, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = f.do(http.MethodDelete, "/api/blogs/not-an-id", alice, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "malformatted id", errorOf(t, raw))
}

func TestAPI_UpdateLikes(t *testing.T) {
	f := newAPI(t)
	f.register("root", "", "sekret")
	tok := f.login("root", "sekret")

	resp, raw := f.do(http.MethodPost, "/api/blogs", tok, map[string]any{"title": "T", "url": "U", "likes": 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var b convert.BlogView
	require.NoError(t, json.Unmarshal(raw, &b))

	// no token needed
	resp, raw = f.do(http.MethodPut, "/api/blogs/"+b.ID, "", map[string]any{"likes": 42})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var upd convert.BlogView
	require.NoError(t, json.Unmarshal(raw, &upd))
	require.Equal(t, int64(42), upd.Likes)
	require.Equal(t, "T", upd.Title)

	resp, _ = f.do(http.MethodPut, "/api/blogs/"+b.ID, "", map[string]any{"likes": -1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(http.MethodPut, "/api/blogs/"+b.ID, "", map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(http.MethodPut, "/api/blogs/"+uuid.Must(uuid.NewV4()).String(), "", map[string]any{"likes": 1})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(http.MethodPut, "/api/blogs/xyz", "", map[string]any{"likes": 1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Register(t *testing.T) {
	f := newAPI(t)
	f.register("root", "", "sekret")

	resp, raw := f.do(http.MethodPost, "/api/users", "", map[string]string{"username": "mstitane", "name": "Mohammed STITANE", "password": "MST@123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotContains(t, strings.ToLower(string(raw)), "digest")
	require.NotContains(t, string(raw), "MST@123")

	resp, raw = f.do(http.MethodPost, "/api/users", "", map[string]string{"name": "test name", "password": "123"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var ve struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw, &ve))
	require.Equal(t, "ValidationError", ve.Name)
	require.Contains(t, ve.Message, "Path `username` is required.")

	resp, raw = f.do(http.MethodPost, "/api/users", "", map[string]string{"username": "test1", "password": "12"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "INVALID_PASSWORD", errorOf(t, raw))

	resp, raw = f.do(http.MethodPost, "/api/users", "", map[string]string{"username": "root", "password": "another"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &ve))
	require.Equal(t, "ValidationError", ve.Name)

	resp, raw = f.do(http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []convert.UserView
	require.NoError(t, json.Unmarshal(raw, &users))
	require.Len(t, users, 2)
	require.Equal(t, "root", users[0].Username)
	require.Equal(t, "mstitane", users[1].Username)
	require.NotNil(t, users[0].Blogs)
}

func TestAPI_UsersListIncludesOwnedBlogs(t *testing.T) {
	f := newAPI(t)
	f.register("root", "", "sekret")
	tok := f.login("root", "sekret")
	resp, _ := f.do(http.MethodPost, "/api/blogs", tok, map[string]string{"title": "T", "url": "U"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := f.do(http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []convert.UserView
	require.NoError(t, json.Unmarshal(raw, &users))
	require.Len(t, users, 1)
	require.Len(t, users[0].Blogs, 1)
	require.Equal(t, "T", users[0].Blogs[0].Title)
}

func TestAPI_Login(t *testing.T) {
	f := newAPI(t)
	f.register("root", "Superuser", "sekret")

	resp, raw := f.do(http.MethodPost, "/api/login", "", map[string]string{"username": "root", "password": "sekret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lv convert.LoginView
	require.NoError(t, json.Unmarshal(raw, &lv))
	require.Equal(t, "Superuser", lv.Name)

	resp, _ = f.do(http.MethodPost, "/api/login", "", map[string]string{"username": "root", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = f.do(http.MethodPost, "/api/login", "", map[string]string{"username": "ghost", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_Login_RateLimited(t *testing.T) {
	f := newAPI(t)
	f.register("root", "", "sekret")

	var last int
	for i := 0; i < limiter.DefaultPolicy.MaxFails; i++ {
		resp, _ := f.do(http.MethodPost, "/api/login", "", map[string]string{"username": "root", "password": "wrong"})
		last = resp.StatusCode
	}
	require.Equal(t, http.StatusTooManyRequests, last)

	resp, _ := f.do(http.MethodPost, "/api/login", "", map[string]string{"username": "root", "password": "sekret"})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "locked out even with the right password")
}

func TestAPI_Stats(t *testing.T) {
	f := newAPI(t)

	resp, raw := f.do(http.MethodGet, "/api/blogs/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"totalLikes":0,"favoriteBlog":null,"mostBlogs":null,"mostLikes":null}`, string(raw))

	f.register("root", "", "sekret")
	tok := f.login("root", "sekret")
	for _, b := range []map[string]any{
		{"title": "a", "url": "u", "author": "X", "likes": 3},
		{"title": "b", "url": "u", "author": "X", "likes": 4},
		{"title": "c", "url": "u", "author": "Y", "likes": 5},
	} {
		resp, _ := f.do(http.MethodPost, "/api/blogs", tok, b)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, raw = f.do(http.MethodGet, "/api/blogs/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{
		"totalLikes": 12,
		"favoriteBlog": {"title":"c","author":"Y","likes":5},
		"mostBlogs": {"author":"X","blogs":2},
		"mostLikes": {"author":"X","likes":7}
	}`, string(raw))
}

func TestAPI_UnknownEndpoint(t *testing.T) {
	f := newAPI(t)
	resp, raw := f.do(http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "unknown endpoint", errorOf(t, raw))
}

func TestAPI_CORSPreflight(t *testing.T) {
	f := newAPI(t)
	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/blogs", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

