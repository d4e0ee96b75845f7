package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/and161185/bloglist/internal/convert"
)

// apiError is a non-2xx answer of the bloglist API.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// client is a thin JSON-over-HTTP client for the bloglist API.
type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(addr, token string) *client {
	return &client{
		base:  strings.TrimRight(addr, "/") + "/api",
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends in as JSON (when non-nil) and decodes the response into out (when non-nil).
func (c *client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		return &apiError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// errorMessage understands both {"error"} and {"name","message"} bodies.
func errorMessage(raw []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &e) != nil {
		return strings.TrimSpace(string(raw))
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func (c *client) register(ctx context.Context, in convert.RegisterRequest) (convert.UserView, error) {
	var out convert.UserView
	err := c.do(ctx, http.MethodPost, "/users", in, &out)
	return out, err
}

func (c *client) login(ctx context.Context, in convert.LoginRequest) (convert.LoginView, error) {
	var out convert.LoginView
	err := c.do(ctx, http.MethodPost, "/login", in, &out)
	return out, err
}

func (c *client) listBlogs(ctx context.Context) ([]convert.BlogView, error) {
	var out []convert.BlogView
	err := c.do(ctx, http.MethodGet, "/blogs", nil, &out)
	return out, err
}

func (c *client) createBlog(ctx context.Context, in convert.BlogRequest) (convert.BlogView, error) {
	var out convert.BlogView
	err := c.do(ctx, http.MethodPost, "/blogs", in, &out)
	return out, err
}

func (c *client) updateLikes(ctx context.Context, id string, likes int64) (convert.BlogView, error) {
	var out convert.BlogView
	err := c.do(ctx, http.MethodPut, "/blogs/"+id, convert.LikesRequest{Likes: &likes}, &out)
	return out, err
}

func (c *client) deleteBlog(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/blogs/"+id, nil, nil)
}

func (c *client) listUsers(ctx context.Context) ([]convert.UserView, error) {
	var out []convert.UserView
	err := c.do(ctx, http.MethodGet, "/users", nil, &out)
	return out, err
}

func (c *client) stats(ctx context.Context) (convert.SummaryView, error) {
	var out convert.SummaryView
	err := c.do(ctx, http.MethodGet, "/blogs/stats", nil, &out)
	return out, err
}
