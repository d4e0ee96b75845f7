// Package httpserver exposes the bloglist REST API over chi.
package httpserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/bloglist/internal/convert"
	"github.com/and161185/bloglist/internal/errs"
	"github.com/and161185/bloglist/internal/service"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Options tune transport behaviour.
type Options struct {
	Dev         bool     // expose internal error text in 500 responses
	CORSOrigins []string // allowed origins; empty allows any
}

// Server wires services into HTTP handlers.
type Server struct {
	auth  service.AuthService
	blogs service.BlogService
	log   *zap.Logger
	dev   bool
	cors  []string
}

// New constructs an HTTP server with injected services.
func New(auth service.AuthService, blogs service.BlogService, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, blogs: blogs, log: log, dev: opts.Dev, cors: opts.CORSOrigins}
}

// Handler builds the router. Every route lives under /api.
func (s *Server) Handler() http.Handler {
	origins := s.cors
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(Logging(s.log))
	r.Use(Recover(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	authed := RequireIdentity(s.auth, s.writeError)

	r.Route("/api", func(r chi.Router) {
		r.Get("/blogs", s.listBlogs)
		r.Get("/blogs/stats", s.blogStats)
		r.With(authed).Post("/blogs", s.createBlog)
		r.With(authed).Delete("/blogs/{id}", s.deleteBlog)
		r.Put("/blogs/{id}", s.updateLikes)

		r.Get("/users", s.listUsers)
		r.Post("/users", s.register)
		r.Post("/login", s.login)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown endpoint"})
	})
	return r
}

// --- blogs ---

func (s *Server) listBlogs(w http.ResponseWriter, r *http.Request) {
	bs, err := s.blogs.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToBlogViews(bs))
}

func (s *Server) blogStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.blogs.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToSummaryView(sum))
}

// createBlog answers validation failures with a bare 400.
func (s *Server) createBlog(w http.ResponseWriter, r *http.Request) {
	who, ok := IdentityFromCtx(r.Context())
	if !ok {
		s.writeError(w, r, errs.ErrInvalidToken)
		return
	}

	var req convert.BlogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b, err := s.blogs.Create(r.Context(), &who, req.ToDraft())
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToBlogView(b, convert.ToOwner(who.User)))
}

func (s *Server) deleteBlog(w http.ResponseWriter, r *http.Request) {
	who, ok := IdentityFromCtx(r.Context())
	if !ok {
		s.writeError(w, r, errs.ErrInvalidToken)
		return
	}
	id, ok := blogID(w, r)
	if !ok {
		return
	}
	if err := s.blogs.Delete(r.Context(), who, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateLikes(w http.ResponseWriter, r *http.Request) {
	id, ok := blogID(w, r)
	if !ok {
		return
	}
	var req convert.LikesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed JSON"})
		return
	}
	b, err := s.blogs.UpdateLikes(r.Context(), id, req.Likes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToBlogView(b, nil))
}

func blogID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformatted id"})
		return uuid.Nil, false
	}
	return id, true
}

// --- users ---

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	us, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToUserViews(us))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req convert.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed JSON"})
		return
	}
	u, err := s.auth.Register(r.Context(), req.ToRegistration())
	if err != nil {
		var fe *errs.FieldError
		if errors.As(err, &fe) {
			writeUserValidation(w, fe)
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToUserView(u, nil))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req convert.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed JSON"})
		return
	}
	tok, u, err := s.auth.LoginWithIP(r.Context(), req.Username, req.Password, remoteIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToLoginView(tok, u))
}

// remoteIP is the peer host without port, so all connections from one client
// share a limiter bucket. Forwarding headers are not trusted.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(dst)
}
