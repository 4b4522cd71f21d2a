// Package fakeapi is an in-process stand-in for the remote canvas template
// API. It speaks the same routes, auth scheme and payloads, and keeps its
// data in memory.
package fakeapi

import (
	"canvas-templates/core"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type (
	Options struct {
		// Secret signs issued tokens.
		Secret []byte

		// Users maps accepted emails to passwords.
		Users map[string]string

		// Now overrides the clock; time.Now when nil.
		Now func() time.Time
	}

	Server struct {
		secret []byte
		users  map[string]string
		now    func() time.Time
		repo   *repository
		router *chi.Mux
	}
)

func NewServer(opts Options) *Server {
	s := &Server{
		secret: opts.Secret,
		users:  opts.Users,
		now:    opts.Now,
		repo:   newRepository(),
	}
	if len(s.secret) == 0 {
		s.secret = []byte("fake-api-secret")
	}
	if s.users == nil {
		s.users = map[string]string{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(methodOverride)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authJWT)
			r.Route("/canvas_templates", func(r chi.Router) {
				r.Get("/", s.handleList)
				r.Post("/", s.handleCreate)
				r.Delete("/", s.handleDelete)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGet)
					r.Patch("/", s.handleUpdate)
				})
			})
		})
	})

	r.Get("/storage/previews/{name}", s.handlePreview)

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Seed inserts templates as if they had been created earlier. Templates
// without an id get the next free one.
func (s *Server) Seed(templates ...core.Template) []core.Template {
	out := make([]core.Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, s.repo.insert(t))
	}
	return out
}

// Templates returns the server-side collection.
func (s *Server) Templates() []core.Template {
	return s.repo.list()
}
