// Package rest serves the CMS JSON API over chi.
package rest

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/services"
)

// RouterOptions controls the construction of the HTTP router.
type RouterOptions struct {
	Users    UserService
	Content  ContentService
	Contacts ContactService
	Comments CommentService
	Guard    *Guard
	DB       Pinger
	Logger   logging.Logger

	// CORSOrigins overrides the allowed origins of DefaultCORSOptions.
	CORSOrigins []string
	// Collections served under /api/{name}. Defaults to services.Collections.
	Collections map[string]services.Collection
	Now         func() time.Time
}

// DefaultCORSOptions returns the CORS policy for the admin front-end.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles the chi router with shared middleware, CORS policy and
// every API handler mounted.
func NewRouter(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	collections := opts.Collections
	if collections == nil {
		collections = services.Collections
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log.With("component", "http")))
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if len(opts.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = opts.CORSOrigins
	}
	r.Use(cors.Handler(corsCfg))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method not allowed: %s %s", r.Method, r.URL.Path))
	})

	r.Get("/health", healthHandler(opts.DB, now))

	g := opts.Guard
	admin := g.Require(auth.AdminOnly)
	member := g.Require(auth.Authenticated)

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", testHandler)

		if opts.Users != nil {
			h := &userHandler{svc: opts.Users, log: log}
			r.Route("/users", func(r chi.Router) {
				r.Post("/register", h.register)
				r.Post("/login", h.login)

				r.Group(func(r chi.Router) {
					r.Use(member)
					r.Get("/profile", h.profile)
					r.Put("/profile", h.updateProfile)
					r.Put("/change-password", h.changePassword)
				})

				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Get("/", h.list)
					r.Put("/{id}/role", h.updateRole)
					r.Patch("/{id}/activate", h.changeStatus(opts.Users.Activate))
					r.Patch("/{id}/deactivate", h.changeStatus(opts.Users.Deactivate))
					r.Patch("/{id}/toggle-active", h.changeStatus(opts.Users.ToggleActive))
				})
			})
		}

		if opts.Content != nil {
			h := &contentHandler{svc: opts.Content, log: log}
			names := make([]string, 0, len(collections))
			for name := range collections {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				h.mount(r, g, collections[name])
			}

			r.Get("/about", h.about)
			r.With(admin).Put("/about", h.updateAbout)

			r.Route("/home", func(r chi.Router) {
				r.Get("/", h.home)
				r.Get("/featured", h.featured)
				r.Get("/stats", h.stats)
			})
		}

		if opts.Contacts != nil {
			h := &contactHandler{svc: opts.Contacts, log: log}
			r.Route("/contacts", func(r chi.Router) {
				r.Post("/", h.submit)
				r.With(admin).Get("/", h.list)
				r.With(admin).Put("/{id}/status", h.updateStatus)
				r.With(admin).Delete("/{id}", h.delete)
			})
		}

		if opts.Comments != nil {
			h := &commentHandler{svc: opts.Comments, log: log}
			r.Route("/comments", func(r chi.Router) {
				r.With(member).Post("/", h.create)
				r.Get("/post/{postID}", h.listForPost)
				r.With(admin).Put("/{id}/approve", h.approve)
				r.With(admin).Delete("/{id}", h.delete)
			})
		}
	})

	return r
}
