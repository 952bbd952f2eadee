package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/daap14/formadmin/internal/api/handler"
	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/auth"
	"github.com/daap14/formadmin/internal/store"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Store       store.Store
	AuthService *auth.Service
	Gate        *auth.Gate
	Metrics     *middleware.Metrics
	Version     string
	BasePath    string
	EmailDomain string
	UIDir       string

	CORSAllowedOrigins []string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
// Application routes live under BasePath; /health and /metrics stay at the root.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	if len(deps.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	healthHandler := handler.NewHealthHandler(deps.Store, string(deps.Store.Backend()), deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	mount := deps.BasePath
	if mount == "" {
		mount = "/"
	}
	r.Mount(mount, appRouter(deps))

	return r
}

func appRouter(deps RouterDeps) http.Handler {
	gate := deps.Gate
	if gate == nil {
		gate = auth.NewGate()
	}

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.EmailDomain)
	userHandler := handler.NewUserHandler(deps.Store, deps.AuthService)
	formHandler := handler.NewFormHandler(deps.Store)
	pageHandler := handler.NewPageHandler(deps.AuthService, gate, deps.BasePath, deps.UIDir)

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(deps.AuthService.Sessions()))

	r.Get("/", pageHandler.Root)
	r.Group(func(r chi.Router) {
		r.Use(middleware.PageGate(gate, deps.BasePath))
		for _, page := range []string{"login", "register", "admin", "dashboard", "forms"} {
			r.Get("/"+page, pageHandler.Page(page))
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/all", userHandler.ListAll)
			r.Get("/pending", userHandler.ListPending)
			r.Put("/{id}/role", userHandler.Update)
			r.Post("/{id}/approve", userHandler.Approve)
		})

		r.Route("/forms", func(r chi.Router) {
			r.Get("/", formHandler.List)
			r.Put("/{id}", formHandler.Rename)
		})
	})

	return r
}
