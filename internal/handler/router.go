package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"radius-admin/internal/audit"
	"radius-admin/internal/config"
	"radius-admin/internal/service"
	"radius-admin/internal/session"
	"radius-admin/internal/util"
)

// RouterDeps is everything the router needs to mount the API.
type RouterDeps struct {
	Config   *config.Config
	Services *service.ServiceFactory
	Sessions *session.Manager
	Recorder *audit.Recorder
}

// NewRouter builds the HTTP surface. The login endpoint is the only
// mutating route outside the session group; everything else requires an
// authenticated session and, for mutations, a valid anti-forgery token.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(util.Get()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if deps.Config.Server.EnableTLS {
		r.Use(requireHTTPS(deps.Config.Server.TLSPort))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(deps.Services.Auth, deps.Config.Session)
	subscriberHandler := NewSubscriberHandler(deps.Services.Subscribers)
	auditHandler := NewAuditHandler(deps.Services.Audits)
	settingsHandler := NewSettingsHandler(deps.Services.Settings)
	systemHandler := NewSystemHandler(deps.Services.System, deps.Services.Dashboard)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(deps.Sessions, deps.Config.Session.CookieName))
			r.Use(AntiForgeryMiddleware(deps.Sessions, deps.Recorder))

			r.Post("/auth/logout", authHandler.Logout)

			r.Get("/dashboard", systemHandler.Dashboard)
			r.Get("/system", systemHandler.Info)

			r.Route("/subscribers", func(r chi.Router) {
				r.Get("/", subscriberHandler.List)
				r.Post("/", subscriberHandler.Create)
				r.Get("/{username}", subscriberHandler.Get)
				r.Put("/{username}/password", subscriberHandler.ChangePassword)
				r.Delete("/{username}", subscriberHandler.Delete)
			})

			r.Route("/audit", func(r chi.Router) {
				r.Get("/", auditHandler.List)
				r.Get("/search", auditHandler.Search)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", settingsHandler.Get)
				r.Put("/", settingsHandler.Update)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondWithJSON(w, http.StatusNotFound, Response{Success: false, Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondWithJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
	})

	return r
}
