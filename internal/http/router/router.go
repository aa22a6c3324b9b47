package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/petsafe/petsafe-api/internal/auth"
	"github.com/petsafe/petsafe-api/internal/config"
	"github.com/petsafe/petsafe-api/internal/http/handler"
	"github.com/petsafe/petsafe-api/internal/http/middleware"
	"github.com/petsafe/petsafe-api/internal/metrics"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/petsafe/petsafe-api/docs" // Import generated swagger docs
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Appointment   *handler.AppointmentHandler
	Report        *handler.ReportHandler
	Directory     *handler.DirectoryHandler
	Map           *handler.MapHandler
	Photo         *handler.PhotoHandler
	Situations    *handler.CatalogHandler
	AnimalTypes   *handler.CatalogHandler
	BusinessTypes *handler.CatalogHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	h              Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		h:              handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	// Health checks
	r.Get("/health", rt.h.Health.Live)
	r.Get("/health/db", rt.h.Health.Database)
	r.Get("/health/ready", rt.h.Health.Ready)

	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Map page
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentSecurityPolicy(rt.cfg.Security.MapContentSecurityPolicy))
		r.Get("/", http.RedirectHandler("/map", http.StatusFound).ServeHTTP)
		r.Get("/map", rt.h.Map.Page)
		r.Get("/map.js", rt.h.Map.Script)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", rt.h.Auth.Login)
			r.Post("/register/person", rt.h.Auth.RegisterPerson)
			r.Post("/register/business", rt.h.Auth.RegisterBusiness)
			r.Post("/register/shelter", rt.h.Auth.RegisterShelter)
		})

		r.Get("/veterinarians", rt.h.Directory.ListVeterinarians)
		r.Get("/businesses", rt.h.Directory.ListBusinesses)
		r.Get("/businesses/{id}", rt.h.Directory.GetBusiness)
		r.Get("/shelters", rt.h.Directory.ListShelters)
		r.Get("/shelters/{id}", rt.h.Directory.GetShelter)

		r.Get("/map/markers", rt.h.Map.Markers)
		r.Get("/map/search", rt.h.Map.Search)

		r.Post("/photos", rt.h.Photo.Upload)
		r.Get("/photos/*", rt.h.Photo.Download)

		rt.mountCatalog(r, "/situations", rt.h.Situations)
		rt.mountCatalog(r, "/animal-types", rt.h.AnimalTypes)
		rt.mountCatalog(r, "/business-types", rt.h.BusinessTypes)

		// Reports: reads are public, "mine" needs a caller
		r.Route("/reports", func(r chi.Router) {
			r.With(rt.authMiddleware.OptionalAuthenticate).Get("/", rt.h.Report.List)
			r.Get("/{id}", rt.h.Report.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.Authenticate)
				// owner or admin API key
				r.Delete("/{id}", rt.h.Report.Delete)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAccount)
					r.Post("/", rt.h.Report.Create)
					r.Put("/{id}", rt.h.Report.Update)
				})
			})
		})

		// Account routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.authMiddleware.RequireAccount)

			r.Get("/users/me", rt.h.User.Me)
			r.Put("/users/me", rt.h.User.UpdateMe)

			r.Route("/appointments", func(r chi.Router) {
				r.Get("/", rt.h.Appointment.List)
				r.Post("/", rt.h.Appointment.Create)
				r.Get("/export.ics", rt.h.Appointment.ExportICS)
				r.Get("/highlighted-dates", rt.h.Appointment.HighlightedDates)
				r.Get("/{id}", rt.h.Appointment.GetByID)
				r.Put("/{id}", rt.h.Appointment.Update)
				r.Delete("/{id}", rt.h.Appointment.Delete)
			})
		})
	})

	return r
}

// mountCatalog exposes a catalog for reading and restricts writes to the admin API key
func (rt *Router) mountCatalog(r chi.Router, path string, h *handler.CatalogHandler) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.authMiddleware.RequireAdmin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}
