package router

import (
	"net/http"

	"concerthub-api/internal/handler"
	"concerthub-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler             *handler.Handler
	ConcertHandler      *handler.ConcertHandler
	WishlistHandler     *handler.WishlistHandler
	OrderHandler        *handler.OrderHandler
	NotificationHandler *handler.NotificationHandler
	SettingsHandler     *handler.SettingsHandler
	CheckoutHandler     *handler.CheckoutHandler
	EventsHandler       *handler.EventsHandler
	AdminHandler        *handler.AdminHandler
	ViewHandler         *handler.ViewHandler
	SessionMiddleware   func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader, middleware.SessionHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, middleware.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Probes carry no session.
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}

	if cfg.ViewHandler != nil {
		r.Get("/components/{file}", cfg.ViewHandler.Component)
		r.Get("/section/{file}", cfg.ViewHandler.Fragment)
	}

	r.Group(func(r chi.Router) {
		if cfg.SessionMiddleware != nil {
			r.Use(cfg.SessionMiddleware)
		}

		if cfg.ViewHandler != nil {
			r.Get("/", cfg.ViewHandler.Index)
			r.Get("/app/{section}", cfg.ViewHandler.Section)
			r.Get("/checkout", cfg.ViewHandler.Checkout)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.ConcertHandler != nil {
				r.Route("/concerts", func(r chi.Router) {
					r.Get("/", cfg.ConcertHandler.List)
					r.Get("/{id}", cfg.ConcertHandler.Get)
					r.Post("/{id}/wishlist", cfg.ConcertHandler.ToggleWishlist)
					r.Post("/{id}/select", cfg.ConcertHandler.Select)
				})
			}

			if cfg.WishlistHandler != nil {
				r.Route("/wishlist", func(r chi.Router) {
					r.Get("/", cfg.WishlistHandler.List)
					r.Get("/count", cfg.WishlistHandler.Count)
					r.Put("/{id}", cfg.WishlistHandler.Add)
					r.Delete("/{id}", cfg.WishlistHandler.Remove)
				})
			}

			if cfg.OrderHandler != nil {
				r.Route("/orders", func(r chi.Router) {
					r.Get("/", cfg.OrderHandler.List)
					r.Get("/{id}", cfg.OrderHandler.Get)
				})
			}

			if cfg.NotificationHandler != nil {
				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", cfg.NotificationHandler.List)
					r.Delete("/", cfg.NotificationHandler.Clear)
					r.Get("/badge", cfg.NotificationHandler.Badge)
					r.Post("/read-all", cfg.NotificationHandler.MarkAllRead)
					r.Post("/{id}/read", cfg.NotificationHandler.MarkRead)
					r.Delete("/{id}", cfg.NotificationHandler.Delete)
				})
			}

			if cfg.SettingsHandler != nil {
				r.Get("/settings", cfg.SettingsHandler.Get)
				r.Put("/settings", cfg.SettingsHandler.Update)
				r.Post("/settings", cfg.SettingsHandler.Update) // HTML form
			}

			if cfg.CheckoutHandler != nil {
				r.Route("/checkout", func(r chi.Router) {
					r.Get("/", cfg.CheckoutHandler.Get)
					r.Put("/quantity", cfg.CheckoutHandler.SetQuantity)
					r.Post("/submit", cfg.CheckoutHandler.Submit)
				})
			}

			if cfg.EventsHandler != nil {
				r.Get("/events", cfg.EventsHandler.Stream)
			}

			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Get("/health", cfg.AdminHandler.GetHealth)
				})
			}
		})
	})

	return r
}
