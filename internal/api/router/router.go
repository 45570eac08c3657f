package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/daryeelcare/caafimaad-platform/internal/articles"
	"github.com/daryeelcare/caafimaad-platform/internal/bookings"
	"github.com/daryeelcare/caafimaad-platform/internal/chat"
	"github.com/daryeelcare/caafimaad-platform/internal/contacts"
	"github.com/daryeelcare/caafimaad-platform/internal/doctors"
	"github.com/daryeelcare/caafimaad-platform/internal/http/handlers"
	httpmiddleware "github.com/daryeelcare/caafimaad-platform/internal/http/middleware"
	"github.com/daryeelcare/caafimaad-platform/internal/messages"
	"github.com/daryeelcare/caafimaad-platform/internal/users"
	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	BookingsHandler *bookings.Handler
	DoctorsHandler  *doctors.Handler
	ArticlesHandler *articles.Handler
	ContactsHandler *contacts.Handler
	UsersHandler    *users.Handler
	MessagesHandler *messages.Handler
	ChatHandler     *chat.Handler
	AdminDashboard  *handlers.AdminDashboardHandler

	JWTSecret          string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests per second allowed per client IP on public endpoints.
	// Zero disables rate limiting.
	PublicRateLimit float64
	PublicRateBurst int
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints: health, metrics, the read-only catalog, the
	// contact form and the assistant job queue.
	r.Group(func(public chi.Router) {
		if cfg.PublicRateLimit > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.PublicRateLimit, cfg.PublicRateBurst))
		}

		public.Get("/healthz", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.DoctorsHandler != nil {
			public.Route("/api/doctors", func(r chi.Router) {
				r.Get("/", cfg.DoctorsHandler.List)
				r.Get("/{id}", cfg.DoctorsHandler.Get)
				r.Get("/{id}/image", cfg.DoctorsHandler.Image)
			})
		}

		if cfg.ArticlesHandler != nil {
			public.Route("/api/articles", func(r chi.Router) {
				r.Get("/", cfg.ArticlesHandler.List)
				r.Get("/{id}", cfg.ArticlesHandler.Get)
			})
		}

		if cfg.ContactsHandler != nil {
			public.Post("/api/contacts", cfg.ContactsHandler.Create)
		}

		if cfg.BookingsHandler != nil {
			public.Get("/api/bookings/available-slots/{doctorID}/{date}", cfg.BookingsHandler.Availability)
		}

		if cfg.ChatHandler != nil {
			public.Route("/api/chat", func(r chi.Router) {
				r.Post("/start", cfg.ChatHandler.Start)
				r.Post("/message", cfg.ChatHandler.Message)
				r.Get("/jobs/{id}", cfg.ChatHandler.Job)
			})
		}
	})

	// Authenticated patient endpoints.
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.RequireAuth(cfg.JWTSecret))

		if cfg.BookingsHandler != nil {
			authed.Route("/api/bookings", func(r chi.Router) {
				r.Post("/", cfg.BookingsHandler.Create)
				r.Get("/user", cfg.BookingsHandler.MyBookings)
				r.Get("/{id}", cfg.BookingsHandler.Get)
				r.Get("/{id}/receipt", cfg.BookingsHandler.Receipt)
				r.Put("/{id}/cancel", cfg.BookingsHandler.Cancel)
				r.Put("/{id}/payment-status", cfg.BookingsHandler.UpdatePayment)

				// Staff-only lifecycle and admin projections.
				r.With(httpmiddleware.RequireStaff).Put("/{id}/status", cfg.BookingsHandler.UpdateStatus)
				r.With(httpmiddleware.RequireStaff).Get("/admin/doctor/{doctorID}", cfg.BookingsHandler.ListByDoctor)
				r.With(httpmiddleware.RequireAdmin).Get("/admin/all", cfg.BookingsHandler.ListAll)
				r.With(httpmiddleware.RequireAdmin).Delete("/admin/{id}", cfg.BookingsHandler.Delete)
			})
		}

		if cfg.MessagesHandler != nil {
			authed.Route("/api/messages", func(r chi.Router) {
				r.Post("/", cfg.MessagesHandler.Send)
				r.Get("/inbox", cfg.MessagesHandler.Inbox)
				r.Get("/with/{partnerID}", cfg.MessagesHandler.Conversation)
			})
		}

		// Admin endpoints.
		authed.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)

			if cfg.AdminDashboard != nil {
				admin.Get("/dashboard", cfg.AdminDashboard.GetDashboardOverview)
				admin.Get("/dashboard/trend", cfg.AdminDashboard.GetBookingTrend)
			}

			if cfg.DoctorsHandler != nil {
				admin.Route("/doctors", func(r chi.Router) {
					r.Post("/", cfg.DoctorsHandler.Create)
					r.Put("/{id}", cfg.DoctorsHandler.Update)
					r.Delete("/{id}", cfg.DoctorsHandler.Delete)
					r.Post("/{id}/image", cfg.DoctorsHandler.UploadImage)
				})
			}

			if cfg.ArticlesHandler != nil {
				admin.Route("/articles", func(r chi.Router) {
					r.Post("/", cfg.ArticlesHandler.Create)
					r.Put("/{id}", cfg.ArticlesHandler.Update)
					r.Delete("/{id}", cfg.ArticlesHandler.Delete)
				})
			}

			if cfg.ContactsHandler != nil {
				admin.Get("/contacts", cfg.ContactsHandler.List)
				admin.Delete("/contacts/{id}", cfg.ContactsHandler.Delete)
			}

			if cfg.UsersHandler != nil {
				admin.Route("/users", func(r chi.Router) {
					r.Get("/", cfg.UsersHandler.List)
					r.Patch("/{id}/role", cfg.UsersHandler.UpdateRole)
					r.Delete("/{id}", cfg.UsersHandler.Delete)
				})
			}
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
