package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/restylehq/booking-platform/internal/http/handlers"
	httpmiddleware "github.com/restylehq/booking-platform/internal/http/middleware"
	"github.com/restylehq/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	SlotsHandler        *handlers.SlotsHandler
	CalendarsHandler    *handlers.CalendarsHandler
	StaffHandler        *handlers.StaffHandler
	ContactsHandler     *handlers.ContactsHandler
	AppointmentsHandler *handlers.AppointmentsHandler
	PaymentsHandler     *handlers.PaymentsHandler
	TokenHandler        *handlers.TokenHandler
	AdminSchedule       *handlers.AdminScheduleHandler

	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.SlotsHandler != nil {
			public.Mount("/working-slots", cfg.SlotsHandler.Routes())
		}
		public.Route("/v1", func(v1 chi.Router) {
			if cfg.SlotsHandler != nil {
				v1.Mount("/working-slots", cfg.SlotsHandler.Routes())
			}
			if cfg.CalendarsHandler != nil {
				v1.Mount("/calendars", cfg.CalendarsHandler.Routes())
			}
			if cfg.StaffHandler != nil {
				v1.Mount("/staff", cfg.StaffHandler.Routes())
			}
			if cfg.ContactsHandler != nil {
				v1.Mount("/contacts", cfg.ContactsHandler.Routes())
			}
			if cfg.AppointmentsHandler != nil {
				v1.Mount("/appointments", cfg.AppointmentsHandler.Routes())
				v1.Mount("/bookings", cfg.AppointmentsHandler.BookingsRoutes())
			}
			if cfg.PaymentsHandler != nil {
				v1.Mount("/payments", cfg.PaymentsHandler.Routes())
			}
			if cfg.TokenHandler != nil {
				v1.Mount("/auth", cfg.TokenHandler.Routes())
			}
		})
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" && cfg.AdminSchedule != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Mount("/schedule", cfg.AdminSchedule.Routes())
		})
	}

	return r
}
