package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/rangemedical/clinic-ops/internal/http/middleware"
	"github.com/rangemedical/clinic-ops/internal/messaging"
	"github.com/rangemedical/clinic-ops/internal/patients"
	"github.com/rangemedical/clinic-ops/internal/portal"
	"github.com/rangemedical/clinic-ops/internal/pos"
	"github.com/rangemedical/clinic-ops/internal/protocols"
	"github.com/rangemedical/clinic-ops/internal/purchases"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	PatientsHandler  *patients.Handler
	ProtocolsHandler *protocols.Handler
	TrackerHandler   *protocols.TrackerHandler
	PurchasesHandler *purchases.Handler
	PortalHandler    *portal.Handler
	MessagingHandler *messaging.Handler
	ServicesHandler  *pos.Handler

	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests/sec and burst for the public token endpoints. Zero
	// disables rate limiting.
	PublicRateLimit float64
	PublicRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
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

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Token-keyed patient surfaces. Access tokens are unguessable, so
	// these carry no auth, only rate limiting.
	r.Group(func(public chi.Router) {
		if cfg.PublicRateLimit > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.PublicRateLimit, cfg.PublicRateBurst))
		}
		if cfg.PortalHandler != nil {
			public.Get("/portal/{token}", cfg.PortalHandler.Get)
		}
		if cfg.TrackerHandler != nil {
			public.Get("/track/{token}", cfg.TrackerHandler.Get)
			public.Post("/track/{token}/days", cfg.TrackerHandler.ToggleDay)
		}
	})

	// Admin endpoints behind JWT auth.
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

		if cfg.PatientsHandler != nil {
			admin.Route("/patients", func(r chi.Router) {
				r.Get("/", cfg.PatientsHandler.List)
				r.Post("/", cfg.PatientsHandler.Create)
				r.Post("/merge", cfg.PatientsHandler.Merge)
				r.Get("/{id}", cfg.PatientsHandler.Get)
				r.Put("/{id}", cfg.PatientsHandler.Update)
			})
		}

		if cfg.ProtocolsHandler != nil {
			admin.Route("/protocols", func(r chi.Router) {
				r.Get("/", cfg.ProtocolsHandler.List)
				r.Post("/", cfg.ProtocolsHandler.Create)
				r.Get("/{id}", cfg.ProtocolsHandler.Get)
				r.Put("/{id}", cfg.ProtocolsHandler.Update)
				r.Post("/{id}/complete", cfg.ProtocolsHandler.Complete)
			})
		}

		if cfg.PurchasesHandler != nil {
			admin.Route("/purchases", func(r chi.Router) {
				r.Get("/", cfg.PurchasesHandler.List)
				r.Get("/review", cfg.PurchasesHandler.ReviewQueue)
				r.Post("/{id}/approve", cfg.PurchasesHandler.Approve)
				r.Post("/{id}/dismiss", cfg.PurchasesHandler.Dismiss)
				r.Put("/{id}/amount", cfg.PurchasesHandler.UpdateAmount)
			})
		}

		if cfg.MessagingHandler != nil {
			admin.Get("/conversations/{contactID}", cfg.MessagingHandler.Conversation)
			admin.Post("/messages/send", cfg.MessagingHandler.Send)
		}

		if cfg.ServicesHandler != nil {
			admin.Get("/services", cfg.ServicesHandler.List)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
