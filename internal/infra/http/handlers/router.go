package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/xavierca1/leaddesk/internal/infra/auth"
	"github.com/xavierca1/leaddesk/internal/infra/http/middleware"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

type RouterConfig struct {
	Lead          *LeadHandler
	Notifications *NotificationHandler
	Settings      *SettingsHandler
	Auth          *AuthHandler
	Health        *HealthHandler
	Realtime      *RealtimeHandler

	Tokens           middleware.TokenValidator
	SettingsProvider usecase.SettingsProvider
	RateLimit        int
	RateWindow       time.Duration
	CORSOrigins      []string
	// TrustProxy: o serviço roda atrás de um proxy reverso confiável
	TrustProxy bool
}

func NewRouter(c RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if c.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   c.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", c.Health.Handle)
	r.Handle("/metrics", middleware.MetricsHandler())
	r.Post("/auth/login", c.Auth.Login)
	r.Get("/ws", c.Realtime.ServeWS)

	r.With(middleware.CaptureRateLimit(c.SettingsProvider, c.RateLimit, c.RateWindow, c.TrustProxy)).
		Post("/leads/capture", c.Lead.CaptureLead)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(c.Tokens))
		r.Use(middleware.RequireRole(auth.RoleOperator))

		r.Get("/leads/{id}", c.Lead.GetLead)
		r.Put("/leads/{id}", c.Lead.UpdateLead)
		r.Post("/leads/{id}/notify/{channel}", c.Lead.NotifyChannel)
		r.Post("/leads/{id}/reply/whatsapp", c.Lead.ReplyWhatsApp)
		r.Post("/leads/{id}/reply/email", c.Lead.ReplyEmail)
		r.Get("/leads/{id}/notifications", c.Lead.LeadNotifications)
		r.Get("/notifications", c.Notifications.ListRecent)

		r.Get("/settings", c.Settings.Get)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Put("/settings", c.Settings.Update)
	})

	return r
}
