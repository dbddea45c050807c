package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/bemquerer-hub/internal/infra/http/handlers"
	"github.com/xavierca1/bemquerer-hub/internal/infra/http/middleware"
)

type routes struct {
	Auth        *middleware.Auth
	Health      *handlers.HealthHandler
	Login       *handlers.AuthHandler
	CRM         *handlers.CRMHandler
	Chat        *handlers.ChatHandler
	Integration *handlers.IntegrationHandler
	Invite      *handlers.InviteHandler
	Module      *handlers.ModuleHandler
	Dashboard   *handlers.DashboardHandler
	Knowledge   *handlers.KnowledgeHandler
	Convo       *handlers.ConversationHandler
	Webhook     *handlers.WebhookHandler
	AppURL      string
}

func newRouter(h routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.AppURL, "http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(h.Auth.Identify)

	// Públicas
	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/login", h.Login.Login)
	r.Post("/webhooks/whatsapp", h.Webhook.Handle)

	r.Route("/crm", func(r chi.Router) {
		r.Get("/deals", h.CRM.ListDeals)
		r.Put("/deals/{id}/status", h.CRM.UpdateStatus)
		r.Get("/funnel", h.CRM.Funnel)
	})

	r.Route("/integrations", func(r chi.Router) {
		r.Post("/clinicorp/configure", h.Integration.ConfigureClinicorp)
		r.Post("/clinicorp/availability", h.Integration.Availability)
		r.Post("/clinicorp/appointments", h.Integration.Schedule)
		r.Post("/whatsapp/connect", h.Integration.ConnectWhatsApp)
		r.Get("/whatsapp/status", h.Integration.WhatsAppStatus)
		r.Post("/whatsapp/disconnect", h.Integration.DisconnectWhatsApp)
	})

	r.Post("/chat/message", h.Chat.Send)

	// Validar convite acontece antes do cadastro, sem sessão.
	r.Post("/invites/validate", h.Invite.Validate)

	// Autenticadas
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Require)

		r.Get("/chat/list", h.Chat.List)
		r.Get("/chat/{chatId}/messages", h.Chat.Messages)

		r.Route("/invites", func(r chi.Router) {
			r.Get("/", h.Invite.List)
			r.Post("/email", h.Invite.CreateEmail)
			r.Post("/code", h.Invite.CreateCode)
			r.Post("/{id}/cancel", h.Invite.Cancel)
			r.Post("/{id}/use", h.Invite.MarkUsed)
		})

		r.Route("/modules", func(r chi.Router) {
			r.Get("/", h.Module.List)
			r.Post("/activate", h.Module.Activate)
			r.Post("/initialize", h.Module.Initialize)
			r.Put("/{modulo}", h.Module.Toggle)
			r.Put("/{modulo}/config", h.Module.UpdateConfig)
		})

		r.Get("/dashboard/metrics", h.Dashboard.Metrics)

		r.Route("/knowledge", func(r chi.Router) {
			r.Post("/documents/upload", h.Knowledge.Upload)
			r.Post("/documents/text", h.Knowledge.CreateText)
			r.Get("/documents", h.Knowledge.List)
			r.Delete("/documents/{id}", h.Knowledge.Delete)
			r.Post("/search", h.Knowledge.Search)
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/chat", h.Convo.Chat)
			r.Get("/threads", h.Convo.Threads)
			r.Get("/threads/{id}/messages", h.Convo.Messages)
			r.Delete("/threads/{id}", h.Convo.Archive)
		})
	})

	return r
}
