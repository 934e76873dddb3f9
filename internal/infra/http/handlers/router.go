package handlers

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/quizlead-crm/internal/infra/http/middleware"
)

type Router struct {
	Public      *PublicQuizHandler
	Auth        *AuthHandler
	Quizzes     *QuizHandler
	Leads       *LeadHandler
	Users       *UserHandler
	Templates   *TemplateHandler
	Settings    *SettingsHandler
	Remarketing *RemarketingHandler
	Dashboard   *DashboardHandler
	WhatsApp    *WhatsAppHandler
	Webhook     *WebhookHandler
	Health      *HealthHandler

	Tokens         middleware.TokenParser
	AllowedOrigins []string

	// PublicLimit is the number of public requests per IP per minute.
	PublicLimit int

	// TrustedProxies may set the client address through X-Forwarded-For or X-Real-IP.
	TrustedProxies []netip.Prefix
}

func (rt *Router) Handler() http.Handler {
	limit := rt.PublicLimit
	if limit <= 0 {
		limit = 30
	}
	origins := rt.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	publicLimiter := NewRateLimiter(limit, time.Minute)
	authLimiter := NewRateLimiter(10, time.Minute)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.TrustedRealIP(rt.TrustedProxies))
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", rt.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/webhooks/evolution", rt.Webhook.Handle)

	r.Route("/q/{slug}", func(r chi.Router) {
		r.Use(publicLimiter.Middleware)
		r.Get("/", rt.Public.GetQuiz)
		r.Post("/submit", rt.Public.Submit)
		r.Post("/steps/{index}/validate", rt.Public.ValidateStep)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/admin/login", rt.Auth.AdminLogin)
		r.Post("/otp/request", rt.Auth.RequestOTP)
		r.Post("/otp/verify", rt.Auth.VerifyOTP)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.Tokens))

		r.Get("/dashboard", rt.Dashboard.Handle)
		r.Get("/whatsapp/status", rt.WhatsApp.Status)
		r.Post("/whatsapp/connect", rt.WhatsApp.Connect)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", rt.Leads.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.Leads.Get)
				r.Put("/status", rt.Leads.Transition)
				r.Post("/reopen", rt.Leads.Reopen)
				r.Put("/notes", rt.Leads.UpdateNotes)
				r.With(middleware.RequireAdmin).Put("/assign", rt.Leads.Assign)
				r.Get("/history", rt.Leads.History)
				r.Get("/messages", rt.Leads.ListMessages)
				r.Post("/messages", rt.Leads.SendMessage)
			})
		})

		r.Get("/users/{id}", rt.Users.Get)
		r.Put("/users/{id}/whatsapp-status", rt.Users.SetWhatsAppStatus)
		r.Get("/templates", rt.Templates.List)
		r.Get("/templates/default", rt.Templates.Default)
		r.Get("/templates/{id}", rt.Templates.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Route("/quizzes", func(r chi.Router) {
				r.Get("/", rt.Quizzes.List)
				r.Post("/", rt.Quizzes.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", rt.Quizzes.Get)
					r.Put("/", rt.Quizzes.Update)
					r.Delete("/", rt.Quizzes.Delete)
					r.Put("/publish", rt.Quizzes.Publish)
					r.Post("/steps", rt.Quizzes.AddStep)
					r.Put("/steps/reorder", rt.Quizzes.ReorderSteps)
					r.Put("/steps/{stepID}", rt.Quizzes.UpdateStep)
					r.Delete("/steps/{stepID}", rt.Quizzes.DeleteStep)
					r.Post("/steps/{stepID}/questions", rt.Quizzes.AddQuestion)
					r.Put("/steps/{stepID}/questions/{questionID}", rt.Quizzes.UpdateQuestion)
					r.Delete("/steps/{stepID}/questions/{questionID}", rt.Quizzes.DeleteQuestion)
				})
			})

			r.Get("/users", rt.Users.List)
			r.Post("/users", rt.Users.Create)
			r.Put("/users/{id}", rt.Users.Update)
			r.Delete("/users/{id}", rt.Users.Delete)

			r.Post("/templates", rt.Templates.Create)
			r.Put("/templates/{id}", rt.Templates.Update)
			r.Delete("/templates/{id}", rt.Templates.Delete)

			r.Get("/settings", rt.Settings.Get)
			r.Put("/settings", rt.Settings.Update)

			r.Get("/remarketing-rules", rt.Remarketing.List)
			r.Post("/remarketing-rules", rt.Remarketing.Create)
			r.Put("/remarketing-rules/{id}", rt.Remarketing.Update)
			r.Delete("/remarketing-rules/{id}", rt.Remarketing.Delete)
		})
	})

	return r
}
