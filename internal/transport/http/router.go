// Package http exposes the assessment over REST and a websocket.
package http

import (
	"context"
	"net/http"
	"time"

	"disciple-assessment-service/internal/app"
	"disciple-assessment-service/internal/auth"
	"disciple-assessment-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Session is the identity resolved from a bearer token.
type Session = auth.Session

// Authenticator is the auth collaborator seen by the transport.
type Authenticator interface {
	SignUp(ctx context.Context, email, password, fullName string) (domain.User, error)
	SignIn(ctx context.Context, email, password string) (auth.Session, error)
	SignOut(ctx context.Context, token string) error
	Current(ctx context.Context, token string) (auth.Session, error)
}

// HealthChecks reports which backing services are configured.
type HealthChecks struct {
	Postgres bool `json:"postgres_configured"`
	Redis    bool `json:"redis_configured"`
	Events   bool `json:"events_configured"`
}

// Deps are the collaborators the router serves.
type Deps struct {
	Assessments *app.AssessmentService
	Profiles    *app.ProfileService
	Auth        Authenticator
	Logger      *zap.Logger
	CORSOrigins []string
	Checks      HealthChecks
}

type handlers struct {
	assessments *app.AssessmentService
	profiles    *app.ProfileService
	auth        Authenticator
	logger      *zap.Logger
	checks      HealthChecks
	now         func() time.Time
}

// NewRouter builds the HTTP handler tree.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{
		assessments: deps.Assessments,
		profiles:    deps.Profiles,
		auth:        deps.Auth,
		logger:      logger,
		checks:      deps.Checks,
		now:         time.Now,
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Get("/ws", NewWSHandler(deps.Assessments, logger).ServeWS)

		r.Route("/api", func(r chi.Router) {
			r.Get("/bank", h.getBank)
			r.Get("/bank/sections", h.getSections)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", h.signUp)
				r.Post("/signin", h.signIn)
				r.Post("/signout", h.signOut)
				r.Get("/session", h.session)
			})

			r.Route("/attempts", func(r chi.Router) {
				r.Post("/", h.startAttempt)
				r.Route("/{attemptID}", func(r chi.Router) {
					r.Get("/", h.getAttempt)
					r.Get("/pages/{n}", h.getPage)
					r.Put("/answers/{itemID}", h.putAnswer)
					r.Post("/restart", h.restartAttempt)
					r.Post("/submit", h.submitAttempt)
				})
			})

			r.Get("/results/transient/{key}", h.transientResult)
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/results", h.listResults)
				r.Get("/results/latest", h.latestResult)
				r.Get("/results/compare", h.compareResults)
				r.Get("/results/{resultID}", h.getResult)

				r.Get("/profile", h.getProfile)
				r.Patch("/profile", h.updateProfile)
				r.Get("/profile/stats", h.profileStats)
			})
		})
	})
	return r
}

type healthResponse struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Timestamp time.Time    `json:"timestamp"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Checks: h.checks, Timestamp: h.now().UTC()})
}
