package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dealmatch/internal/logging"
	"dealmatch/internal/ports"
)

// Services groups the use cases the API exposes.
type Services struct {
	Onboarding ports.Onboarding
	Profiles   ports.Profiles
	Discovery  ports.Discovery
	Analysis   ports.Analysis
	Dashboard  ports.Dashboard
	Health     ports.Pinger
}

type Server struct {
	svc Services
	log *slog.Logger
}

func New(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{svc: svc, log: logger}
}

// Routes returns the chi router serving the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.log))

	r.Get("/healthz", s.getHealthz)
	r.Get("/schema/{role}", s.getSchema)

	r.Route("/onboarding", func(r chi.Router) {
		r.Post("/", s.postOnboarding)
		r.Get("/{id}", s.getOnboarding)
		r.Put("/{id}/answers/{fieldID}", s.putAnswer)
		r.Post("/{id}/advance", s.postAdvance)
		r.Post("/{id}/back", s.postBack)
	})

	r.Get("/profiles", s.listProfiles)
	r.Get("/profiles/{id}", s.getProfile)

	r.Route("/discovery/{viewerID}", func(r chi.Router) {
		r.Get("/current", s.getCurrent)
		r.Get("/stack", s.getStack)
		r.Post("/swipe", s.postSwipe)
	})

	r.Get("/matches", s.listMatches)
	r.Patch("/matches/{id}", s.patchMatch)
	r.Get("/dashboard/{viewerID}", s.getDashboard)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", s.postDocument)
		r.Get("/", s.listDocuments)
		r.Get("/{id}", s.getDocument)
		r.Post("/{id}/complete", s.postComplete)
		r.Post("/{id}/fail", s.postFail)
	})
	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}
	status := http.StatusOK
	if s.svc.Health != nil {
		if err := s.svc.Health.Ping(r.Context()); err != nil {
			s.log.Error("health probe failed", "error", err)
			status = http.StatusServiceUnavailable
			payload["status"] = "degraded"
			payload["error"] = err.Error()
		}
	}
	respondJSON(w, status, payload)
}
