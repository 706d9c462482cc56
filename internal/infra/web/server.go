package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	red "diet-planner-api/internal/infra/redis"
	"diet-planner-api/internal/usecase"
)

// Server exposes the diet generation API: submission, status polling,
// plan history, and profile upkeep.
type Server struct {
	dietUC    *usecase.DietUseCase
	profileUC *usecase.ProfileUseCase
	limiter   *red.RateLimiter
	apiKey    string
	rateEvery time.Duration
	log       *zerolog.Logger
}

func NewServer(
	dietUC *usecase.DietUseCase,
	profileUC *usecase.ProfileUseCase,
	limiter *red.RateLimiter,
	apiKey string,
	rateEvery time.Duration,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		dietUC:    dietUC,
		profileUC: profileUC,
		limiter:   limiter,
		apiKey:    apiKey,
		rateEvery: rateEvery,
		log:       logger,
	}
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/diet/generate", s.handleGenerate)
		r.Get("/diet/result", s.handleResult)
		r.Get("/diet/plans", s.handlePlans)
		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)
	})

	return r
}

// authMiddleware provides simple Bearer token authentication for the API.
// Caller identity rides in the X-User-ID header; full authentication is
// owned by an upstream gateway.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}
		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if strings.TrimSpace(r.Header.Get("X-User-ID")) == "" {
			http.Error(w, "Missing X-User-ID", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}
