// cmd/server/routes.go
package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/valpere/RecipeScrapexter/internal/config"
	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/monitoring"
	"github.com/valpere/RecipeScrapexter/internal/scraper"
	"github.com/valpere/RecipeScrapexter/internal/utils"
	"github.com/valpere/RecipeScrapexter/pkg/api"
	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// server holds the handlers' dependencies. Auth and rate limit settings can
// be swapped at runtime by the config watcher.
type server struct {
	client   *api.Client
	metrics  *monitoring.Metrics
	health   *monitoring.HealthManager
	logger   utils.Logger
	settings atomic.Pointer[config.ServerConfig]
	limiter  atomic.Pointer[rate.Limiter]
}

func newServer(client *api.Client, cfg config.ServerConfig, metrics *monitoring.Metrics, health *monitoring.HealthManager, logger utils.Logger) *server {
	s := &server{client: client, metrics: metrics, health: health, logger: logger}
	s.apply(cfg)
	return s
}

// apply installs new auth and rate limit settings
func (s *server) apply(cfg config.ServerConfig) {
	s.settings.Store(&cfg)
	if cfg.RateLimit <= 0 {
		s.limiter.Store(nil)
		return
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	s.limiter.Store(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst))
}

func setupRoutes(s *server) http.Handler {
	r := mux.NewRouter()

	r.Handle("/health", s.health.HealthHandler()).Methods(http.MethodGet)
	r.Handle(s.settings.Load().MetricsPath, s.metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(s.authMiddleware, s.rateLimitMiddleware)
	v1.Handle("/import", s.metrics.InstrumentHandler("/api/v1/import", http.HandlerFunc(s.importHandler))).Methods(http.MethodPost)
	v1.Handle("/parse", s.metrics.InstrumentHandler("/api/v1/parse", http.HandlerFunc(s.parseHandler))).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, api.Failure(fmt.Errorf("no route for %s %s", r.Method, r.URL.Path)))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, api.Failure(fmt.Errorf("method %s not allowed", r.Method)))
	})
	return r
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := s.settings.Load().APIKey
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-API-Key")
		if auth := r.Header.Get("Authorization"); token == "" && auth != "" {
			if !strings.HasPrefix(auth, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, api.Failure(errors.New("invalid authorization format")))
				return
			}
			token = strings.TrimPrefix(auth, "Bearer ")
		}
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, api.Failure(errors.New("unauthorized")))
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			writeJSON(w, http.StatusUnauthorized, api.Failure(errors.New("invalid API key")))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter := s.limiter.Load(); limiter != nil && !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, api.Failure(errors.New("rate limit exceeded")))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// importHandler fetches the posted URL and returns the recipe envelope.
// With ?store=true the recipe is also saved.
func (s *server) importHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ImportRequest
	if status, err := s.decode(w, r, &req); err != nil {
		writeJSON(w, status, api.Failure(err))
		return
	}

	result, err := s.client.Import(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("X-Recipe-Strategy", string(result.Strategy))
	if result.FromCache {
		w.Header().Set("X-Recipe-Cache", "hit")
	} else {
		w.Header().Set("X-Recipe-Cache", "miss")
	}

	if r.URL.Query().Get("store") == "true" {
		stored, err := s.client.Save(r.Context(), result.Recipe)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("X-Recipe-ID", stored.ID)
		w.Header().Set("X-Recipe-Slug", stored.Slug)
	}
	writeJSON(w, http.StatusOK, api.Success(result.Recipe))
}

// parseHandler extracts a recipe from posted markup
func (s *server) parseHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ParseRequest
	if status, err := s.decode(w, r, &req); err != nil {
		writeJSON(w, status, api.Failure(err))
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		writeJSON(w, http.StatusBadRequest, api.Failure(errors.New("html is required")))
		return
	}
	if req.SourceURL != "" {
		if _, err := scraper.ValidateURL(req.SourceURL); err != nil {
			writeJSON(w, http.StatusBadRequest, api.Failure(err))
			return
		}
	}

	result, err := s.client.Parse(req.HTML, req.SourceURL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("X-Recipe-Strategy", string(result.Strategy))
	writeJSON(w, http.StatusOK, api.Success(result.Recipe))
}

// decode reads a JSON body capped at the configured size
func (s *server) decode(w http.ResponseWriter, r *http.Request, v interface{}) (int, error) {
	if limit := s.settings.Load().MaxBodyBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err)
	}
	return http.StatusOK, nil
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := s.logger.WithFields(map[string]interface{}{"path": r.URL.Path, "status": status})
	if status >= http.StatusInternalServerError {
		log.Warnf("request failed: %v", err)
	} else {
		log.Debugf("request rejected: %v", err)
	}
	writeJSON(w, status, api.Failure(err))
}

// statusFor maps pipeline errors onto HTTP statuses
func statusFor(err error) int {
	var fe *apperrors.FetchError
	var ve types.ValidationErrors
	var single *types.ValidationError

	switch {
	case errors.Is(err, apperrors.ErrInvalidURL):
		return http.StatusBadRequest
	case apperrors.IsExtractionError(err), errors.As(err, &ve), errors.As(err, &single):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fe):
		return http.StatusBadGateway
	case errors.Is(err, api.ErrNoStore):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.Encode(v)
}
