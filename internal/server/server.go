package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dtnitsch/linkmeta/internal/classify"
	"github.com/dtnitsch/linkmeta/internal/common"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/registry"
	"github.com/dtnitsch/linkmeta/pkg/transform"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 5 << 20

// Server exposes a registry over HTTP.
type Server struct {
	registry *registry.Registry
	gatherer prometheus.Gatherer
	log      *slog.Logger
	limiter  *rate.Limiter
	timeout  time.Duration
}

type Option func(*Server)

// WithRateLimit rejects requests above rps with 429. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithTimeout sets the fetch timeout used for extract requests.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New returns the API handler. gatherer backs /metrics and may be nil.
func New(reg *registry.Registry, gatherer prometheus.Gatherer, log *slog.Logger, opts ...Option) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{registry: reg, gatherer: gatherer, log: log.With("component", "server")}
	for _, opt := range opts {
		opt(s)
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID, s.logRequests, s.rateLimit)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/classify", s.classify).Methods(http.MethodGet)
	api.HandleFunc("/extract", s.extract).Methods(http.MethodPost)
	api.HandleFunc("/cache", s.clearCache).Methods(http.MethodDelete)
	api.HandleFunc("/cache/clean", s.cleanCache).Methods(http.MethodPost)
	api.HandleFunc("/cache/stats", s.cacheStats).Methods(http.MethodGet)
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	writeJSON(w, http.StatusOK, classify.Describe(u))
}

type extractRequest struct {
	URL    string `json:"url"`
	HTML   string `json:"html,omitempty"`
	Cache  bool   `json:"cache"`
	Legacy bool   `json:"legacy"`
	Fields string `json:"fields,omitempty"`
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	opts := extractor.Options{URL: req.URL, HTML: req.HTML, Timeout: s.timeout}
	extract := s.registry.Extract
	if req.Cache {
		extract = s.registry.ExtractWithCache
	}
	res, err := extract(r.Context(), opts)
	if err != nil {
		if extractor.IsUnreachable(err) {
			writeError(w, http.StatusBadGateway, "url could not be reached")
			return
		}
		s.log.Error("extract failed", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	if req.Legacy {
		writeJSON(w, http.StatusOK, common.FilterFields(transform.ToLegacyShape(res.Metadata), req.Fields))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	if u := r.URL.Query().Get("url"); u != "" {
		s.registry.ClearCache(r.Context(), u)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	n := s.registry.ClearAllCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) cleanCache(w http.ResponseWriter, r *http.Request) {
	n := s.registry.CleanExpiredCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.CacheStats(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
