// Package chi exposes the detection engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/duplicheck/internal/config"
	"github.com/kailas-cloud/duplicheck/internal/domain"
	"github.com/kailas-cloud/duplicheck/internal/domain/geometry"
	"github.com/kailas-cloud/duplicheck/internal/logger"
	"github.com/kailas-cloud/duplicheck/internal/repository/memsource"
	"github.com/kailas-cloud/duplicheck/internal/usecase/detect"
	"github.com/kailas-cloud/duplicheck/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server handles the duplicheck HTTP API. Each detect request carries its
// own dataset, so a fresh engine is assembled per request around an
// in-memory source.
type Server struct {
	cfg           config.Config
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(cfg config.Config, log *zap.Logger) *Server {
	s := &Server{cfg: cfg, logger: log}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidParams, http.StatusBadRequest, "invalid_params"),
		sentinelHandler(domain.ErrNoCompareFields, http.StatusBadRequest, "no_compare_fields"),
		sentinelHandler(domain.ErrInvalidSource, http.StatusBadRequest, "invalid_source"),
		sentinelHandler(domain.ErrSourceRead, http.StatusUnprocessableEntity, "source_read_failed"),
	}
	return s
}

// Register mounts the API routes.
func (s *Server) Register(r chirouter.Router) {
	r.Post("/v1/detect", s.Detect)
	r.Get("/healthz", s.Health)
	r.Get("/version", s.Version)
	r.Get("/metrics", s.Metrics)
}

// Detect handles POST /v1/detect.
func (s *Server) Detect(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, int64(s.cfg.HTTP.MaxBodyBytes))

	var req DetectRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}
	if req.Features == nil || len(req.Features.Features) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "features collection is required")
		return
	}
	if max := s.cfg.Detection.MaxFeatures; len(req.Features.Features) > max {
		writeError(w, http.StatusRequestEntityTooLarge, "too_many_features",
			"dataset exceeds the per-request feature limit")
		return
	}

	source := memsource.New()
	for i, gf := range req.Features.Features {
		f, err := featureFromGeoJSON(i, gf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		if err := source.Add(f); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	runID := uuid.NewString()
	runLog := logger.WithRun(s.logger, runID)

	params := s.buildParams(req.Options)
	svc := detect.New(source, nil, detect.ProgressFunc(func(percent int, message string) {
		runLog.Debug("detection progress", zap.Int("percent", percent), zap.String("message", message))
	}), runLog)

	res, err := svc.Detect(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	groups := make([]GroupDTO, len(res.Groups))
	for i, g := range res.Groups {
		groups[i] = groupToDTO(g)
	}
	writeJSON(w, http.StatusOK, DetectResponse{
		RunID:  runID,
		Groups: groups,
		Stats:  statsToDTO(res.Stats),
	})
}

// buildParams merges request options over the configured detection defaults.
func (s *Server) buildParams(opts DetectOptions) detect.Params {
	d := s.cfg.Detection

	params := detect.Params{
		Mode:                detect.Mode(opts.Mode),
		Tolerance:           d.Tolerance,
		CompareMethod:       geometry.Method(d.CompareMethod),
		DecomposeMultipart:  d.DecomposeMultipart,
		Fields:              opts.Fields,
		NormalizeAttributes: true,
		IgnoreNull:          opts.IgnoreNull,
		CaseSensitive:       opts.CaseSensitive,
		FuzzyThreshold:      opts.FuzzyThreshold,
		SampleMode:          opts.SampleMode,
		SampleSize:          d.SampleSize,
		DiskThreshold:       d.DiskThreshold,
	}
	if opts.Tolerance != nil {
		params.Tolerance = *opts.Tolerance
	}
	if opts.CompareMethod != "" {
		params.CompareMethod = geometry.Method(opts.CompareMethod)
	}
	if opts.DecomposeMultipart != nil {
		params.DecomposeMultipart = *opts.DecomposeMultipart
	}
	if opts.Normalize != nil {
		params.NormalizeAttributes = *opts.Normalize
	}
	if opts.SampleSize > 0 {
		params.SampleSize = opts.SampleSize
	}
	if opts.Priority != nil {
		rules := opts.Priority.Rules()
		params.PriorityRules = &rules
	}
	return params
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Version handles GET /version.
func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("unhandled detection error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}
