// Package api provides HTTP handlers for the data-quality REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dataprobe/internal/domain"
	"dataprobe/internal/middleware"
	"dataprobe/internal/service"
)

// SuiteRunner triggers suite executions.
type SuiteRunner interface {
	RunSuite(ctx context.Context, suite *domain.TestSuite) (*domain.SuiteRun, error)
}

var _ SuiteRunner = (*service.SuiteService)(nil)

// Handler serves the test-suite API.
type Handler struct {
	suites  map[string]domain.TestSuite
	runner  SuiteRunner
	results domain.ResultRepository
	logger  *slog.Logger
}

// NewHandler creates a Handler over the loaded suite definitions.
func NewHandler(suites []domain.TestSuite, runner SuiteRunner, results domain.ResultRepository, logger *slog.Logger) *Handler {
	byName := make(map[string]domain.TestSuite, len(suites))
	for _, s := range suites {
		byName[s.Name] = s
	}
	return &Handler{suites: byName, runner: runner, results: results, logger: logger}
}

// RouterConfig controls the middleware stack.
type RouterConfig struct {
	JWTSecret          string // empty disables auth
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

// Router builds the chi router with the full middleware stack.
func (h *Handler) Router(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		}))
	}
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}))
	}

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.Auth([]byte(cfg.JWTSecret)))
		}
		r.Get("/suites", h.ListSuites)
		r.Post("/suites/{name}/runs", h.TriggerRun)
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{id}", h.GetRun)
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type suiteSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
	TestCases   int    `json:"testCases"`
}

func (h *Handler) ListSuites(w http.ResponseWriter, _ *http.Request) {
	out := make([]suiteSummary, 0, len(h.suites))
	for _, s := range h.suites {
		out = append(out, suiteSummary{
			Name:        s.Name,
			Description: s.Description,
			Schedule:    s.Schedule,
			TestCases:   len(s.Cases),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	suite, ok := h.suites[name]
	if !ok {
		writeError(w, domain.ErrNotFound("suite %s not found", name))
		return
	}

	run, err := h.runner.RunSuite(r.Context(), &suite)
	if err != nil {
		h.logger.Warn("trigger run failed", "suite", name, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, runToAPI(run, true))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := domain.RunFilter{SuiteName: r.URL.Query().Get("suite")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, domain.ErrValidation("limit must be a positive integer"))
			return
		}
		filter.Limit = n
	}

	runs, err := h.results.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]apiRun, 0, len(runs))
	for i := range runs {
		out = append(out, runToAPI(&runs[i], false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.results.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runToAPI(run, true))
}

// --- wire types ---

type apiResultValue struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

type apiCaseResult struct {
	TestCase  string           `json:"testCase"`
	Status    string           `json:"status"`
	Result    string           `json:"result"`
	Timestamp time.Time        `json:"timestamp"`
	Values    []apiResultValue `json:"testResultValues,omitempty"`
}

type apiRun struct {
	ID         string          `json:"id"`
	SuiteName  string          `json:"suiteName"`
	Status     string          `json:"status"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
	Results    []apiCaseResult `json:"results,omitempty"`
}

func runToAPI(run *domain.SuiteRun, includeResults bool) apiRun {
	out := apiRun{
		ID:        run.ID,
		SuiteName: run.SuiteName,
		Status:    string(run.Status),
		StartedAt: run.StartedAt,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		out.FinishedAt = &finished
	}
	if !includeResults {
		return out
	}
	for _, cr := range run.Results {
		values := make([]apiResultValue, 0, len(cr.Result.Values))
		for _, v := range cr.Result.Values {
			values = append(values, apiResultValue{Name: v.Name, Value: v.Value})
		}
		out.Results = append(out.Results, apiCaseResult{
			TestCase:  cr.TestCase,
			Status:    string(cr.Result.Status),
			Result:    cr.Result.Result,
			Timestamp: cr.Result.Timestamp,
			Values:    values,
		})
	}
	return out
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var (
		nf *domain.NotFoundError
		ve *domain.ValidationError
		ce *domain.ConflictError
	)
	switch {
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.As(err, &ce):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]interface{}{"code": status, "message": err.Error()})
}
