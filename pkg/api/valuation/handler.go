// Package valuation exposes the valuation pipeline over HTTP.
package valuation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"dcf_valuation/pkg/core/analysis"
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/ratio"
	"dcf_valuation/pkg/core/statement"
	"dcf_valuation/pkg/core/store"
	"dcf_valuation/pkg/core/utils"
)

// Handler serves the valuation endpoints.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	repo         store.RunRepository
	defaults     assumption.Assumptions
}

// NewHandler creates a handler. repo may be nil, which disables persistence and the runs endpoints.
func NewHandler(repo store.RunRepository, defaults assumption.Assumptions) *Handler {
	return &Handler{
		orchestrator: pipeline.NewOrchestrator(repo),
		repo:         repo,
		defaults:     defaults,
	}
}

// Register mounts the routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)

	api := e.Group("/api/valuation")
	api.POST("/compute", h.Compute)
	api.POST("/ratios", h.Ratios)
	api.GET("/runs", h.ListRuns)
	api.GET("/runs/:id", h.GetRun)
}

// ComputeRequest is the body of POST /api/valuation/compute.
// Statements is a StatementSet document; Assumptions may be partial.
type ComputeRequest struct {
	Statements  json.RawMessage `json:"statements"`
	Assumptions json.RawMessage `json:"assumptions"`
	// Seed derives the base assumptions from the statements before applying overrides (default true).
	Seed *bool `json:"seed"`
}

// ComputeResponse wraps the pipeline result with the persisted run ID.
type ComputeResponse struct {
	RunID  string           `json:"run_id,omitempty"`
	Result *pipeline.Result `json:"result"`
}

// RatiosResponse is the body of POST /api/valuation/ratios.
type RatiosResponse struct {
	CompanyName       string                    `json:"company_name"`
	Ratios            *ratio.HistoricalRatios   `json:"ratios"`
	FinancialRatios   *analysis.CompanyAnalysis `json:"financial_ratios"`
	SeededAssumptions assumption.Assumptions    `json:"seeded_assumptions"`
}

// ErrorResponse is returned for every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health returns application health status
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Compute handles POST /api/valuation/compute
func (h *Handler) Compute(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
	}

	var req ComputeRequest
	if _, err := utils.SmartDecode(body, &req); err != nil {
		return fail(c, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
	}

	var set *statement.Set
	if len(req.Statements) > 0 && string(req.Statements) != "null" {
		set, err = statement.Load(req.Statements)
		if err != nil {
			return fail(c, statusFor(err), err)
		}
	}

	base := h.defaults
	if set != nil && (req.Seed == nil || *req.Seed) {
		base = pipeline.SeedAssumptions(set)
		base.ProjectionYears = h.defaults.ProjectionYears
	}
	a := base
	if len(req.Assumptions) > 0 && string(req.Assumptions) != "null" {
		a, err = assumption.DecodeOnto(base, req.Assumptions, false)
		if err != nil {
			return fail(c, http.StatusBadRequest, err)
		}
	}

	res, run, err := h.orchestrator.Run(c.Request().Context(), set, a)
	if err != nil {
		if res == nil {
			return fail(c, statusFor(err), err)
		}
		// Computed but not stored; still useful to the caller.
		log.Printf("[VALUATION] Failed to persist run: %v", err)
	}

	resp := ComputeResponse{Result: res}
	if run != nil {
		resp.RunID = run.ID
	}
	return c.JSON(http.StatusOK, resp)
}

// Ratios handles POST /api/valuation/ratios
// The body is a StatementSet document.
func (h *Handler) Ratios(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
	}

	set, err := statement.Load(body)
	if err != nil {
		return fail(c, statusFor(err), err)
	}

	fin, err := analysis.NewAnalysisEngine().Analyze(set)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, RatiosResponse{
		CompanyName:       set.CompanyName,
		Ratios:            ratio.Extract(set),
		FinancialRatios:   fin,
		SeededAssumptions: pipeline.SeedAssumptions(set),
	})
}

// GetRun handles GET /api/valuation/runs/:id
func (h *Handler) GetRun(c echo.Context) error {
	if h.repo == nil {
		return fail(c, http.StatusServiceUnavailable, errors.New("run storage is not configured"))
	}

	run, err := h.repo.GetRun(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, run)
}

// ListRuns handles GET /api/valuation/runs
// Query params:
// - company: exact company name filter (optional)
// - limit: maximum number of runs (default 20)
func (h *Handler) ListRuns(c echo.Context) error {
	if h.repo == nil {
		return fail(c, http.StatusServiceUnavailable, errors.New("run storage is not configured"))
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fail(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
		}
		limit = n
	}

	runs, err := h.repo.ListRuns(c.Request().Context(), c.QueryParam("company"), limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err)
	}
	if runs == nil {
		runs = []store.ValuationRun{}
	}
	return c.JSON(http.StatusOK, runs)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, statement.ErrMissingStatement), errors.Is(err, statement.ErrMalformedStatement):
		return http.StatusBadRequest
	case errors.Is(err, assumption.ErrInvalidAssumption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, status int, err error) error {
	if status >= http.StatusInternalServerError {
		log.Printf("[VALUATION] %s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}
