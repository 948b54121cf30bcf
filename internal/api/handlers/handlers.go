// Package handlers exposes statement analysis over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/finsight-dev/finsight/internal/api/middleware"
	"github.com/finsight-dev/finsight/internal/domain"
	"github.com/finsight-dev/finsight/internal/jobs"
	"github.com/finsight-dev/finsight/internal/logger"
	"github.com/finsight-dev/finsight/internal/pipeline"
	store "github.com/finsight-dev/finsight/internal/store/bigquery"
)

// maxStatementBytes caps the accepted request body. Plain-text statements
// are small; anything larger is almost certainly the wrong payload.
const maxStatementBytes = 4 << 20

// StatementsHandler handles statement analysis endpoints.
type StatementsHandler struct {
	publisher jobs.Publisher
	parser    pipeline.StatementParser
	log       zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. parser may be nil,
// in which case the model-assisted path is unavailable.
func NewStatementsHandler(publisher jobs.Publisher, parser pipeline.StatementParser, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		publisher: publisher,
		parser:    parser,
		log:       log,
	}
}

type analyzeRequest struct {
	Text       string                `json:"text"`
	TestMode   bool                  `json:"test_mode,omitempty"`
	UniqueByID bool                  `json:"unique_by_id,omitempty"`
	UseModel   bool                  `json:"use_model,omitempty"`
	Fields     *domain.AccountFields `json:"fields,omitempty"`
}

// Analyze handles POST /api/statements/analyze. It runs the pipeline
// synchronously and returns the result bundle.
func (h *StatementsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	opts := pipeline.Options{
		TestMode:   req.TestMode,
		UniqueByID: req.UniqueByID,
		Fields:     req.Fields,
	}
	if req.UseModel {
		if h.parser == nil {
			middleware.WriteError(w, http.StatusBadRequest, "Model-assisted analysis is not configured")
			return
		}
		opts.Parser = h.parser
	}

	ctx := logger.WithContext(r.Context(), h.log)
	bundle := pipeline.Analyze(ctx, req.Text, opts)
	middleware.WriteJSON(w, http.StatusOK, bundle)
}

// Tuples handles POST /api/statements/tuples. It returns only the validated
// (type, amount, id) tuples extracted from the text.
func (h *StatementsHandler) Tuples(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	tuples := pipeline.AnalyzeTuples(req.Text)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tuples": tuples,
		"count":  len(tuples),
	})
}

// Enqueue handles POST /api/statements/enqueue. It schedules an asynchronous
// analysis job and returns its id.
func (h *StatementsHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text,omitempty"`
		SourceURI  string `json:"source_uri,omitempty"`
		UniqueByID bool   `json:"unique_by_id,omitempty"`
		UseModel   bool   `json:"use_model,omitempty"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStatementBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" && req.SourceURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text or source_uri is required")
		return
	}

	job := &jobs.AnalyzeStatementJob{
		RawText:    req.Text,
		SourceURI:  req.SourceURI,
		UniqueByID: req.UniqueByID,
		UseModel:   req.UseModel,
	}
	if err := h.publisher.PublishAnalyzeStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue analysis job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("source_uri", req.SourceURI).Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

func (h *StatementsHandler) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (analyzeRequest, bool) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStatementBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.Text == "" && !req.TestMode {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return req, false
	}
	return req, true
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		SourceURI: query.Get("source_uri"),
		Status:    jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// RunLister is the slice of the run repository the API needs.
type RunLister interface {
	ListRecentRuns(ctx context.Context, limit int) ([]*store.AnalysisRunRow, error)
}

// RunsHandler exposes persisted analysis runs.
type RunsHandler struct {
	repo RunLister
	log  zerolog.Logger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo RunLister, log zerolog.Logger) *RunsHandler {
	return &RunsHandler{repo: repo, log: log}
}

// ListRuns handles GET /api/runs
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil {
			limit = n
		}
	}

	runs, err := h.repo.ListRecentRuns(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []*store.AnalysisRunRow{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
