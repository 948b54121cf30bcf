package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/finsight-dev/finsight/internal/api/handlers"
	"github.com/finsight-dev/finsight/internal/api/middleware"
	"github.com/finsight-dev/finsight/internal/gcs"
	"github.com/finsight-dev/finsight/internal/jobs"
	"github.com/finsight-dev/finsight/internal/jobs/inmemory"
	"github.com/finsight-dev/finsight/internal/logger"
	"github.com/finsight-dev/finsight/internal/pipeline"
	store "github.com/finsight-dev/finsight/internal/store/bigquery"
)

func main() {
	_ = godotenv.Load()

	var (
		port    = flag.String("port", "8080", "HTTP server port")
		project = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project id for run persistence (or set GOOGLE_CLOUD_PROJECT)")
		dataset = flag.String("dataset", os.Getenv("BIGQUERY_DATASET"), "BigQuery dataset (defaults to finsight)")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	// Run persistence is optional; without a project the API still serves
	// synchronous analysis and inline jobs.
	var repo *store.Repository
	if *project != "" {
		var err error
		repo, err = store.NewRepository(ctx, *project, *dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create run repository")
		}
		defer repo.Close()
	} else {
		log.Warn().Msg("No GCP project configured - run persistence is disabled")
	}

	var parser pipeline.StatementParser
	if os.Getenv("GEMINI_API_KEY") != "" {
		parser = pipeline.NewGeminiStatementParser(os.Getenv("GEMINI_MODEL"))
		if repo != nil {
			repo.ParserType = pipeline.SourceModelLabel
		}
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 0, jobStore)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	jobHandler := newJobHandler(repo, parser, log)

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	statementsHandler := handlers.NewStatementsHandler(jobQueue, parser, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/statements/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.Analyze(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/statements/tuples", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.Tuples(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/statements/enqueue", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statementsHandler.Enqueue(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	if repo != nil {
		runsHandler := handlers.NewRunsHandler(repo, log)
		mux.HandleFunc("/api/runs", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				runsHandler.ListRuns(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// newJobHandler builds the handler the queue workers run. Inline-text jobs
// are analyzed in process; GCS-backed jobs additionally persist the run when
// a repository is configured.
func newJobHandler(repo *store.Repository, parser pipeline.StatementParser, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		analyzeJob, ok := job.(*jobs.AnalyzeStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", analyzeJob.JobID).
			Str("source_uri", analyzeJob.SourceURI).
			Msg("Processing analysis job")

		opts := pipeline.Options{UniqueByID: analyzeJob.UniqueByID}
		if analyzeJob.UseModel {
			opts.Parser = parser
		}

		if analyzeJob.SourceURI == "" {
			analyzeJob.Result = pipeline.Analyze(ctx, analyzeJob.RawText, opts)
			return nil
		}

		if repo == nil {
			return fmt.Errorf("no run repository configured for GCS-backed job")
		}

		state := &pipeline.PipelineState{
			GCSURI:  analyzeJob.SourceURI,
			Options: opts,
		}
		p := pipeline.NewIngestionPipeline(gcs.NewClient(), repo)
		if err := p.Execute(ctx, state); err != nil {
			return err
		}

		analyzeJob.RunID = state.RunID
		analyzeJob.Result = state.Bundle
		return nil
	}
}
