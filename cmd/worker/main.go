package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

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
		project = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project id (or set GOOGLE_CLOUD_PROJECT)")
		dataset = flag.String("dataset", os.Getenv("BIGQUERY_DATASET"), "BigQuery dataset (defaults to finsight)")
		workers = flag.Int("workers", 0, "Concurrent job workers (0 for default)")
	)
	flag.Parse()

	log := logger.New()

	if *project == "" {
		log.Fatal().Msg("Error: --project or GOOGLE_CLOUD_PROJECT is required")
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	repo, err := store.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create run repository")
	}
	defer repo.Close()
	repo.ParserType = pipeline.SourcePatternLabel

	// In production, this would be replaced with Cloud Tasks or Pub/Sub.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	log.Info().Msg("Starting worker service")

	ingestion := pipeline.NewIngestionPipeline(gcs.NewClient(), repo)

	handler := func(ctx context.Context, job jobs.Job) error {
		analyzeJob, ok := job.(*jobs.AnalyzeStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", analyzeJob.JobID).
			Str("source_uri", analyzeJob.SourceURI).
			Msg("Processing analysis job")

		state := &pipeline.PipelineState{
			GCSURI:  analyzeJob.SourceURI,
			Options: pipeline.Options{UniqueByID: analyzeJob.UniqueByID},
		}
		if err := ingestion.Execute(ctx, state); err != nil {
			log.Error().
				Err(err).
				Str("job_id", analyzeJob.JobID).
				Msg("Pipeline execution failed")
			return err
		}

		analyzeJob.RunID = state.RunID
		analyzeJob.Result = state.Bundle

		log.Info().
			Str("job_id", analyzeJob.JobID).
			Str("run_id", state.RunID).
			Int("transactions", len(state.Bundle.Transactions)).
			Msg("Pipeline execution completed successfully")
		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
