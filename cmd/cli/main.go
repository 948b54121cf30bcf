package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/finsight-dev/finsight/internal/gcs"
	"github.com/finsight-dev/finsight/internal/logger"
	"github.com/finsight-dev/finsight/internal/pipeline"
	store "github.com/finsight-dev/finsight/internal/store/bigquery"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "tuples":
		runTuples(log)
	case "ingest":
		runIngest(log)
	case "runs":
		runRuns(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finsight CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Analyze a statement text file and print the result bundle")
	fmt.Println("  tuples    Print the validated (type, amount, id) tuples from a file")
	fmt.Println("  ingest    Fetch a statement from GCS, analyze it, and persist the run")
	fmt.Println("  runs      List recent persisted analysis runs")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	file := fs.String("file", "", "Path to the statement text file (- for stdin)")
	testMode := fs.Bool("test", false, "Return the fixed sample bundle instead of analyzing")
	unique := fs.Bool("unique", false, "Keep only the first transaction per identifier")
	useModel := fs.Bool("model", false, "Use model-assisted extraction (requires GEMINI_API_KEY)")
	modelName := fs.String("model-name", "", "Gemini model name override")
	fs.Parse(os.Args[2:])

	var rawText string
	if !*testMode {
		rawText = readInput(log, *file)
	}

	opts := pipeline.Options{
		TestMode:   *testMode,
		UniqueByID: *unique,
	}
	if *useModel {
		opts.Parser = pipeline.NewGeminiStatementParser(*modelName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	bundle := pipeline.Analyze(ctx, rawText, opts)
	printJSON(log, bundle)
}

func runTuples(log zerolog.Logger) {
	fs := flag.NewFlagSet("tuples", flag.ExitOnError)
	file := fs.String("file", "", "Path to the statement text file (- for stdin)")
	fs.Parse(os.Args[2:])

	rawText := readInput(log, *file)
	tuples := pipeline.AnalyzeTuples(rawText)

	for _, t := range tuples {
		fmt.Printf("%s\t%.2f\t%s\n", t.Type, t.Amount, t.ID)
	}
	log.Info().Int("count", len(tuples)).Msg("Extraction finished")
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	gcsURI := fs.String("gcs-uri", "", "GCS URI of the statement text")
	project := fs.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project id (or set GOOGLE_CLOUD_PROJECT)")
	dataset := fs.String("dataset", os.Getenv("BIGQUERY_DATASET"), "BigQuery dataset (defaults to finsight)")
	unique := fs.Bool("unique", false, "Keep only the first transaction per identifier")
	resultsBucket := fs.String("results-bucket", os.Getenv("RESULTS_BUCKET"), "GCS bucket for the result bundle JSON (optional)")
	fs.Parse(os.Args[2:])

	if *gcsURI == "" {
		log.Fatal().Msg("Error: --gcs-uri is required")
	}
	if *project == "" {
		log.Fatal().Msg("Error: --project or GOOGLE_CLOUD_PROJECT is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := store.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create run repository")
	}
	defer repo.Close()

	log.Info().Str("gcs_uri", *gcsURI).Msg("Starting ingestion")

	storage := gcs.NewClient()
	state := &pipeline.PipelineState{
		GCSURI:  *gcsURI,
		Options: pipeline.Options{UniqueByID: *unique},
	}
	p := pipeline.NewIngestionPipeline(storage, repo)
	if err := p.Execute(ctx, state); err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	if *resultsBucket != "" {
		object := "results/" + gcs.ObjectName(*gcsURI) + "-" + state.RunID + ".json"
		if err := storage.UploadJSON(ctx, *resultsBucket, object, state.Bundle); err != nil {
			log.Error().Err(err).Msg("Failed to upload result bundle")
		} else {
			log.Info().Str("object", object).Msg("Result bundle uploaded")
		}
	}

	fmt.Printf("Ingestion completed, run %s with %d transactions.\n",
		state.RunID, len(state.Bundle.Transactions))
}

func runRuns(log zerolog.Logger) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	project := fs.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project id (or set GOOGLE_CLOUD_PROJECT)")
	dataset := fs.String("dataset", os.Getenv("BIGQUERY_DATASET"), "BigQuery dataset (defaults to finsight)")
	limit := fs.Int("limit", 20, "Maximum number of runs to list")
	fs.Parse(os.Args[2:])

	if *project == "" {
		log.Fatal().Msg("Error: --project or GOOGLE_CLOUD_PROJECT is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := store.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create run repository")
	}
	defer repo.Close()

	runs, err := repo.ListRecentRuns(ctx, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list runs")
	}

	for _, run := range runs {
		fmt.Printf("%s\t%s\t%s\t%s\n", run.RunID, run.Status, run.ParserType, run.SourceURI)
	}
	log.Info().Int("count", len(runs)).Msg("Listing finished")
}

func readInput(log zerolog.Logger, file string) string {
	if file == "" {
		log.Fatal().Msg("Error: --file is required (- for stdin)")
	}
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stdin")
		}
		return string(data)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read file")
	}
	return string(data)
}

func printJSON(log zerolog.Logger, v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
}
