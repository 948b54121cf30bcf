// Package bigquery persists analysis runs and their validated transactions.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/finsight-dev/finsight/internal/domain"
	"github.com/finsight-dev/finsight/internal/logger"
)

const (
	defaultDatasetID  = "finsight"
	analysisRunsTable = "analysis_runs"
	transactionsTable = "transactions"

	parserVersion = "v1"

	// maxStoredErrorLen caps error_message so a pathological parser error
	// cannot blow up the row.
	maxStoredErrorLen = 2000
)

// Repository implements run persistence against BigQuery. It satisfies
// pipeline.RunRepository.
type Repository struct {
	client    *bigquery.Client
	datasetID string

	// ParserType labels new runs, e.g. PATTERN or GEMINI_TEXT.
	ParserType string
}

// NewRepository creates a repository for the given project. An empty
// datasetID falls back to the default dataset.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	if datasetID == "" {
		datasetID = defaultDatasetID
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return &Repository{client: client, datasetID: datasetID, ParserType: "PATTERN"}, nil
}

// Close releases the underlying BigQuery client.
func (r *Repository) Close() error {
	return r.client.Close()
}

// StartRun inserts a new row into analysis_runs with status=RUNNING and
// returns the generated run id.
func (r *Repository) StartRun(ctx context.Context, sourceURI string) (string, error) {
	runID := uuid.NewString()

	q := r.client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			run_id,
			source_uri,
			parser_type,
			parser_version,
			status,
			started_ts
		)
		VALUES (
			@run_id,
			@source_uri,
			@parser_type,
			@parser_version,
			@status,
			@started_ts
		)
	`, r.datasetID, analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "source_uri", Value: sourceURI},
		{Name: "parser_type", Value: r.ParserType},
		{Name: "parser_version", Value: parserVersion},
		{Name: "status", Value: "RUNNING"},
		{Name: "started_ts", Value: time.Now()},
	}

	if err := r.runAndWait(ctx, q); err != nil {
		return "", fmt.Errorf("StartRun: %w", err)
	}
	return runID, nil
}

// FinishRun finalizes a run. With a non-nil runErr the run is marked FAILED
// and the truncated error stored; otherwise it is marked SUCCEEDED with the
// bundle's headline numbers.
func (r *Repository) FinishRun(ctx context.Context, runID string, bundle *domain.ResultBundle, runErr error) error {
	status := "SUCCEEDED"
	errMsg := ""
	var completeness float64
	var txCount, insightCount int64

	if runErr != nil {
		status = "FAILED"
		errMsg = runErr.Error()
		if len(errMsg) > maxStoredErrorLen {
			errMsg = errMsg[:maxStoredErrorLen]
		}
	} else if bundle != nil {
		completeness = bundle.Quality.Completeness
		txCount = int64(len(bundle.Transactions))
		insightCount = int64(len(bundle.Insights))
	}

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    error_message = @error_message,
		    completeness = @completeness,
		    tx_count = @tx_count,
		    insight_count = @insight_count,
		    finished_ts = @finished_ts
		WHERE run_id = @run_id
	`, r.datasetID, analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: status},
		{Name: "error_message", Value: errMsg},
		{Name: "completeness", Value: completeness},
		{Name: "tx_count", Value: txCount},
		{Name: "insight_count", Value: insightCount},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "run_id", Value: runID},
	}

	if err := r.runAndWait(ctx, q); err != nil {
		log := logger.FromContext(ctx)
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("FinishRun: update failed")
		return fmt.Errorf("FinishRun: %w", err)
	}
	return nil
}

// InsertTransactions streams the validated transactions for a run into the
// transactions table.
func (r *Repository) InsertTransactions(ctx context.Context, runID string, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	rows := make([]*TransactionRow, 0, len(txs))
	now := time.Now()
	for _, tx := range txs {
		row := &TransactionRow{
			TransactionID:   uuid.NewString(),
			RunID:           runID,
			TxType:          tx.Type,
			ExternalID:      nullString(tx.ID),
			Amount:          rat(tx.Amount),
			Currency:        tx.Currency,
			TransactionDate: nullDate(tx.Date),
			Description:     nullString(tx.Description),
			Category:        nullString(tx.Category),
			Source:          string(tx.Source),
			CreatedTS:       now,
		}
		if tx.BalanceAfter != nil {
			row.BalanceAfter = rat(*tx.BalanceAfter)
		}
		rows = append(rows, row)
	}

	inserter := r.client.Dataset(r.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: streaming insert: %w", err)
	}
	return nil
}

// ListRecentRuns returns the most recent analysis runs, newest first.
func (r *Repository) ListRecentRuns(ctx context.Context, limit int) ([]*AnalysisRunRow, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT
			run_id,
			source_uri,
			parser_type,
			parser_version,
			status,
			error_message,
			completeness,
			tx_count,
			insight_count,
			started_ts,
			finished_ts
		FROM %s.%s
		ORDER BY started_ts DESC
		LIMIT @limit
	`, r.datasetID, analysisRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecentRuns: reading query: %w", err)
	}

	var runs []*AnalysisRunRow
	for {
		var row AnalysisRunRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecentRuns: iterating: %w", err)
		}
		runs = append(runs, &row)
	}
	return runs, nil
}

func (r *Repository) runAndWait(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
