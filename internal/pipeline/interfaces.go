package pipeline

import (
	"context"

	"github.com/finsight-dev/finsight/internal/domain"
)

// StatementParser is the AI collaborator boundary. Implementations send
// statement text to a model and return its raw JSON output as a generic
// map. The core never calls the network itself; it only consumes what a
// parser hands back.
type StatementParser interface {
	ParseStatement(ctx context.Context, statementText string) (map[string]interface{}, error)
}

// TextFetcher retrieves raw statement text from an external location, e.g.
// a gs:// URI. Used only by the ingest path, never by Analyze.
type TextFetcher interface {
	FetchText(ctx context.Context, uri string) (string, error)
}

// RunRepository persists analysis runs and their validated transactions.
type RunRepository interface {
	StartRun(ctx context.Context, sourceURI string) (string, error)
	FinishRun(ctx context.Context, runID string, bundle *domain.ResultBundle, runErr error) error
	InsertTransactions(ctx context.Context, runID string, txs []domain.Transaction) error
	Close() error
}
