package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// AnalysisRunRow mirrors the finsight.analysis_runs table.
type AnalysisRunRow struct {
	RunID     string `bigquery:"run_id"` // REQUIRED
	SourceURI string `bigquery:"source_uri"`

	ParserType    string `bigquery:"parser_type"`
	ParserVersion string `bigquery:"parser_version"`

	Status       string                 `bigquery:"status"` // RUNNING | SUCCEEDED | FAILED
	ErrorMessage bigquery.NullString    `bigquery:"error_message"`
	Completeness bigquery.NullFloat64   `bigquery:"completeness"`
	TxCount      bigquery.NullInt64     `bigquery:"tx_count"`
	InsightCount bigquery.NullInt64     `bigquery:"insight_count"`
	StartedTS    time.Time              `bigquery:"started_ts"` // REQUIRED
	FinishedTS   bigquery.NullTimestamp `bigquery:"finished_ts"`
}

// TransactionRow mirrors the finsight.transactions table.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	RunID         string `bigquery:"run_id"`         // REQUIRED

	TxType     string              `bigquery:"tx_type"` // REQUIRED
	ExternalID bigquery.NullString `bigquery:"external_id"`

	Amount   *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC
	Currency string   `bigquery:"currency"`

	TransactionDate bigquery.NullDate `bigquery:"transaction_date"`
	BalanceAfter    *big.Rat          `bigquery:"balance_after"` // NULLABLE NUMERIC

	Description bigquery.NullString `bigquery:"description"`
	Category    bigquery.NullString `bigquery:"category"`
	Source      string              `bigquery:"source"` // PATTERN | MODEL

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func nullDate(t time.Time) bigquery.NullDate {
	if t.IsZero() {
		return bigquery.NullDate{}
	}
	return bigquery.NullDate{Date: civil.DateOf(t), Valid: true}
}

// rat converts a float amount to the NUMERIC representation BigQuery expects.
func rat(f float64) *big.Rat {
	return new(big.Rat).SetFloat64(f)
}
