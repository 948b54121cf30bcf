// Package pipeline orchestrates statement analysis: extraction (pattern
// matched or model assisted), insight derivation, and quality scoring,
// assembled into a single result bundle.
package pipeline

import (
	"context"
	"fmt"

	"github.com/finsight-dev/finsight/internal/domain"
	"github.com/finsight-dev/finsight/internal/extract"
	"github.com/finsight-dev/finsight/internal/insight"
	"github.com/finsight-dev/finsight/internal/logger"
	"github.com/finsight-dev/finsight/internal/quality"
)

// Options configures a single Analyze call. The zero value runs the plain
// pattern-matched path with default insight thresholds.
type Options struct {
	// TestMode short-circuits the whole pipeline and returns the fixed
	// sample bundle. Used by smoke tests and demo environments.
	TestMode bool

	// UniqueByID keeps only the first validated transaction per identifier.
	UniqueByID bool

	// Fields carries caller-supplied account metadata (bank name, period,
	// balances). Analyze reads it but never mutates the caller's copy.
	Fields *domain.AccountFields

	// Parser, when set, is tried before pattern matching. A parser failure
	// degrades to the pattern path with a quality warning, never an error.
	Parser StatementParser

	// Insight overrides the default heuristic thresholds when non-zero.
	Insight insight.Config
}

// Analyze runs the full analysis pipeline over raw statement text and always
// produces a bundle: malformed entries are dropped, missing data degrades
// into warnings and low-confidence insights.
func Analyze(ctx context.Context, rawText string, opts Options) *domain.ResultBundle {
	if opts.TestMode {
		return SampleResultBundle()
	}

	log := logger.FromContext(ctx)
	cfg := opts.Insight
	if cfg.MonthMaxDays == 0 {
		cfg = insight.DefaultConfig()
	}

	fields := cloneFields(opts.Fields)

	var (
		candidates []extract.Candidate
		txs        []domain.Transaction
		preWarns   []string
		usedModel  bool
	)

	if opts.Parser != nil {
		raw, err := opts.Parser.ParseStatement(ctx, rawText)
		if err == nil {
			var modelFields *domain.AccountFields
			modelFields, txs, err = transformModelOutput(raw)
			if err == nil {
				usedModel = true
				fields = mergeFields(fields, modelFields)
			}
		}
		if err != nil {
			log.Warn().Err(err).Msg("model extraction failed, falling back to pattern matching")
			preWarns = append(preWarns, "model extraction failed, fell back to pattern matching")
		}
	}

	if !usedModel {
		candidates = extract.FindTransactions(rawText)
		txs = extract.ValidateAll(candidates, opts.UniqueByID)
	}

	insights := insight.Derive(txs, fields, cfg)

	report := quality.Score(rawText, candidates, txs)
	report.Warnings = append(preWarns, report.Warnings...)
	if fields != nil && fields.Summary != nil {
		report.Warnings = append(report.Warnings, fields.Summary.CheckBalance()...)
	}
	if dups := domain.CountDuplicates(txs); dups > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d duplicate-looking entries", dups))
	}

	log.Info().
		Int("candidates", len(candidates)).
		Int("transactions", len(txs)).
		Int("insights", len(insights)).
		Float64("completeness", report.Completeness).
		Bool("model", usedModel).
		Msg("statement analyzed")

	return &domain.ResultBundle{
		Fields:       fields,
		Transactions: txs,
		Insights:     insights,
		Quality:      report,
	}
}

// AnalyzeTuples extracts validated (type, amount, id) tuples from raw text.
// This is the minimal entry point for callers that want rows, not insights.
func AnalyzeTuples(rawText string) []extract.Tuple {
	return extract.Tuples(rawText)
}

// cloneFields copies the caller's fields so warning passes can never write
// through to the caller's struct.
func cloneFields(fields *domain.AccountFields) *domain.AccountFields {
	if fields == nil {
		return nil
	}
	clone := *fields
	if fields.Summary != nil {
		summary := *fields.Summary
		clone.Summary = &summary
	}
	return &clone
}

// mergeFields fills gaps in the caller-supplied fields with model-extracted
// values. Caller values win on conflict.
func mergeFields(base, extracted *domain.AccountFields) *domain.AccountFields {
	if base == nil {
		return extracted
	}
	if extracted == nil {
		return base
	}
	for _, pair := range []struct{ dst, src *string }{
		{&base.BankName, &extracted.BankName},
		{&base.HolderName, &extracted.HolderName},
		{&base.AccountNumberMasked, &extracted.AccountNumberMasked},
		{&base.StatementPeriod, &extracted.StatementPeriod},
		{&base.AccountType, &extracted.AccountType},
		{&base.Currency, &extracted.Currency},
	} {
		if *pair.dst == "" {
			*pair.dst = *pair.src
		}
	}
	if base.Summary == nil {
		base.Summary = extracted.Summary
	}
	return base
}
