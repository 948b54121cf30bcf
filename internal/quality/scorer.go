// Package quality rates how completely an extraction pass captured the
// input. Every warning is a pure function of already-computed intermediate
// data; none depends on another being present.
package quality

import (
	"regexp"
	"strings"

	"github.com/finsight-dev/finsight/internal/domain"
	"github.com/finsight-dev/finsight/internal/extract"
)

const (
	// lowCountInputBytes is the input size above which a near-empty result
	// is suspicious.
	lowCountInputBytes = 1000
	// lowCountThreshold is the transaction count under which that warning
	// fires.
	lowCountThreshold = 3
)

var currencySymbols = []string{"₹", "$", "€", "£"}

// dateTokenRe spots anything date-shaped in the raw input, used only to
// decide whether the "no dates recognized" warning applies.
var dateTokenRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)

// Score computes the quality report for one extraction pass. Completeness
// is the share of matcher candidates that survived validation, and 1.0 when
// there were no candidates at all: with nothing to extract, nothing was
// lost.
func Score(rawText string, candidates []extract.Candidate, txs []domain.Transaction) domain.QualityReport {
	report := domain.QualityReport{Completeness: 1, Warnings: []string{}}
	if len(candidates) > 0 {
		report.Completeness = float64(len(txs)) / float64(len(candidates))
	}

	if len(rawText) >= lowCountInputBytes && len(txs) < lowCountThreshold {
		report.Warnings = append(report.Warnings, "low transaction count for input size")
	}
	if !containsCurrencySymbol(rawText) {
		report.Warnings = append(report.Warnings, "no currency symbol detected")
	}
	if !datesRecognized(rawText, txs) {
		report.Warnings = append(report.Warnings, "no dates recognized")
	}

	return report
}

func containsCurrencySymbol(text string) bool {
	for _, sym := range currencySymbols {
		if strings.Contains(text, sym) {
			return true
		}
	}
	return false
}

func datesRecognized(rawText string, txs []domain.Transaction) bool {
	for _, tx := range txs {
		if tx.HasDate() {
			return true
		}
	}
	for _, token := range dateTokenRe.FindAllString(rawText, -1) {
		if _, ok := extract.NormalizeDate(token); ok {
			return true
		}
	}
	return false
}
