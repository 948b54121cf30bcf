// Package insight derives summary statistics and heuristic classifications
// from a finalized transaction list. All money arithmetic goes through
// shopspring/decimal so totals stay exact at two decimal places.
package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/domain"
)

// Derive computes the insight set for a transaction list and optional
// account metadata. It never fails: missing inputs degrade into explicit
// low-confidence insights, and an empty transaction list produces a single
// "no transactions found" entry so consumers always have something to
// render.
func Derive(txs []domain.Transaction, fields *domain.AccountFields, cfg Config) []domain.Insight {
	if len(txs) == 0 {
		return []domain.Insight{{
			Kind:       domain.InsightEmpty,
			Text:       "no transactions found",
			Confidence: 1,
		}}
	}

	insights := make([]domain.Insight, 0, 8)
	insights = append(insights, totals(txs)...)
	insights = append(insights, averageBalance(txs, fields))
	insights = append(insights, salaryInsights(txs, cfg)...)
	insights = append(insights, spendingInsights(txs, cfg)...)
	return insights
}

func totals(txs []domain.Transaction) []domain.Insight {
	credits, debits := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		switch {
		case tx.IsCredit():
			credits = credits.Add(amount.Abs())
		case tx.IsDebit():
			debits = debits.Add(amount.Abs())
		}
	}
	return []domain.Insight{
		{Kind: domain.InsightTotals, Text: "total credits: " + credits.StringFixed(2), Confidence: 1},
		{Kind: domain.InsightTotals, Text: "total debits: " + debits.StringFixed(2), Confidence: 1},
	}
}

func averageBalance(txs []domain.Transaction, fields *domain.AccountFields) domain.Insight {
	var summary *domain.Summary
	if fields != nil {
		summary = fields.Summary
	}

	if summary != nil && summary.AverageDailyBalance != nil {
		return domain.Insight{
			Kind:       domain.InsightAvgBalance,
			Text:       "average balance: " + decimal.NewFromFloat(*summary.AverageDailyBalance).StringFixed(2),
			Confidence: 1,
		}
	}
	if summary != nil && summary.OpeningBalance != nil && summary.ClosingBalance != nil {
		mid := decimal.NewFromFloat(*summary.OpeningBalance).
			Add(decimal.NewFromFloat(*summary.ClosingBalance)).
			Div(decimal.NewFromInt(2))
		return domain.Insight{
			Kind:       domain.InsightAvgBalance,
			Text:       "average balance: " + mid.StringFixed(2),
			Confidence: 1,
		}
	}
	if avg, ok := domain.AverageDailyBalance(txs); ok {
		return domain.Insight{
			Kind:       domain.InsightAvgBalance,
			Text:       "average balance (day-weighted): " + decimal.NewFromFloat(avg).StringFixed(2),
			Confidence: 0.8,
		}
	}
	return domain.Insight{
		Kind:       domain.InsightAvgBalance,
		Text:       "average balance: unavailable",
		Confidence: 0,
	}
}

// salaryInsights flags salary-like credits. A credit qualifies when its
// amount recurs within SalaryTolerance across entries spaced roughly a month
// apart, or when a salary keyword appears in its text. A single occurrence
// with no keyword match is never flagged; recurrences whose spacing cannot
// be confirmed are reported with low confidence rather than dropped, but a
// dated recurrence whose spacing falls outside the monthly window is
// suppressed outright.
func salaryInsights(txs []domain.Transaction, cfg Config) []domain.Insight {
	var credits []domain.Transaction
	for _, tx := range txs {
		if tx.IsCredit() {
			credits = append(credits, tx)
		}
	}

	var insights []domain.Insight
	flagged := make([]bool, len(credits))

	for i, tx := range credits {
		if flagged[i] || !matchesAny(salaryText(tx), cfg.SalaryKeywords) {
			continue
		}
		flagged[i] = true
		text := fmt.Sprintf("salary-like credit of %s (keyword match)",
			decimal.NewFromFloat(tx.Amount).StringFixed(2))
		if tx.HasDate() {
			text = fmt.Sprintf("salary-like credit of %s on %s (keyword match)",
				decimal.NewFromFloat(tx.Amount).StringFixed(2), tx.Date.Format("2006-01-02"))
		}
		insights = append(insights, domain.Insight{Kind: domain.InsightSalary, Text: text, Confidence: 0.9})
	}

	for i, seed := range credits {
		if flagged[i] {
			continue
		}
		cluster := []int{i}
		for j := i + 1; j < len(credits); j++ {
			if flagged[j] {
				continue
			}
			if withinTolerance(seed.Amount, credits[j].Amount, cfg.SalaryTolerance) {
				cluster = append(cluster, j)
			}
		}
		if len(cluster) < 2 {
			continue
		}
		for _, idx := range cluster {
			flagged[idx] = true
		}

		monthly, confirmed := clusterSpacing(credits, cluster, cfg)
		if confirmed && !monthly {
			// Dated entries prove the recurrence is not month-spaced.
			continue
		}
		confidence := 0.4 // recurrence seen, spacing unconfirmed
		if monthly {
			confidence = 0.85
		}
		insights = append(insights, domain.Insight{
			Kind: domain.InsightSalary,
			Text: fmt.Sprintf("recurring credit of ~%s looks salary-like (%d occurrences)",
				decimal.NewFromFloat(seed.Amount).StringFixed(2), len(cluster)),
			Confidence: confidence,
		})
	}

	return insights
}

func salaryText(tx domain.Transaction) string {
	return strings.ToLower(tx.Type + " " + tx.ID + " " + tx.Description + " " + tx.Category)
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func withinTolerance(a, b, tolerance float64) bool {
	da, db := decimal.NewFromFloat(a).Abs(), decimal.NewFromFloat(b).Abs()
	limit := da.Mul(decimal.NewFromFloat(tolerance))
	return da.Sub(db).Abs().LessThanOrEqual(limit)
}

// clusterSpacing classifies the date spacing of a cluster. monthly is true
// when some pair of dated entries sits roughly a month apart; confirmed is
// false when no two entries are both dated, so the spacing stays unknown.
func clusterSpacing(credits []domain.Transaction, cluster []int, cfg Config) (monthly, confirmed bool) {
	for x := 0; x < len(cluster); x++ {
		for y := x + 1; y < len(cluster); y++ {
			a, b := credits[cluster[x]], credits[cluster[y]]
			if !a.HasDate() || !b.HasDate() {
				continue
			}
			confirmed = true
			days := int(b.Date.Sub(a.Date).Hours() / 24)
			if days < 0 {
				days = -days
			}
			if days >= cfg.MonthMinDays && days <= cfg.MonthMaxDays {
				return true, true
			}
		}
	}
	return false, confirmed
}

// spendingInsights groups debits by a coarse category key and reports
// per-category totals sorted descending by amount, ties broken by first-seen
// order.
func spendingInsights(txs []domain.Transaction, cfg Config) []domain.Insight {
	type bucket struct {
		key   string
		total decimal.Decimal
		seen  int
	}

	var order []*bucket
	index := make(map[string]*bucket)

	for _, tx := range txs {
		if !tx.IsDebit() {
			continue
		}
		key := categoryKey(tx, cfg)
		b, ok := index[key]
		if !ok {
			b = &bucket{key: key, total: decimal.Zero, seen: len(order)}
			index[key] = b
			order = append(order, b)
		}
		b.total = b.total.Add(decimal.NewFromFloat(tx.Amount).Abs())
	}
	if len(order) == 0 {
		return nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		if !order[i].total.Equal(order[j].total) {
			return order[i].total.GreaterThan(order[j].total)
		}
		return order[i].seen < order[j].seen
	})

	insights := make([]domain.Insight, 0, len(order))
	for _, b := range order {
		insights = append(insights, domain.Insight{
			Kind:       domain.InsightSpending,
			Text:       fmt.Sprintf("spending %s: %s", b.key, b.total.StringFixed(2)),
			Confidence: 1,
		})
	}
	return insights
}

// categoryKey derives a coarse spending category from the transaction text.
// "uncategorized" means no keyword gave a signal; a bare DEBIT type is not a
// signal.
func categoryKey(tx domain.Transaction, cfg Config) string {
	text := strings.ToLower(tx.Type + " " + tx.ID + " " + tx.Description + " " + tx.Category)
	keys := make([]string, 0, len(cfg.CategoryKeywords))
	for key := range cfg.CategoryKeywords {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if matchesAny(text, cfg.CategoryKeywords[key]) {
			return key
		}
	}
	return "uncategorized"
}
