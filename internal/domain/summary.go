package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// balanceTolerance is how far the computed closing balance may drift from
// the reported one before we flag a mismatch. Statement rounding makes an
// exact comparison useless.
const balanceTolerance = 1.0

// CheckBalance verifies opening + credits - debits against the closing
// balance. It returns a warning per detected inconsistency and nothing when
// the summary is missing the figures needed for the check.
func (s *Summary) CheckBalance() []string {
	if s == nil || s.OpeningBalance == nil || s.ClosingBalance == nil ||
		s.TotalCredits == nil || s.TotalDebits == nil {
		return nil
	}

	calc := math.Round((*s.OpeningBalance+*s.TotalCredits-*s.TotalDebits)*100) / 100
	if math.Abs(calc-*s.ClosingBalance) > balanceTolerance {
		return []string{fmt.Sprintf(
			"balance mismatch: opening(%.2f) + credits(%.2f) - debits(%.2f) = %.2f, but closing = %.2f",
			*s.OpeningBalance, *s.TotalCredits, *s.TotalDebits, calc, *s.ClosingBalance)}
	}
	return nil
}

// CountDuplicates counts transactions that repeat an earlier (date, amount,
// description) triple. The first occurrence is not counted. Records without
// a description fall back to type+id so pattern-derived rows are comparable.
func CountDuplicates(txs []Transaction) int {
	seen := make(map[string]bool, len(txs))
	duplicates := 0
	for _, tx := range txs {
		desc := strings.ToLower(strings.TrimSpace(tx.Description))
		if desc == "" {
			desc = strings.ToLower(strings.TrimSpace(tx.Type + "/" + tx.ID))
		}
		key := fmt.Sprintf("%s|%.2f|%s", tx.Date.Format("2006-01-02"), tx.Amount, desc)
		if seen[key] {
			duplicates++
		} else {
			seen[key] = true
		}
	}
	return duplicates
}

// AverageDailyBalance computes a day-weighted average of the running balance
// over the dated span of the transactions. Each balance is held for the
// number of days until the next dated entry. The second return value is
// false when no transaction carries both a date and a balance.
func AverageDailyBalance(txs []Transaction) (float64, bool) {
	type point struct {
		day     int64 // days since epoch
		balance float64
	}

	var points []point
	for _, tx := range txs {
		if !tx.HasDate() || tx.BalanceAfter == nil {
			continue
		}
		points = append(points, point{day: tx.Date.Unix() / 86400, balance: *tx.BalanceAfter})
	}
	if len(points) == 0 {
		return 0, false
	}

	sort.Slice(points, func(i, j int) bool { return points[i].day < points[j].day })

	totalDays := points[len(points)-1].day - points[0].day + 1
	var weighted float64
	prev := points[0]
	for _, p := range points[1:] {
		days := p.day - prev.day
		if days == 0 {
			days = 1
		}
		weighted += prev.balance * float64(days)
		prev = p
	}
	weighted += prev.balance

	return math.Round(weighted/float64(totalDays)*100) / 100, true
}
