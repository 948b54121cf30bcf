package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-dev/finsight/internal/domain"
)

func fptr(f float64) *float64 { return &f }

func date(day int) time.Time {
	return time.Date(2025, 9, day, 0, 0, 0, 0, time.UTC)
}

func byKind(insights []domain.Insight, kind string) []domain.Insight {
	var out []domain.Insight
	for _, in := range insights {
		if in.Kind == kind {
			out = append(out, in)
		}
	}
	return out
}

func TestDeriveEmpty(t *testing.T) {
	got := Derive(nil, nil, DefaultConfig())

	require.Len(t, got, 1)
	assert.Equal(t, domain.InsightEmpty, got[0].Kind)
	assert.Equal(t, "no transactions found", got[0].Text)
	assert.Equal(t, 1.0, got[0].Confidence)
}

func TestDeriveTotals(t *testing.T) {
	txs := []domain.Transaction{
		{Type: "CREDIT", Amount: 1000},
		{Type: "credit", Amount: 250.50},
		{Type: "DEBIT", Amount: -300},
		{Type: "Debit", Amount: 99.99},
		{Type: "TRANSFER", Amount: 12345},
	}

	got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightTotals)
	require.Len(t, got, 2)
	assert.Equal(t, "total credits: 1250.50", got[0].Text)
	assert.Equal(t, "total debits: 399.99", got[1].Text)
}

func TestDeriveAverageBalance(t *testing.T) {
	txs := []domain.Transaction{{Type: "CREDIT", Amount: 1}}

	t.Run("midpoint from summary", func(t *testing.T) {
		fields := &domain.AccountFields{Summary: &domain.Summary{
			OpeningBalance: fptr(100),
			ClosingBalance: fptr(200),
		}}
		got := byKind(Derive(txs, fields, DefaultConfig()), domain.InsightAvgBalance)
		require.Len(t, got, 1)
		assert.Equal(t, "average balance: 150.00", got[0].Text)
		assert.Equal(t, 1.0, got[0].Confidence)
	})

	t.Run("reported value wins over midpoint", func(t *testing.T) {
		fields := &domain.AccountFields{Summary: &domain.Summary{
			OpeningBalance:      fptr(100),
			ClosingBalance:      fptr(200),
			AverageDailyBalance: fptr(175.25),
		}}
		got := byKind(Derive(txs, fields, DefaultConfig()), domain.InsightAvgBalance)
		require.Len(t, got, 1)
		assert.Equal(t, "average balance: 175.25", got[0].Text)
	})

	t.Run("day weighted fallback", func(t *testing.T) {
		dated := []domain.Transaction{
			{Type: "CREDIT", Amount: 1, Date: date(1), BalanceAfter: fptr(72000)},
			{Type: "DEBIT", Amount: -1, Date: date(10), BalanceAfter: fptr(38500)},
		}
		got := byKind(Derive(dated, nil, DefaultConfig()), domain.InsightAvgBalance)
		require.Len(t, got, 1)
		assert.Equal(t, "average balance (day-weighted): 68650.00", got[0].Text)
		assert.Equal(t, 0.8, got[0].Confidence)
	})

	t.Run("unavailable", func(t *testing.T) {
		got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightAvgBalance)
		require.Len(t, got, 1)
		assert.Equal(t, "average balance: unavailable", got[0].Text)
		assert.Equal(t, 0.0, got[0].Confidence)
	})
}

func TestSalarySingleOccurrenceNeverFlagged(t *testing.T) {
	txs := []domain.Transaction{
		{Type: "CREDIT", Amount: 50000, Date: date(1), Description: "NEFT FROM EMPLOYER"},
		{Type: "DEBIT", Amount: -200, Date: date(2)},
	}

	got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSalary)
	assert.Empty(t, got, "a single non-keyword credit must never be flagged as salary")
}

func TestSalaryKeywordMatch(t *testing.T) {
	txs := []domain.Transaction{
		{Type: "CREDIT", Amount: 30000, Date: date(1), Description: "SALARY CREDIT HDFC BANK"},
	}

	got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSalary)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Text, "keyword match")
	assert.Contains(t, got[0].Text, "2025-09-01")
	assert.Equal(t, 0.9, got[0].Confidence)
}

func TestSalaryRecurrence(t *testing.T) {
	t.Run("monthly spacing", func(t *testing.T) {
		txs := []domain.Transaction{
			{Type: "CREDIT", Amount: 50000, Date: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
			{Type: "CREDIT", Amount: 50250, Date: date(1)},
		}
		got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSalary)
		require.Len(t, got, 1)
		assert.Contains(t, got[0].Text, "2 occurrences")
		assert.Equal(t, 0.85, got[0].Confidence)
	})

	t.Run("undated recurrence is low confidence", func(t *testing.T) {
		txs := []domain.Transaction{
			{Type: "CREDIT", Amount: 50000},
			{Type: "CREDIT", Amount: 50000},
		}
		got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSalary)
		require.Len(t, got, 1)
		assert.Equal(t, 0.4, got[0].Confidence)
	})

	t.Run("non-monthly spacing is suppressed", func(t *testing.T) {
		txs := []domain.Transaction{
			{Type: "CREDIT", Amount: 50000, Date: date(1)},
			{Type: "CREDIT", Amount: 50250, Date: date(3)},
		}
		got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSalary)
		assert.Empty(t, got, "dated entries two days apart are provably not salary-spaced")
	})

	t.Run("amount outside tolerance is not a recurrence", func(t *testing.T) {
		txs := []domain.Transaction{
			{Type: "CREDIT", Amount: 50000, Date: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
			{Type: "CREDIT", Amount: 52000, Date: date(1)},
		}
		got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSalary)
		assert.Empty(t, got)
	})
}

func TestSpendingPattern(t *testing.T) {
	txs := []domain.Transaction{
		{Type: "DEBIT", Amount: -500, Description: "ATM CASH WITHDRAWAL"},
		{Type: "DEBIT", Amount: -1500, Description: "RENT SEPTEMBER"},
		{Type: "DEBIT", Amount: -700, Description: "ATM CASH WITHDRAWAL"},
		{Type: "DEBIT", Amount: -80, Description: "mystery purchase"},
	}

	got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSpending)
	require.Len(t, got, 3)
	assert.Equal(t, "spending housing: 1500.00", got[0].Text)
	assert.Equal(t, "spending atm: 1200.00", got[1].Text)
	assert.Equal(t, "spending uncategorized: 80.00", got[2].Text)
}

func TestSpendingTieBreaksByFirstSeen(t *testing.T) {
	txs := []domain.Transaction{
		{Type: "DEBIT", Amount: -100, Description: "petrol pump"},
		{Type: "DEBIT", Amount: -100, Description: "grocery store"},
	}

	got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSpending)
	require.Len(t, got, 2)
	assert.Equal(t, "spending fuel: 100.00", got[0].Text)
	assert.Equal(t, "spending groceries: 100.00", got[1].Text)
}

func TestSpendingNoDebits(t *testing.T) {
	txs := []domain.Transaction{{Type: "CREDIT", Amount: 100}}
	got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSpending)
	assert.Empty(t, got)
}

func TestSpendingExcludesNonDebitTypes(t *testing.T) {
	txs := []domain.Transaction{
		{Type: "DEBIT", Amount: -500, Description: "ATM CASH WITHDRAWAL"},
		{Type: "TRANSFER", Amount: -9000, Description: "OWN ACCOUNT TRANSFER"},
	}

	got := byKind(Derive(txs, nil, DefaultConfig()), domain.InsightSpending)
	require.Len(t, got, 1, "a signed non-debit type must not enter the spending pattern")
	assert.Equal(t, "spending atm: 500.00", got[0].Text)
}
