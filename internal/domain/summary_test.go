package domain

import (
	"strings"
	"testing"
	"time"
)

func fptr(f float64) *float64 { return &f }

func TestMaskAccountNumber(t *testing.T) {
	tests := []struct {
		name string
		acct string
		want string
	}{
		{name: "plain number", acct: "123456789272", want: "********9272"},
		{name: "formatted number", acct: "12-3456-789272", want: "********9272"},
		{name: "exactly four digits", acct: "9272", want: "9272"},
		{name: "short", acct: "42", want: "42"},
		{name: "empty", acct: "", want: ""},
		{name: "no digits", acct: "N/A", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAccountNumber(tt.acct); got != tt.want {
				t.Errorf("MaskAccountNumber(%q) = %q, want %q", tt.acct, got, tt.want)
			}
		})
	}
}

func TestCheckBalance(t *testing.T) {
	tests := []struct {
		name     string
		summary  *Summary
		warnings int
	}{
		{
			name: "consistent",
			summary: &Summary{
				OpeningBalance: fptr(42000),
				ClosingBalance: fptr(38500),
				TotalCredits:   fptr(30000),
				TotalDebits:    fptr(33500),
			},
			warnings: 0,
		},
		{
			name: "drift within tolerance",
			summary: &Summary{
				OpeningBalance: fptr(100),
				ClosingBalance: fptr(100.80),
				TotalCredits:   fptr(50),
				TotalDebits:    fptr(50),
			},
			warnings: 0,
		},
		{
			name: "mismatch",
			summary: &Summary{
				OpeningBalance: fptr(100),
				ClosingBalance: fptr(500),
				TotalCredits:   fptr(50),
				TotalDebits:    fptr(50),
			},
			warnings: 1,
		},
		{
			name:     "missing figures",
			summary:  &Summary{OpeningBalance: fptr(100)},
			warnings: 0,
		},
		{
			name:     "nil summary",
			summary:  nil,
			warnings: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.summary.CheckBalance()
			if len(got) != tt.warnings {
				t.Fatalf("CheckBalance() = %v, want %d warnings", got, tt.warnings)
			}
			if tt.warnings > 0 && !strings.Contains(got[0], "balance mismatch") {
				t.Errorf("warning %q should name the mismatch", got[0])
			}
		})
	}
}

func TestCountDuplicates(t *testing.T) {
	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{Date: day, Amount: -500, Description: "ATM Withdrawal"},
		{Date: day, Amount: -500, Description: "atm withdrawal"},
		{Date: day, Amount: -500, Description: "Grocery Mart"},
		{Type: "DEBIT", ID: "A1", Amount: -10},
		{Type: "DEBIT", ID: "A1", Amount: -10},
		{Type: "DEBIT", ID: "B2", Amount: -10},
	}

	if got := CountDuplicates(txs); got != 2 {
		t.Errorf("CountDuplicates() = %d, want 2", got)
	}
	if got := CountDuplicates(nil); got != 0 {
		t.Errorf("CountDuplicates(nil) = %d, want 0", got)
	}
}

func TestAverageDailyBalance(t *testing.T) {
	txs := []Transaction{
		{Date: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), BalanceAfter: fptr(72000)},
		{Date: time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC), BalanceAfter: fptr(38500)},
	}

	got, ok := AverageDailyBalance(txs)
	if !ok {
		t.Fatal("AverageDailyBalance() ok = false, want true")
	}
	// 72000 held for 9 days, 38500 for the final day, over a 10-day span.
	want := 68650.0
	if got != want {
		t.Errorf("AverageDailyBalance() = %v, want %v", got, want)
	}
}

func TestAverageDailyBalanceNoDatedBalances(t *testing.T) {
	txs := []Transaction{
		{Amount: 100},
		{Date: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), Amount: -50},
		{BalanceAfter: fptr(10)},
	}
	if _, ok := AverageDailyBalance(txs); ok {
		t.Error("AverageDailyBalance() ok = true, want false without dated balances")
	}
}

func TestTransactionTypePredicates(t *testing.T) {
	if !(Transaction{Type: "credit"}).IsCredit() || !(Transaction{Type: "CREDIT"}).IsCredit() {
		t.Error("IsCredit should match case-insensitively")
	}
	if !(Transaction{Type: "Debit"}).IsDebit() {
		t.Error("IsDebit should match case-insensitively")
	}
	if (Transaction{Type: "TRANSFER"}).IsCredit() || (Transaction{Type: "TRANSFER"}).IsDebit() {
		t.Error("unrelated types must match neither predicate")
	}
}
