package domain

import "strings"

// AccountFields is statement-header metadata owned by the caller or the AI
// collaborator. The aggregator reads it, never mutates it.
type AccountFields struct {
	BankName            string `json:"bank_name,omitempty"`
	HolderName          string `json:"account_holder_name,omitempty"`
	AccountNumberMasked string `json:"account_number_masked,omitempty"`
	StatementPeriod     string `json:"statement_period,omitempty"`
	AccountType         string `json:"account_type,omitempty"`
	Currency            string `json:"currency,omitempty"`

	Summary *Summary `json:"summary,omitempty"`
}

// Summary holds statement-level balances when the source provides them.
type Summary struct {
	OpeningBalance      *float64 `json:"opening_balance,omitempty"`
	ClosingBalance      *float64 `json:"closing_balance,omitempty"`
	TotalCredits        *float64 `json:"total_credits,omitempty"`
	TotalDebits         *float64 `json:"total_debits,omitempty"`
	AverageDailyBalance *float64 `json:"average_daily_balance,omitempty"`
}

// MaskAccountNumber keeps the last four digits of an account number and
// replaces the rest with asterisks. Non-digit characters are ignored.
// Numbers of four digits or fewer are returned as their digits only.
func MaskAccountNumber(acct string) string {
	var b strings.Builder
	for _, r := range acct {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
