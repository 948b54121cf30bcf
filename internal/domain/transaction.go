package domain

import (
	"strings"
	"time"
)

// Source tags which extraction path produced a transaction. Pattern-derived
// and model-derived records converge on the same Transaction shape before
// insight derivation, so downstream code never branches on the source.
type Source string

const (
	// SourcePattern marks transactions recovered by the marker-based matcher.
	SourcePattern Source = "PATTERN"
	// SourceModel marks transactions supplied by the AI collaborator.
	SourceModel Source = "MODEL"
)

// Transaction is one validated statement entry. Amount keeps the sign the
// source gave it (model output uses negative for money out); pattern-derived
// amounts are unsigned and the type token carries the direction.
type Transaction struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	ID       string  `json:"id,omitempty"`
	Currency string  `json:"currency,omitempty"`

	Date         time.Time `json:"date,omitzero"` // zero means unknown, never epoch
	Description  string    `json:"description,omitempty"`
	BalanceAfter *float64  `json:"balance_after,omitempty"`
	Category     string    `json:"category,omitempty"`

	Source Source `json:"source,omitempty"`
}

// IsCredit reports whether the type token equals "credit", ignoring case.
func (t Transaction) IsCredit() bool {
	return strings.EqualFold(strings.TrimSpace(t.Type), "credit")
}

// IsDebit reports whether the type token equals "debit", ignoring case.
func (t Transaction) IsDebit() bool {
	return strings.EqualFold(strings.TrimSpace(t.Type), "debit")
}

// HasDate reports whether the transaction carries a known date.
func (t Transaction) HasDate() bool {
	return !t.Date.IsZero()
}
