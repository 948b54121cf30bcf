// Package extract recognizes transaction-shaped substrings in free text and
// turns them into validated transaction records. It is pure computation:
// no I/O, no retained state, safe for concurrent use.
package extract

import (
	"regexp"
	"strings"
)

// Candidate is an unvalidated transaction-shaped match. Offsets are byte
// positions into the scanned text. Candidates are never mutated after the
// matcher emits them.
type Candidate struct {
	Type      string
	RawAmount string
	ID        string
	Start     int
	End       int
}

// tripleRe matches the minimal in-order span TXN: -> AMT: -> ID: within a
// single line. The [^\n] gaps bound the window to the line and tolerate any
// delimiter junk between the fields; non-greedy repetition keeps the span
// minimal. Marker keywords are case-sensitive, payload case is preserved.
var tripleRe = regexp.MustCompile(`TXN:([A-Za-z]+)[^\n]*?AMT:([0-9][0-9,]*(?:\.[0-9]+)?)[^\n]*?ID:([A-Za-z0-9]+)`)

// FindTransactions scans text for transaction triples and returns the
// candidates in document order. Matches are non-overlapping; the scan
// resumes immediately after each successful match, so multiple triples on
// one line are all captured. A line with missing, truncated, or out-of-order
// markers simply contributes no candidates. Re-running on the same text
// yields identical results.
func FindTransactions(text string) []Candidate {
	var cands []Candidate
	pos := 0
	for pos < len(text) {
		m := tripleRe.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		// A dangling TXN: whose own triple is truncated must not absorb a
		// later complete triple on the same line. When another TXN: sits
		// between the matched TXN: and the matched AMT:, re-anchor the scan
		// at the last such marker so the innermost triple wins.
		amtMarker := pos + m[4] - len("AMT:")
		if last := strings.LastIndex(text[pos+m[0]:amtMarker], "TXN:"); last > 0 {
			pos += m[0] + last
			continue
		}
		cands = append(cands, Candidate{
			Type:      text[pos+m[2] : pos+m[3]],
			RawAmount: text[pos+m[4] : pos+m[5]],
			ID:        text[pos+m[6] : pos+m[7]],
			Start:     pos + m[0],
			End:       pos + m[1],
		})
		pos += m[1]
	}
	return cands
}

// Tuple is the minimal (type, amount, id) view of a validated transaction.
type Tuple struct {
	Type   string
	Amount float64
	ID     string
}

// Tuples extracts and validates transactions from text and returns them as
// ordered (type, amount, id) tuples. The result is empty, never nil-panicky,
// when the text contains no valid entries.
func Tuples(text string) []Tuple {
	txs := ValidateAll(FindTransactions(text), false)
	tuples := make([]Tuple, 0, len(txs))
	for _, tx := range txs {
		tuples = append(tuples, Tuple{Type: tx.Type, Amount: tx.Amount, ID: tx.ID})
	}
	return tuples
}
