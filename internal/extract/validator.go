package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/finsight-dev/finsight/internal/domain"
)

var idRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Validate enforces the structural invariants on a candidate and produces a
// transaction. The returned error wraps one of the package sentinels so the
// caller can tell why the candidate was rejected.
func Validate(c Candidate) (domain.Transaction, error) {
	typ := strings.TrimSpace(c.Type)
	if typ == "" {
		return domain.Transaction{}, fmt.Errorf("%w: candidate at offset %d", ErrEmptyType, c.Start)
	}
	if !idRe.MatchString(c.ID) {
		return domain.Transaction{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, c.ID)
	}
	amount, err := NormalizeAmount(c.RawAmount)
	if err != nil {
		return domain.Transaction{}, err
	}

	f, _ := amount.Float64()
	return domain.Transaction{
		Type:   typ,
		Amount: f,
		ID:     c.ID,
		Source: domain.SourcePattern,
	}, nil
}

// ValidateAll validates candidates in order, silently dropping any that fail
// an invariant: extraction returns fewer rows on partial bad input, never an
// error. Identical triples at different offsets all count unless uniqueByID
// is set, in which case the first occurrence per id wins.
func ValidateAll(cands []Candidate, uniqueByID bool) []domain.Transaction {
	txs := make([]domain.Transaction, 0, len(cands))
	var seen map[string]bool
	if uniqueByID {
		seen = make(map[string]bool, len(cands))
	}
	for _, c := range cands {
		tx, err := Validate(c)
		if err != nil {
			continue
		}
		if uniqueByID {
			if seen[tx.ID] {
				continue
			}
			seen[tx.ID] = true
		}
		txs = append(txs, tx)
	}
	return txs
}
