package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// groupedIntRe accepts integer parts using size-3 comma grouping, e.g.
	// "1,250" or "12,345,678". A comma anywhere else is not a separator.
	groupedIntRe = regexp.MustCompile(`^[0-9]{1,3}(?:,[0-9]{3})+$`)
	plainRe      = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?$`)
)

// NormalizeAmount converts a raw amount token into a decimal value. It
// strips currency symbols and any other leading non-digit glyphs, removes
// comma thousands separators positioned between digit groups of size 3, and
// accepts at most one decimal point. Comma is always a thousands separator
// and dot always the decimal separator, regardless of locale.
func NormalizeAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeftFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: no digits in %q", ErrMalformedAmount, raw)
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, fmt.Errorf("%w: multiple decimal points in %q", ErrMalformedAmount, raw)
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if strings.Contains(intPart, ",") {
		if !groupedIntRe.MatchString(intPart) {
			return decimal.Zero, fmt.Errorf("%w: bad thousands grouping in %q", ErrMalformedAmount, raw)
		}
		intPart = strings.ReplaceAll(intPart, ",", "")
	}

	cleaned := intPart
	if hasFrac {
		cleaned = intPart + "." + fracPart
	}
	if !plainRe.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("%w: %q is not numeric after separator stripping", ErrMalformedAmount, raw)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrMalformedAmount, raw, err)
	}
	return d, nil
}

// dateFormats is tried in order; first match wins.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// NormalizeDate parses a raw date token against a fixed list of known
// formats. The second return value is false when no format matches; callers
// must treat that as "date unknown", never as the zero time or epoch.
func NormalizeDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
