package insight

// Config holds the tunable thresholds behind the heuristic classifications.
// The detection logic is inherently fuzzy; keeping the knobs here lets tests
// tighten or loosen them instead of relying on magic numbers.
type Config struct {
	// SalaryTolerance is the relative amount difference under which two
	// credits count as a recurrence of the same payment.
	SalaryTolerance float64

	// MonthMinDays and MonthMaxDays bound what "roughly a month apart"
	// means for recurring credits.
	MonthMinDays int
	MonthMaxDays int

	// SalaryKeywords flag a credit as salary-like regardless of recurrence
	// when one appears in its type, id, description, or category.
	SalaryKeywords []string

	// CategoryKeywords maps a spending category to the tokens that select
	// it. Debits matching none of them fall into "uncategorized".
	CategoryKeywords map[string][]string
}

// DefaultConfig returns the thresholds used in production.
func DefaultConfig() Config {
	return Config{
		SalaryTolerance: 0.01,
		MonthMinDays:    27,
		MonthMaxDays:    33,
		SalaryKeywords:  []string{"salary", "sal ", "payroll", "wages"},
		CategoryKeywords: map[string][]string{
			"atm":       {"atm", "cash withdrawal"},
			"transfers": {"transfer", "neft", "imps", "upi"},
			"card":      {"pos", "card", "swipe"},
			"housing":   {"rent", "mortgage", "emi"},
			"utilities": {"electricity", "water bill", "broadband", "mobile recharge"},
			"groceries": {"grocery", "supermarket", "mart"},
			"fees":      {"fee", "charge", "penalty"},
			"fuel":      {"fuel", "petrol", "diesel"},
		},
	}
}
