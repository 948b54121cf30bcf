package domain

// Insight is one derived fact about the transaction set. Confidence is in
// [0,1]; heuristic classifications that could not be confirmed are emitted
// with low confidence rather than suppressed.
type Insight struct {
	Kind       string  `json:"kind"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Insight kinds produced by the aggregator.
const (
	InsightTotals     = "totals"
	InsightAvgBalance = "average_balance"
	InsightSalary     = "salary"
	InsightSpending   = "spending"
	InsightEmpty      = "no_transactions"
)

// QualityReport rates an extraction pass. Completeness is the share of
// matcher candidates that survived validation; warnings are independent
// observations about the input and the derived records.
type QualityReport struct {
	Completeness float64  `json:"completeness"`
	Warnings     []string `json:"warnings"`
	Mode         string   `json:"mode,omitempty"`
}

// ResultBundle is the only object returned to external callers. It owns all
// nested data; callers may discard the input text as soon as it is returned.
// Transactions are serialized as a sibling of fields, not nested under it.
type ResultBundle struct {
	Fields       *AccountFields `json:"fields"`
	Transactions []Transaction  `json:"transactions"`
	Insights     []Insight      `json:"insights"`
	Quality      QualityReport  `json:"quality"`
}
