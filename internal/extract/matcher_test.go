package extract

import (
	"reflect"
	"testing"
)

func TestFindTransactions(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  []Candidate
		count int
	}{
		{
			name:  "single triple with pipes",
			text:  "TXN:CREDIT | AMT:1,250.50 | ID:ABC123",
			count: 1,
			want: []Candidate{
				{Type: "CREDIT", RawAmount: "1,250.50", ID: "ABC123", Start: 0, End: 37},
			},
		},
		{
			name:  "two triples on one line",
			text:  "TXN:DEBIT AMT:100 ID:AA1 TXN:CREDIT AMT:200 ID:BB2",
			count: 2,
		},
		{
			name:  "missing amount yields nothing",
			text:  "TXN:DEBIT | AMT: | ID:XYZ",
			count: 0,
		},
		{
			name:  "dangling marker does not capture the next triple",
			text:  "TXN:DEBIT | AMT: | ID:XYZ TXN:CREDIT AMT:5 ID:A1",
			count: 1,
			want: []Candidate{
				{Type: "CREDIT", RawAmount: "5", ID: "A1", Start: 26, End: 48},
			},
		},
		{
			name:  "out of order markers yield nothing",
			text:  "AMT:100 TXN:DEBIT ID:XYZ",
			count: 0,
		},
		{
			name:  "lowercase marker is not a marker",
			text:  "txn:CREDIT | AMT:10 | ID:A1",
			count: 0,
		},
		{
			name:  "triple split across lines yields nothing",
			text:  "TXN:CREDIT\nAMT:10 ID:A1",
			count: 0,
		},
		{
			name:  "lowercase payload is preserved",
			text:  "TXN:credit | AMT:10 | ID:abc1",
			count: 1,
			want: []Candidate{
				{Type: "credit", RawAmount: "10", ID: "abc1", Start: 0, End: 29},
			},
		},
		{
			name:  "empty input",
			text:  "",
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindTransactions(tt.text)
			if len(got) != tt.count {
				t.Fatalf("FindTransactions(%q) returned %d candidates, want %d: %+v", tt.text, len(got), tt.count, got)
			}
			if tt.want != nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindTransactions(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFindTransactionsSpansDoNotOverlap(t *testing.T) {
	text := "TXN:DEBIT AMT:100 ID:AA1 TXN:CREDIT AMT:200 ID:BB2"
	got := FindTransactions(text)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].End > got[1].Start {
		t.Errorf("candidate spans overlap: first ends at %d, second starts at %d", got[0].End, got[1].Start)
	}
	if got[0].Start >= got[0].End || got[1].Start >= got[1].End {
		t.Errorf("degenerate spans: %+v", got)
	}
}

func TestFindTransactionsSpanIsMinimal(t *testing.T) {
	text := "TXN:CREDIT junk AMT:50 ID:A1 ID:B2"
	got := FindTransactions(text)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].ID != "A1" {
		t.Errorf("ID = %q, want the first id after the amount", got[0].ID)
	}
	if got[0].End > len("TXN:CREDIT junk AMT:50 ID:A1") {
		t.Errorf("span extends past the first complete triple: end = %d", got[0].End)
	}
}

func TestFindTransactionsIsDeterministic(t *testing.T) {
	text := "TXN:CREDIT | AMT:1,250.50 | ID:ABC123\nTXN:DEBIT AMT:99 ID:ZZ9"
	first := FindTransactions(text)
	second := FindTransactions(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-running on identical input differs: %+v vs %+v", first, second)
	}
}

func TestTuples(t *testing.T) {
	text := "header line\n" +
		"TXN:CREDIT | AMT:1,250.50 | ID:ABC123\n" +
		"TXN:DEBIT | AMT: | ID:XYZ\n" +
		"TXN:DEBIT | AMT:99.99 | ID:ZZ9\n"

	got := Tuples(text)
	want := []Tuple{
		{Type: "CREDIT", Amount: 1250.50, ID: "ABC123"},
		{Type: "DEBIT", Amount: 99.99, ID: "ZZ9"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tuples() = %+v, want %+v", got, want)
	}
}

func TestTuplesEmptyInput(t *testing.T) {
	if got := Tuples(""); len(got) != 0 {
		t.Errorf("Tuples(\"\") = %+v, want empty", got)
	}
}
