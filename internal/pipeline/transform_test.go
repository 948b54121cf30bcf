package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformModelOutputAccountsWrapper(t *testing.T) {
	raw := map[string]interface{}{
		"accounts": []interface{}{
			map[string]interface{}{
				"fields": map[string]interface{}{
					"bank_name": "Barclays",
					"currency":  "GBP",
				},
				"transactions": []interface{}{
					map[string]interface{}{
						"description": "COFFEE SHOP",
						"amount":      -3.50,
					},
				},
			},
		},
	}

	fields, txs, err := transformModelOutput(raw)
	require.NoError(t, err)
	assert.Equal(t, "Barclays", fields.BankName)
	require.Len(t, txs, 1)
	assert.Equal(t, "DEBIT", txs[0].Type)
	assert.Equal(t, "GBP", txs[0].Currency)
}

func TestTransformModelOutputBadShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{name: "missing transactions", raw: map[string]interface{}{"fields": map[string]interface{}{}}},
		{name: "transactions not a list", raw: map[string]interface{}{"transactions": "nope"}},
		{name: "empty accounts wrapper", raw: map[string]interface{}{"accounts": []interface{}{}}},
		{name: "fields not an object", raw: map[string]interface{}{"fields": 7, "transactions": []interface{}{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := transformModelOutput(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestTransformModelOutputDropsBadEntries(t *testing.T) {
	raw := map[string]interface{}{
		"transactions": []interface{}{
			"not an object",
			map[string]interface{}{"description": "no amount"},
			map[string]interface{}{"description": "", "amount": 5.0},
			map[string]interface{}{"description": "KEPT", "amount": 5.0, "date": "bogus date"},
		},
	}

	_, txs, err := transformModelOutput(raw)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "KEPT", txs[0].Description)
	assert.False(t, txs[0].HasDate(), "unparseable dates stay unknown, never zero-epoch")
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare json", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fenced no language", raw: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding prose", raw: "Here you go:\n{\"a\":1}\nHope that helps!", want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.raw))
		})
	}
}
