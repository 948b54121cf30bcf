package pipeline

import (
	"fmt"
	"strings"

	"github.com/finsight-dev/finsight/internal/domain"
	"github.com/finsight-dev/finsight/internal/extract"
)

// transformModelOutput converts raw model output into account fields and
// normalized transactions. The top-level shape must hold; individual
// transaction entries that fail a structural check are dropped, mirroring
// how pattern-matched candidates are validated.
func transformModelOutput(rawOutput map[string]interface{}) (*domain.AccountFields, []domain.Transaction, error) {
	// Some models wrap everything under "accounts"; unwrap the first one.
	if accAny, ok := rawOutput["accounts"]; ok {
		accSlice, ok := accAny.([]interface{})
		if !ok || len(accSlice) == 0 {
			return nil, nil, fmt.Errorf("transformModelOutput: 'accounts' is %T or empty, want non-empty array", accAny)
		}
		obj, ok := accSlice[0].(map[string]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("transformModelOutput: accounts[0] is %T, want object", accSlice[0])
		}
		rawOutput = obj
	}

	fields, err := transformFields(rawOutput)
	if err != nil {
		return nil, nil, err
	}

	txAny, ok := rawOutput["transactions"]
	if !ok {
		return nil, nil, fmt.Errorf("transformModelOutput: missing 'transactions' key in model output")
	}
	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("transformModelOutput: 'transactions' is %T, want []interface{}", txAny)
	}

	currency := ""
	if fields != nil {
		currency = fields.Currency
	}

	txs := make([]domain.Transaction, 0, len(txSlice))
	for _, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		tx, ok := transformTransaction(obj, currency)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}

	return fields, txs, nil
}

func transformFields(rawOutput map[string]interface{}) (*domain.AccountFields, error) {
	fields := &domain.AccountFields{}

	if fAny, ok := rawOutput["fields"]; ok && fAny != nil {
		obj, ok := fAny.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transformFields: 'fields' is %T, want object", fAny)
		}
		for key, dst := range map[string]*string{
			"bank_name":           &fields.BankName,
			"account_holder_name": &fields.HolderName,
			"statement_month":     &fields.StatementPeriod,
			"account_type":        &fields.AccountType,
			"currency":            &fields.Currency,
		} {
			v, err := getOptionalStringField(obj, key)
			if err != nil {
				return nil, fmt.Errorf("transformFields: %w", err)
			}
			if v != nil {
				*dst = *v
			}
		}
		acct, err := getOptionalStringField(obj, "account_number")
		if err != nil {
			return nil, fmt.Errorf("transformFields: %w", err)
		}
		if acct != nil {
			fields.AccountNumberMasked = domain.MaskAccountNumber(*acct)
		}
	}

	if sAny, ok := rawOutput["summary"]; ok && sAny != nil {
		obj, ok := sAny.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transformFields: 'summary' is %T, want object", sAny)
		}
		summary := &domain.Summary{}
		for key, dst := range map[string]**float64{
			"opening_balance":       &summary.OpeningBalance,
			"closing_balance":       &summary.ClosingBalance,
			"total_credits":         &summary.TotalCredits,
			"total_debits":          &summary.TotalDebits,
			"average_daily_balance": &summary.AverageDailyBalance,
		} {
			v, err := getOptionalFloat64Field(obj, key)
			if err != nil {
				return nil, fmt.Errorf("transformFields: %w", err)
			}
			*dst = v
		}
		fields.Summary = summary
	}

	return fields, nil
}

// transformTransaction builds one transaction from a model output entry. The
// second return is false when the entry lacks a usable amount or description.
func transformTransaction(obj map[string]interface{}, currency string) (domain.Transaction, bool) {
	amount, err := getFloat64Field(obj, "amount", true)
	if err != nil {
		return domain.Transaction{}, false
	}
	desc, err := getStringField(obj, "description", true)
	if err != nil {
		return domain.Transaction{}, false
	}

	tx := domain.Transaction{
		Amount:      amount,
		Description: desc,
		Currency:    currency,
		Source:      domain.SourceModel,
	}

	if dateStr, err := getOptionalStringField(obj, "date"); err == nil && dateStr != nil {
		if date, ok := extract.NormalizeDate(*dateStr); ok {
			tx.Date = date
		}
	}
	if balance, err := getOptionalFloat64Field(obj, "balance"); err == nil {
		tx.BalanceAfter = balance
	}
	if cat, err := getOptionalStringField(obj, "category"); err == nil && cat != nil {
		tx.Category = *cat
	}

	tx.Type = deriveType(tx)
	return tx, true
}

// deriveType picks CREDIT or DEBIT from the model's category when it says so
// directly, otherwise from the amount sign.
func deriveType(tx domain.Transaction) string {
	switch strings.ToUpper(strings.TrimSpace(tx.Category)) {
	case "CREDIT", "DEBIT":
		return strings.ToUpper(strings.TrimSpace(tx.Category))
	}
	if tx.Amount < 0 {
		return "DEBIT"
	}
	return "CREDIT"
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

func getFloat64Field(m map[string]interface{}, key string, required bool) (float64, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int: // unlikely from encoding/json, but harmless to support
		return float64(val), nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

func getOptionalFloat64Field(m map[string]interface{}, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case float64:
		f := val
		return &f, nil
	case int:
		f := float64(val)
		return &f, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want number or null", key, v)
	}
}
