package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiStatementParser implements StatementParser on top of the Gemini API.
// It expects the model to return a STRICT JSON object with the statement
// fields, summary, and transactions.
type GeminiStatementParser struct {
	model string
}

// NewGeminiStatementParser returns a parser using the given model name, or
// DefaultModelName when empty.
func NewGeminiStatementParser(model string) *GeminiStatementParser {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiStatementParser{model: model}
}

func (p *GeminiStatementParser) ParseStatement(ctx context.Context, statementText string) (map[string]interface{}, error) {
	basePrompt :=
		"You are a bank statement parser for plain-text statements.\n\n" +
			"Task:\n" +
			"- Extract the account fields, summary, and ALL transactions from the statement below.\n" +
			"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
			"- Output a single JSON object with these keys:\n\n" +
			"\"fields\": object with:\n" +
			"- \"bank_name\": string or null\n" +
			"- \"account_holder_name\": string or null\n" +
			"- \"account_number\": string or null\n" +
			"- \"statement_month\": string or null (e.g. \"September 2025\")\n" +
			"- \"account_type\": string or null (e.g. \"SAVINGS\")\n" +
			"- \"currency\": string or null (e.g. \"INR\")\n\n" +
			"\"summary\": object with numbers or nulls:\n" +
			"- \"opening_balance\", \"closing_balance\", \"total_credits\", \"total_debits\"\n\n" +
			"\"transactions\": array of objects, each with:\n" +
			"- \"date\": string \"YYYY-MM-DD\" or null\n" +
			"- \"description\": string\n" +
			"- \"amount\": number (positive for money IN, negative for money OUT)\n" +
			"- \"balance\": number or null (running balance after the entry)\n" +
			"- \"category\": string or null\n\n"

	rulesPrompt :=
		"Rules:\n" +
			"- If the statement has separate credit/debit columns, convert to a single signed \"amount\".\n" +
			"- If a value cannot be determined, set it to null. Never invent values.\n" +
			"Return ONLY valid raw JSON.\n" +
			"Do NOT wrap the response in code fences.\n" +
			"Do NOT use ```json or any Markdown.\n" +
			"Output must begin with \"{\" and end with \"}\".\n\n"

	fullPrompt := basePrompt + rulesPrompt + "Statement:\n" + statementText

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("ParseStatement: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: fullPrompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("ParseStatement: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("ParseStatement: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("ParseStatement: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	return parsed, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there's still junk around the JSON object, keep only from the first
	// '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
