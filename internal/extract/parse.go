// Package extract turns receipt photos into structured line items using the
// Gemini vision API. The model's output contract is loose: free text
// expected to contain one JSON object with an "items" array, often wrapped
// in a markdown code fence. Parsing is deliberately forgiving.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/splitroom-app/backend/internal/domain"
)

// ParseReceipt parses raw model output into a normalized domain.Receipt.
// After normalization every item carries a stable id and an empty tags
// slice; tag state belongs to participants, never to the model. Returns an
// error wrapping domain.ErrUpstream when no JSON object can be recovered
// from the text.
func ParseReceipt(text string) (domain.Receipt, error) {
	payload := stripFences(text)

	var receipt domain.Receipt
	if err := json.Unmarshal([]byte(payload), &receipt); err != nil {
		// The model sometimes pads the object with prose. Retry on the
		// outermost brace-delimited span before giving up.
		inner, ok := braceSpan(payload)
		if !ok {
			return domain.Receipt{}, fmt.Errorf("extract: response is not valid JSON: %w", domain.ErrUpstream)
		}
		if err := json.Unmarshal([]byte(inner), &receipt); err != nil {
			return domain.Receipt{}, fmt.Errorf("extract: response is not valid JSON: %w", domain.ErrUpstream)
		}
	}

	if receipt.Items == nil {
		receipt.Items = []domain.Item{}
	}
	for i := range receipt.Items {
		if receipt.Items[i].ID == "" {
			receipt.Items[i].ID = uuid.NewString()
		}
		// The model sometimes invents a tags field of its own. Tagging
		// starts empty regardless; only participants assign tags.
		receipt.Items[i].Tags = []string{}
	}
	return receipt, nil
}

// stripFences removes a wrapping markdown code fence (``` or ```json) from
// the text, if present. Text without fences passes through trimmed.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line ("```" or "```json").
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// braceSpan returns the substring from the first '{' to the last '}'.
func braceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
