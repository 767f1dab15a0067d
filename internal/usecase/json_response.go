package usecase

import (
	"encoding/json"
	"strings"

	"github.com/ecosnap/backend/internal/domain"
)

// findJSONObject returns the first balanced {...} span in text. Braces
// inside JSON string literals are ignored, so markdown fences and prose
// around the object are skipped.
func findJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

// decodeJSONResponse decodes the JSON object embedded in a generative
// response into v.
//
// No '{' ... '}' pair at all is ErrInvalidResponseFormat. Braces that never
// balance, or a balanced span that is not valid JSON, is ErrMalformedJSON.
// Either way the raw text travels with the error.
func decodeJSONResponse(text string, v interface{}) error {
	span, ok := findJSONObject(text)
	if !ok {
		open := strings.IndexByte(text, '{')
		end := strings.LastIndexByte(text, '}')
		if open < 0 || end < open {
			return &domain.ResponseParseError{Kind: domain.ErrInvalidResponseFormat, Raw: text}
		}
		// Unbalanced: hand the widest candidate to the decoder for a useful error.
		span = text[open : end+1]
	}

	if err := json.Unmarshal([]byte(span), v); err != nil {
		return &domain.ResponseParseError{Kind: domain.ErrMalformedJSON, Raw: text, Cause: err}
	}
	return nil
}
