// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock extracts the JSON payload from a model response. Models wrap
// JSON in ```json fences, lead with conversational preamble, or append
// trailing commentary even when instructed not to; all three are stripped.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		// Handle generic ``` ... ``` blocks
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	// Cut preamble before the first JSON value and commentary after it
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	candidate := text[start:]
	var extracted string
	if candidate[0] == '{' {
		extracted = extractJSONObject(candidate)
	} else {
		extracted = extractJSONArray(candidate)
	}
	if extracted != "" {
		return extracted
	}
	return text
}

// extractJSONObject returns the balanced JSON object at the start of s, or ""
// when s does not begin with a complete object. Braces inside strings and
// escaped quotes do not affect the depth count.
func extractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

// extractJSONArray returns the balanced JSON array at the start of s, or ""
// when s does not begin with a complete array.
func extractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

func extractBalanced(s string, openCh, closeCh byte) string {
	if len(s) == 0 || s[0] != openCh {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			if inString {
				escaped = true
			}
		case c == '"':
			inString = !inString
		case inString:
			// Delimiters inside strings are literal text
		case c == openCh:
			depth++
		case c == closeCh:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
