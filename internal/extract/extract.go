// Package extract pulls a structured JSON payload out of raw assistant
// response text. Responses arrive wrapped in markdown fences, truncated
// mid-stream, or with broken quoting; callers escalate through Clean,
// Repair and Scan before giving up.
package extract

import "strings"

// Clean strips markdown wrapping and trims the text down to the outermost
// JSON object candidate. LLMs often wrap JSON in ```json ... ``` blocks even
// when instructed not to.
func Clean(text string) string {
	text = strings.TrimSpace(text)

	// Prefer an explicit ```json ... ``` block anywhere in the text.
	if idx := strings.Index(text, "```json"); idx >= 0 {
		start := idx + 7 // length of "```json"
		if end := strings.Index(text[start:], "```"); end >= 0 {
			text = text[start : start+end]
		} else {
			// Unterminated fence, common when a stream is cut off.
			text = text[start:]
		}
		text = strings.TrimSpace(text)
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		start := idx + 3 // length of "```"
		rest := text[start:]
		// Skip a language identifier on the first fenced line.
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			firstLine := strings.TrimSpace(rest[:nl])
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				rest = rest[nl+1:]
			}
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		text = strings.TrimSpace(rest)
	}

	// Cut leading prose down to the first opening brace.
	if !strings.HasPrefix(text, "{") {
		if idx := strings.Index(text, "{"); idx >= 0 {
			text = text[idx:]
		}
	}

	// Cut trailing prose after the last closing brace, when one exists.
	if !strings.HasSuffix(text, "}") {
		if idx := strings.LastIndex(text, "}"); idx > 0 {
			text = text[:idx+1]
		}
	}

	return strings.TrimSpace(text)
}
