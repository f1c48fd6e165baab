package extract

import "strings"

// Repair mends structurally broken JSON from a cut-off or sloppy model
// response. Unescaped quotes embedded in the artifact content value are
// escaped, a content value left open at end of input gets a closing quote
// and a synthesized draft status, and unmatched braces are balanced. The
// second return reports whether anything changed.
func Repair(text string) (string, bool) {
	repaired, contentChanged := repairContent(text)
	balanced, braceChanged := balance(repaired)
	if !contentChanged && !braceChanged {
		return text, false
	}
	return balanced, true
}

// repairContent walks the artifact content value character by character,
// escaping embedded quotes that cannot be value terminators. Truncated
// streams leave the value open at end of input; in that case the string is
// closed and a draft status member is appended so the artifact object stays
// well formed once braces are balanced.
func repairContent(text string) (string, bool) {
	artIdx := keyIndex(text, "artifact", 0)
	if artIdx < 0 {
		return text, false
	}
	start := stringValueStart(text, "content", artIdx)
	if start < 0 {
		return text, false
	}

	var b strings.Builder
	b.WriteString(text[:start])

	changed := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' {
			if i == len(text)-1 {
				// Drop a dangling escape at end of input.
				changed = true
				break
			}
			b.WriteByte(c)
			escaped = true
			continue
		}
		if c != '"' {
			b.WriteByte(c)
			continue
		}
		if valueEndsAt(text, i+1) {
			if !changed {
				return text, false
			}
			b.WriteString(text[i:])
			return b.String(), true
		}
		// Embedded quote the model forgot to escape.
		b.WriteString(`\"`)
		changed = true
	}

	b.WriteString(`","status":"draft"`)
	return b.String(), true
}

// valueEndsAt reports whether a quote just before position j plausibly
// terminates a string value: end of input, a closing brace, or a comma that
// introduces the next key.
func valueEndsAt(s string, j int) bool {
	for j < len(s) && isSpace(s[j]) {
		j++
	}
	if j >= len(s) {
		return true
	}
	switch s[j] {
	case '}':
		return true
	case ',':
		j++
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		return j >= len(s) || s[j] == '"'
	}
	return false
}

// balance closes an open string and appends missing closing braces. Brace
// counting skips braces inside string values. Input with surplus closers is
// returned unchanged; appending openers could not fix it.
func balance(text string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		if escaped {
			escaped = false
			continue
		}
		c := text[i]
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		}
	}

	if depth <= 0 && !inString {
		return text, false
	}

	out := text
	if inString {
		out += `"`
	}
	trimmed := strings.TrimRight(out, " \t\r\n")
	if strings.HasSuffix(trimmed, ",") {
		out = strings.TrimSuffix(trimmed, ",")
	}
	if depth > 0 {
		out += strings.Repeat("}", depth)
	}
	return out, true
}
