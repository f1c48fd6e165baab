package extract

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jmorrow/designdeck/internal/types"
)

// Scan is the last-resort extraction strategy. It walks the text for known
// field names instead of parsing structure, so it can salvage a message and
// artifact from output that is beyond repair. The artifact fields are only
// searched past the artifact key so members of a nested state object or the
// message text are never misattributed. Returns false when not even a
// message can be recovered.
func Scan(text string) (*types.ParsedResponse, bool) {
	msgStart := stringValueStart(text, "message", 0)
	if msgStart < 0 {
		return nil, false
	}

	rawMsg, _ := readRawString(text, msgStart)
	message := decodeScanned(rawMsg)
	if strings.TrimSpace(message) == "" {
		return nil, false
	}

	resp := &types.ParsedResponse{Message: message}

	artIdx := keyIndex(text, "artifact", 0)
	if artIdx < 0 {
		return resp, true
	}

	artifactType := scanStringField(text, "type", artIdx)
	title := scanStringField(text, "title", artIdx)
	content := scanStringField(text, "content", artIdx)

	// A scanned artifact is only trusted when its type is a known
	// identifier and the content is long enough to be real output rather
	// than a truncation stub.
	if !types.ValidArtifactType(artifactType) || utf8.RuneCountInString(content) < types.MinContentChars {
		return resp, true
	}

	if title == "" {
		title = artifactType
	}
	if utf8.RuneCountInString(title) > types.MaxTitleChars {
		title = string([]rune(title)[:types.MaxTitleChars])
	}

	resp.Artifact = &types.ParsedArtifact{
		Type:    artifactType,
		Title:   title,
		Content: content,
		Status:  types.ParsedStatusDraft,
	}
	return resp, true
}

// scanStringField reads the decoded value of a string field found at or
// after offset from.
func scanStringField(text, key string, from int) string {
	start := stringValueStart(text, key, from)
	if start < 0 {
		return ""
	}
	raw, _ := readRawString(text, start)
	return decodeScanned(raw)
}

// keyIndex locates a JSON key (its opening quote) at or after offset from.
// The match must be followed by a colon and must not itself be an escaped
// quote inside another string. Returns -1 when not found.
func keyIndex(s, key string, from int) int {
	needle := `"` + key + `"`
	search := from
	for search < len(s) {
		p := strings.Index(s[search:], needle)
		if p < 0 {
			return -1
		}
		p += search
		if p > 0 && s[p-1] == '\\' {
			search = p + 1
			continue
		}
		i := p + len(needle)
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i < len(s) && s[i] == ':' {
			return p
		}
		search = p + len(needle)
	}
	return -1
}

// stringValueStart locates a string-valued field and returns the index of
// the first character of its value (past the opening quote), or -1.
func stringValueStart(s, key string, from int) int {
	p := keyIndex(s, key, from)
	if p < 0 {
		return -1
	}
	i := p + len(key) + 2 // past the quoted key
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i >= len(s) || s[i] != ':' {
		return -1
	}
	i++
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i >= len(s) || s[i] != '"' {
		return -1
	}
	return i + 1
}

// readRawString collects a string value verbatim (escapes preserved) from
// start until the first unescaped quote. terminated is false when the value
// runs to end of input, which happens with truncated streams.
func readRawString(s string, start int) (raw string, terminated bool) {
	escaped := false
	for i := start; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		c := s[i]
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			return s[start:i], true
		}
	}
	return s[start:], false
}

// decodeScanned turns a raw scanned span into its string value. Well-formed
// spans go through the strict JSON decoder; spans with raw control
// characters or a trailing cut-off escape are decoded leniently.
func decodeScanned(raw string) string {
	if decoded, err := strconv.Unquote(`"` + raw + `"`); err == nil {
		return decoded
	}

	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			break
		}
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		default:
			b.WriteByte('\\')
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
