package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// Model replies arrive wrapped in prose, markdown fences, or with escaped
// quotes from double-encoding. These helpers dig the JSON out.

var ErrNoJSON = errors.New("no JSON value found in reply")

// StripFences removes ```json / ``` markers anywhere in the text.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ExtractObject locates the first balanced {...} in the reply and decodes
// it into v. Two decode strategies are tried: the raw slice, then the
// slice with escaped quotes unescaped (models occasionally double-encode).
func ExtractObject(reply string, v interface{}) error {
	return extract(reply, '{', '}', v)
}

// ExtractArray does the same for the first balanced [...].
func ExtractArray(reply string, v interface{}) error {
	return extract(reply, '[', ']', v)
}

func extract(reply string, open, close byte, v interface{}) error {
	text := StripFences(reply)
	if err := scanDecode(text, open, close, v); err == nil {
		return nil
	}
	// Second strategy: undo one level of quote escaping and re-scan. A
	// double-encoded reply defeats the balanced scan itself (the leading
	// escaped quote opens a string that never closes), so the repair must
	// happen before scanning, not after.
	repaired := strings.ReplaceAll(text, `\"`, `"`)
	return scanDecode(repaired, open, close, v)
}

func scanDecode(text string, open, close byte, v interface{}) error {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return ErrNoJSON
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return json.Unmarshal([]byte(text[start:i+1]), v)
			}
		}
	}
	return ErrNoJSON
}
