package assist

import (
	"encoding/json"
	"reflect"
	"strings"
)

// ExtractJSON decodes the JSON value in a model reply into dest.
//
// The reply is first decoded whole, after trimming whitespace and any
// markdown code fence. If that fails, each balanced {...} substring (or
// [...] when dest points to a slice) is tried in order. A reply with no
// decodable value yields ErrUnparseableReply.
func ExtractJSON(reply string, dest any) error {
	cleaned := stripCodeFence(reply)
	if cleaned == "" {
		return ErrUnparseableReply
	}
	if err := json.Unmarshal([]byte(cleaned), dest); err == nil {
		return nil
	}

	opener, closer := byte('{'), byte('}')
	if wantsArray(dest) {
		opener, closer = '[', ']'
	}

	for start := strings.IndexByte(cleaned, opener); start >= 0; {
		end := matchBracket(cleaned, start, opener, closer)
		if end < 0 {
			break
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), dest); err == nil {
			return nil
		}
		next := strings.IndexByte(cleaned[start+1:], opener)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return ErrUnparseableReply
}

func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	} else {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}

func wantsArray(dest any) bool {
	t := reflect.TypeOf(dest)
	if t == nil || t.Kind() != reflect.Pointer {
		return false
	}
	kind := t.Elem().Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

// matchBracket returns the index of the bracket closing the one at start,
// skipping brackets inside string literals. Returns -1 if unbalanced.
func matchBracket(text string, start int, opener, closer byte) int {
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
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
