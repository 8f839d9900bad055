package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the first structured JSON value out of free text and
// decodes it into v. Judgment models wrap JSON in code fences and prose, so
// fences are stripped first, then the first brace- or bracket-delimited span
// is located greedily (first opener to the last closer of the same kind) with
// a balanced-scan retry. Returns false on any decode failure; callers must
// have a deterministic fallback for that case, never an error path.
func ExtractJSON(raw string, v interface{}) bool {
	cleaned := StripCodeFences(raw)

	start := strings.IndexAny(cleaned, "{[")
	if start < 0 {
		return false
	}

	opener := cleaned[start]
	closer := byte('}')
	if opener == '[' {
		closer = ']'
	}

	// Greedy span: matches the original regex behavior of taking everything
	// up to the final closer.
	if end := strings.LastIndexByte(cleaned, closer); end > start {
		if json.Unmarshal([]byte(cleaned[start:end+1]), v) == nil {
			return true
		}
	}

	// Retry with a balanced scan for JSON followed by trailing prose.
	if span, ok := balancedSpan(cleaned[start:], opener, closer); ok {
		if json.Unmarshal([]byte(span), v) == nil {
			return true
		}
	}

	return false
}

// StripCodeFences removes markdown code-fence markers around a model reply
func StripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// balancedSpan returns the prefix of s that forms a balanced opener/closer
// pair, respecting JSON string literals and escapes
func balancedSpan(s string, opener, closer byte) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// string contents never affect depth
		case c == opener:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}
