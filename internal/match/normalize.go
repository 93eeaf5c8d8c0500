package match

import (
	"strings"
	"unicode"
)

// Mode selects how two field names are considered equal.
type Mode int

const (
	// Exact requires byte-identical names.
	Exact Mode = iota
	// Normalized compares names after NormalizeIdent.
	Normalized
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Normalized:
		return "normalized"
	default:
		return "unknown"
	}
}

// Equal reports whether the two names match under the mode.
func (m Mode) Equal(a, b string) bool {
	if m == Normalized {
		return NormalizeIdent(a) == NormalizeIdent(b)
	}

	return a == b
}

// NormalizeIdent normalizes an identifier for fuzzy matching: CamelCase is
// tokenized, tokens are lower-cased and separators are dropped.
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// NormalizeIdentWithSuffixStrip normalizes and strips one common suffix
// token (timestamp, ids, utc, id, at).
func NormalizeIdentWithSuffixStrip(s string) string {
	normalized := NormalizeIdent(s)

	for _, suffix := range []string{"timestamp", "ids", "utc", "id", "at"} {
		if strings.HasSuffix(normalized, suffix) && len(normalized) > len(suffix) {
			return strings.TrimSuffix(normalized, suffix)
		}
	}

	return normalized
}

// TokenizeIdent splits an identifier into lowercase tokens.
//   - "OrderID" -> ["order", "id"]
//   - "XMLParser" -> ["xml", "parser"]
//   - "full_name" -> ["full", "name"]
func TokenizeIdent(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()

			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// startsToken reports a lower->upper transition or the end of an acronym
// ("XMLParser" splits before 'P').
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
