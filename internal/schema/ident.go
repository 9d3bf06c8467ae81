package schema

import (
	"strings"

	"github.com/Rana718/pgdiagram/internal/types"
)

// skipQuoted returns the index just past the quoted run that starts at i.
// Doubled quote characters are treated as escapes.
func skipQuoted(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

// splitTopLevel splits s on sep where sep is outside parentheses and quotes.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0

	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == '\'' || c == '"':
			i = skipQuoted(s, i)
			continue
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
		i++
	}

	return append(parts, s[start:])
}

// fields splits s on whitespace outside parentheses and quotes.
func fields(s string) []string {
	var out []string
	depth, start := 0, -1

	flush := func(end int) {
		if start >= 0 {
			out = append(out, s[start:end])
			start = -1
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			if start < 0 {
				start = i
			}
			i = skipQuoted(s, i)
			continue
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'):
			flush(i)
			i++
			continue
		}
		if start < 0 {
			start = i
		}
		i++
	}
	flush(len(s))

	return out
}

// matchingParen returns the index of the ')' closing the '(' at open, or -1.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); {
		switch s[i] {
		case '\'', '"':
			i = skipQuoted(s, i)
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// normalizeIdent folds unquoted identifiers to lower case and unquotes
// quoted ones, following PostgreSQL identifier rules.
func normalizeIdent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return strings.ToLower(s)
}

// parseQualifiedName splits [db.][schema.]name. Unqualified names take the
// default schema.
func parseQualifiedName(s, defaultSchema string) types.QualifiedName {
	parts := splitTopLevel(strings.TrimSpace(s), '.')
	for i := range parts {
		parts[i] = normalizeIdent(parts[i])
	}

	switch len(parts) {
	case 1:
		return types.QualifiedName{Schema: defaultSchema, Name: parts[0]}
	default:
		n := len(parts)
		return types.QualifiedName{Schema: parts[n-2], Name: parts[n-1]}
	}
}

// parseColumnList parses "a, b, c" into normalized identifiers. Every
// element must be a plain identifier.
func parseColumnList(s string) ([]string, bool) {
	var cols []string
	for _, part := range splitTopLevel(s, ',') {
		part = strings.TrimSpace(part)
		if !identRegex.MatchString(part) {
			return nil, false
		}
		cols = append(cols, normalizeIdent(part))
	}
	return cols, len(cols) > 0
}

// parseIndexColumns is parseColumnList for index elements, which may carry
// ordering and operator-class options. Expression elements are rejected.
func parseIndexColumns(s string) ([]string, bool) {
	var cols []string
	for _, part := range splitTopLevel(s, ',') {
		toks := fields(part)
		if len(toks) == 0 || !identRegex.MatchString(toks[0]) {
			return nil, false
		}
		cols = append(cols, normalizeIdent(toks[0]))
	}
	return cols, len(cols) > 0
}

func normalizeType(s string) string {
	s = whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
	s = openParenRegex.ReplaceAllString(s, "(")
	s = commaRegex.ReplaceAllString(s, ",")
	return closeParenRegex.ReplaceAllString(s, ")")
}

func upper(tok string) string {
	if strings.HasPrefix(tok, `"`) {
		return tok
	}
	return strings.ToUpper(tok)
}
