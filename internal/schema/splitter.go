package schema

import (
	"iter"
	"strings"
)

// Statement is one top-level SQL statement with comments blanked out.
type Statement struct {
	Index int
	Text  string
}

type scanState int

const (
	stateNormal scanState = iota
	stateSingleQuote
	stateDoubleQuote
	stateLineComment
	stateBlockComment
	stateDollarQuote
)

// Statements lazily splits DDL text on semicolons that sit outside string
// literals, quoted identifiers, comments and dollar-quoted bodies. Comments
// are replaced by a single space. A psql meta-command (a line starting with a
// backslash, such as \restrict or \connect) is a statement of its own. An
// unterminated quote or comment at the end of input is returned as a final
// best-effort statement.
func Statements(text string) iter.Seq[Statement] {
	return func(yield func(Statement) bool) {
		var (
			current   strings.Builder
			escapes   bool
			depth     int
			dollarTag string
			index     int
		)
		state := stateNormal

		emit := func() bool {
			stmt := strings.TrimSpace(current.String())
			current.Reset()
			if stmt == "" {
				return true
			}
			ok := yield(Statement{Index: index, Text: stmt})
			index++
			return ok
		}

		for i := 0; i < len(text); i++ {
			c := text[i]

			switch state {
			case stateSingleQuote:
				current.WriteByte(c)
				if escapes && c == '\\' && i+1 < len(text) {
					i++
					current.WriteByte(text[i])
					continue
				}
				if c == '\'' {
					if i+1 < len(text) && text[i+1] == '\'' {
						i++
						current.WriteByte(text[i])
						continue
					}
					state = stateNormal
				}

			case stateDoubleQuote:
				current.WriteByte(c)
				if c == '"' {
					if i+1 < len(text) && text[i+1] == '"' {
						i++
						current.WriteByte(text[i])
						continue
					}
					state = stateNormal
				}

			case stateLineComment:
				if c == '\n' {
					current.WriteByte('\n')
					state = stateNormal
				}

			case stateBlockComment:
				if c == '/' && i+1 < len(text) && text[i+1] == '*' {
					depth++
					i++
				} else if c == '*' && i+1 < len(text) && text[i+1] == '/' {
					depth--
					i++
					if depth == 0 {
						state = stateNormal
					}
				}

			case stateDollarQuote:
				if c == '$' && strings.HasPrefix(text[i:], dollarTag) {
					current.WriteString(dollarTag)
					i += len(dollarTag) - 1
					state = stateNormal
					continue
				}
				current.WriteByte(c)

			default:
				switch {
				case c == ';':
					if !emit() {
						return
					}
				case c == '\\' && atLineStart(text, i):
					line := text[i:]
					if end := strings.IndexByte(line, '\n'); end >= 0 {
						line = line[:end]
					}
					if !yield(Statement{Index: index, Text: strings.TrimSpace(line)}) {
						return
					}
					index++
					i += len(line) - 1
				case c == '\'':
					escapes = i > 0 && (text[i-1] == 'E' || text[i-1] == 'e') && (i < 2 || !isIdentByte(text[i-2]))
					state = stateSingleQuote
					current.WriteByte(c)
				case c == '"':
					state = stateDoubleQuote
					current.WriteByte(c)
				case c == '-' && i+1 < len(text) && text[i+1] == '-':
					state = stateLineComment
					current.WriteByte(' ')
					i++
				case c == '/' && i+1 < len(text) && text[i+1] == '*':
					state = stateBlockComment
					depth = 1
					current.WriteByte(' ')
					i++
				case c == '$' && (i == 0 || !isIdentByte(text[i-1])):
					if tag := dollarTagAt(text, i); tag != "" {
						dollarTag = tag
						state = stateDollarQuote
						current.WriteString(tag)
						i += len(tag) - 1
						continue
					}
					current.WriteByte(c)
				default:
					current.WriteByte(c)
				}
			}
		}

		emit()
	}
}

// dollarTagAt returns the opening tag ($$ or $name$) starting at i, or "".
func dollarTagAt(text string, i int) string {
	for j := i + 1; j < len(text); j++ {
		c := text[j]
		if c == '$' {
			return text[i : j+1]
		}
		if !isIdentByte(c) || (j == i+1 && c >= '0' && c <= '9') {
			return ""
		}
	}
	return ""
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c >= 0x80
}

// atLineStart reports whether only spaces or tabs precede position i on its line.
func atLineStart(text string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch text[j] {
		case ' ', '\t':
			continue
		case '\n', '\r':
			return true
		default:
			return false
		}
	}
	return true
}
