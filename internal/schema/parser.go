package schema

import (
	"strings"

	"github.com/Rana718/pgdiagram/internal/types"
)

// Parse runs the splitter and extractors over DDL text and builds the
// Schema. Statements that cannot be used are skipped and reported; Parse
// itself never fails.
func Parse(text, defaultSchema string) (*types.Schema, []Diagnostic) {
	b := NewBuilder()
	var diags []Diagnostic

	for stmt := range Statements(text) {
		switch {
		case createTableStmtRegex.MatchString(stmt.Text):
			table, err := ExtractTable(stmt.Text, defaultSchema)
			if err != nil {
				diags = append(diags, warnf(stmt.Index, "skipped CREATE TABLE: %v", err))
				continue
			}
			b.AddTable(table)

		case alterTableStmtRegex.MatchString(stmt.Text):
			constraints, err := ExtractConstraints(stmt.Text, defaultSchema)
			if err != nil {
				diags = append(diags, warnf(stmt.Index, "skipped ALTER TABLE constraint: %v", err))
			}
			for _, c := range constraints {
				b.AddConstraint(c)
			}

		case createUniqueIndexStmtRegex.MatchString(stmt.Text):
			c, ok := ExtractUniqueIndex(stmt.Text, defaultSchema)
			if !ok {
				diags = append(diags, infof(stmt.Index, "unique index on expressions or partial rows not drawn"))
				continue
			}
			b.AddConstraint(c)

		default:
			diags = append(diags, infof(stmt.Index, "ignored %s statement", statementKind(stmt.Text)))
		}
	}

	s, buildDiags := b.Build()
	diags = append(diags, buildDiags...)

	if s.Len() == 0 {
		diags = append(diags, warnf(-1, "no tables found"))
	}

	return s, diags
}

func statementKind(stmt string) string {
	words := strings.Fields(stmt)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.ToUpper(strings.Join(words, " "))
}
