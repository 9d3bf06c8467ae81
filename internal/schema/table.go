package schema

import (
	"fmt"
	"strings"

	"github.com/Rana718/pgdiagram/internal/types"
)

// columnKeywords end a column's type and introduce a column constraint.
var columnKeywords = map[string]bool{
	"CONSTRAINT": true,
	"NOT":        true,
	"NULL":       true,
	"DEFAULT":    true,
	"PRIMARY":    true,
	"REFERENCES": true,
	"CHECK":      true,
	"UNIQUE":     true,
	"GENERATED":  true,
	"COLLATE":    true,
	"DEFERRABLE": true,
	"INITIALLY":  true,
}

// generatedWords are skipped after GENERATED (identity and stored columns).
var generatedWords = map[string]bool{
	"ALWAYS":   true,
	"BY":       true,
	"DEFAULT":  true,
	"AS":       true,
	"IDENTITY": true,
	"STORED":   true,
}

// ExtractTable parses a CREATE TABLE statement. Inline and table-level
// PRIMARY KEY, UNIQUE and REFERENCES clauses are returned on the table as
// constraints with Source inline or table.
func ExtractTable(stmt, defaultSchema string) (types.Table, error) {
	m := createTableRegex.FindStringSubmatch(stmt)
	if m == nil {
		return types.Table{}, ErrNotTable
	}

	name := parseQualifiedName(group(createTableRegex, m, "table"), defaultSchema)
	rest := group(createTableRegex, m, "rest")
	if !strings.HasPrefix(rest, "(") {
		return types.Table{}, fmt.Errorf("%w: table %s has no column list", ErrMalformed, name.Key())
	}

	end := matchingParen(rest, 0)
	if end < 0 {
		return types.Table{}, fmt.Errorf("%w: unbalanced parentheses in table %s", ErrMalformed, name.Key())
	}

	table := types.Table{Name: name}

	for _, element := range splitTopLevel(rest[1:end], ',') {
		if element = strings.TrimSpace(element); element == "" {
			continue
		}

		if tm := tableConstraintRegex.FindStringSubmatch(element); tm != nil {
			c, ok, err := parseConstraintBody(group(tableConstraintRegex, tm, "body"), name, defaultSchema)
			if err != nil {
				return types.Table{}, fmt.Errorf("%w: table %s: %v", ErrMalformed, name.Key(), err)
			}
			if ok {
				c.Name = normalizeIdent(group(tableConstraintRegex, tm, "name"))
				c.Source = types.SourceTable
				table.Constraints = append(table.Constraints, c)
			}
			continue
		}

		if likeClauseRegex.MatchString(element) {
			continue
		}

		column, constraints, err := parseColumnDefinition(element, name, defaultSchema)
		if err != nil {
			return types.Table{}, fmt.Errorf("%w: table %s: %v", ErrMalformed, name.Key(), err)
		}
		table.Columns = append(table.Columns, column)
		table.Constraints = append(table.Constraints, constraints...)
	}

	return table, nil
}

func parseColumnDefinition(colDef string, owner types.QualifiedName, defaultSchema string) (types.Column, []types.Constraint, error) {
	toks := fields(colDef)
	if len(toks) < 2 {
		return types.Column{}, nil, fmt.Errorf("invalid column definition (no type): %s", colDef)
	}

	column := types.Column{
		Name:     normalizeIdent(toks[0]),
		Nullable: true,
	}

	i := 1
	var typeToks []string
	for ; i < len(toks) && !columnKeywords[upper(toks[i])]; i++ {
		typeToks = append(typeToks, toks[i])
	}
	if len(typeToks) == 0 {
		return types.Column{}, nil, fmt.Errorf("invalid column definition (no type): %s", colDef)
	}
	column.Type = normalizeType(strings.Join(typeToks, " "))

	var (
		constraints []types.Constraint
		pendingName string
	)
	add := func(c types.Constraint) {
		c.Name, c.Table, c.Source = pendingName, owner, types.SourceInline
		pendingName = ""
		constraints = append(constraints, c)
	}

	for i < len(toks) {
		switch upper(toks[i]) {
		case "CONSTRAINT":
			if i+1 < len(toks) {
				pendingName = normalizeIdent(toks[i+1])
			}
			i += 2

		case "NOT":
			if i+1 < len(toks) && upper(toks[i+1]) == "NULL" {
				column.Nullable = false
				i += 2
				continue
			}
			i++

		case "NULL":
			column.Nullable = true
			i++

		case "DEFAULT":
			j := i + 2
			for j < len(toks) && !columnKeywords[upper(toks[j])] {
				j++
			}
			j = min(j, len(toks))
			column.Default = strings.Join(toks[i+1:j], " ")
			i = j

		case "PRIMARY":
			if i+1 < len(toks) && upper(toks[i+1]) == "KEY" {
				column.Nullable = false
				add(types.Constraint{Kind: types.PrimaryKey, Columns: []string{column.Name}})
				i += 2
				continue
			}
			i++

		case "UNIQUE":
			add(types.Constraint{Kind: types.Unique, Columns: []string{column.Name}})
			i++

		case "REFERENCES":
			j := i + 1
			for j < len(toks) && referenceToken(toks, j) {
				j++
			}
			clause := strings.Join(toks[i:j], " ")
			m := referencesRegex.FindStringSubmatch(clause)
			if m == nil {
				return types.Column{}, nil, fmt.Errorf("invalid REFERENCES clause on column %s: %s", column.Name, clause)
			}
			c := types.Constraint{Kind: types.ForeignKey, Columns: []string{column.Name}}
			if err := applyReference(&c, referencesRegex, m, defaultSchema); err != nil {
				return types.Column{}, nil, fmt.Errorf("column %s: %w", column.Name, err)
			}
			add(c)
			i = j

		case "GENERATED":
			i++
			for i < len(toks) && (generatedWords[upper(toks[i])] || strings.HasPrefix(toks[i], "(")) {
				i++
			}

		default:
			i++
		}
	}

	return column, constraints, nil
}

// referenceToken reports whether toks[j] still belongs to a REFERENCES
// clause, which may contain SET NULL, SET DEFAULT and deferral options.
func referenceToken(toks []string, j int) bool {
	switch tok := upper(toks[j]); tok {
	case "DEFERRABLE", "INITIALLY":
		return true
	case "NOT":
		return j+1 < len(toks) && upper(toks[j+1]) == "DEFERRABLE"
	case "NULL", "DEFAULT":
		return upper(toks[j-1]) == "SET"
	default:
		return !columnKeywords[tok]
	}
}
