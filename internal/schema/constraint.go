package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Rana718/pgdiagram/internal/types"
)

// ExtractConstraints recovers PRIMARY KEY, FOREIGN KEY and UNIQUE constraints
// from an ALTER TABLE ... ADD CONSTRAINT statement. Other ALTER TABLE actions
// are ignored; a nil slice with a nil error means nothing was recovered.
func ExtractConstraints(stmt, defaultSchema string) ([]types.Constraint, error) {
	m := alterTableRegex.FindStringSubmatch(stmt)
	if m == nil {
		return nil, nil
	}

	owner := parseQualifiedName(group(alterTableRegex, m, "table"), defaultSchema)

	var constraints []types.Constraint
	for _, action := range splitTopLevel(group(alterTableRegex, m, "actions"), ',') {
		am := addConstraintRegex.FindStringSubmatch(strings.TrimSpace(action))
		if am == nil {
			continue
		}

		c, ok, err := parseConstraintBody(group(addConstraintRegex, am, "body"), owner, defaultSchema)
		if err != nil {
			return constraints, fmt.Errorf("%w: ALTER TABLE %s: %v", ErrMalformed, owner.Key(), err)
		}
		if !ok {
			continue
		}

		if name := group(addConstraintRegex, am, "name"); name != "" {
			c.Name = normalizeIdent(name)
		}
		c.Source = types.SourceAlter
		constraints = append(constraints, c)
	}

	return constraints, nil
}

// ExtractUniqueIndex maps CREATE UNIQUE INDEX on plain columns to a UNIQUE
// constraint. Partial and expression indexes are not mapped.
func ExtractUniqueIndex(stmt, defaultSchema string) (types.Constraint, bool) {
	m := createUniqueIndexRegex.FindStringSubmatch(stmt)
	if m == nil {
		return types.Constraint{}, false
	}

	rest := group(createUniqueIndexRegex, m, "rest")
	end := matchingParen(rest, 0)
	if end < 0 || whereClauseRegex.MatchString(rest[end+1:]) {
		return types.Constraint{}, false
	}

	cols, ok := parseIndexColumns(rest[1:end])
	if !ok {
		return types.Constraint{}, false
	}

	return types.Constraint{
		Name:    normalizeIdent(group(createUniqueIndexRegex, m, "name")),
		Kind:    types.Unique,
		Table:   parseQualifiedName(group(createUniqueIndexRegex, m, "table"), defaultSchema),
		Columns: cols,
		Source:  types.SourceIndex,
	}, true
}

// parseConstraintBody parses the part of a table constraint after the
// optional CONSTRAINT name. ok is false for kinds that are not drawn (CHECK,
// EXCLUDE), for keys promoted from an existing index (USING INDEX), and for
// text that is not a constraint at all.
func parseConstraintBody(body string, owner types.QualifiedName, defaultSchema string) (types.Constraint, bool, error) {
	body = strings.TrimSpace(body)
	c := types.Constraint{Table: owner}

	if usingIndexRegex.MatchString(body) {
		return c, false, nil
	}

	if m := primaryKeyRegex.FindStringSubmatch(body); m != nil {
		cols, ok := parseColumnList(group(primaryKeyRegex, m, "cols"))
		if !ok {
			return c, false, fmt.Errorf("invalid PRIMARY KEY column list in %q", body)
		}
		c.Kind, c.Columns = types.PrimaryKey, cols
		return c, true, nil
	}

	if m := uniqueRegex.FindStringSubmatch(body); m != nil {
		cols, ok := parseColumnList(group(uniqueRegex, m, "cols"))
		if !ok {
			return c, false, fmt.Errorf("invalid UNIQUE column list in %q", body)
		}
		c.Kind, c.Columns = types.Unique, cols
		return c, true, nil
	}

	if m := foreignKeyRegex.FindStringSubmatch(body); m != nil {
		cols, ok := parseColumnList(group(foreignKeyRegex, m, "cols"))
		if !ok {
			return c, false, fmt.Errorf("invalid FOREIGN KEY column list in %q", body)
		}
		c.Kind, c.Columns = types.ForeignKey, cols
		if err := applyReference(&c, foreignKeyRegex, m, defaultSchema); err != nil {
			return c, false, err
		}
		return c, true, nil
	}

	if constraintKindRegex.MatchString(body) {
		return c, false, fmt.Errorf("unrecognized constraint %q", body)
	}

	return c, false, nil
}

// applyReference fills the referenced side of a foreign key from a match of
// foreignKeyRegex or referencesRegex.
func applyReference(c *types.Constraint, re *regexp.Regexp, m []string, defaultSchema string) error {
	get := func(name string) string { return group(re, m, name) }

	c.RefTable = parseQualifiedName(get("ref"), defaultSchema)

	if refcols := get("refcols"); strings.TrimSpace(refcols) != "" {
		cols, ok := parseColumnList(refcols)
		if !ok {
			return fmt.Errorf("invalid referenced column list %q", refcols)
		}
		if len(cols) != len(c.Columns) {
			return fmt.Errorf("foreign key has %d columns but references %d", len(c.Columns), len(cols))
		}
		c.RefColumns = cols
	}

	tail := get("tail")
	if m := onDeleteRegex.FindStringSubmatch(tail); m != nil {
		c.OnDelete = strings.ToUpper(whitespaceRegex.ReplaceAllString(m[1], " "))
	}
	if m := onUpdateRegex.FindStringSubmatch(tail); m != nil {
		c.OnUpdate = strings.ToUpper(whitespaceRegex.ReplaceAllString(m[1], " "))
	}
	return nil
}
