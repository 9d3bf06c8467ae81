package schema

import (
	"slices"
	"strings"

	"github.com/Rana718/pgdiagram/internal/types"
)

// Builder merges extracted tables and constraints into a Schema. Tables and
// constraints may arrive in any order; Build collects all tables before it
// attaches any constraint, so the result does not depend on source order.
type Builder struct {
	tables      []types.Table
	constraints []types.Constraint
}

func NewBuilder() *Builder {
	return &Builder{}
}

// AddTable queues a table. Its inline constraints are queued through the
// same path as out-of-line ones.
func (b *Builder) AddTable(t types.Table) {
	b.constraints = append(b.constraints, t.Constraints...)
	t.Constraints = nil
	t.Columns = slices.Clone(t.Columns)
	b.tables = append(b.tables, t)
}

func (b *Builder) AddConstraint(c types.Constraint) {
	b.constraints = append(b.constraints, c)
}

// Build returns the frozen Schema and any diagnostics raised while attaching
// and resolving constraints.
func (b *Builder) Build() (*types.Schema, []Diagnostic) {
	s := types.NewSchema()
	var diags []Diagnostic

	// Pass 1: tables.
	for i := range b.tables {
		t := b.tables[i]
		if existing, ok := s.Table(t.Name.Key()); ok {
			mergeColumns(existing, t.Columns)
			diags = append(diags, warnf(-1, "table %s defined more than once, columns merged", t.Name.Key()))
			continue
		}
		s.Add(&t)
	}

	// Pass 2: attach constraints to their owners.
	pending := slices.Clone(b.constraints)
	slices.SortStableFunc(pending, func(a, b types.Constraint) int {
		return sourceRank(a.Source) - sourceRank(b.Source)
	})

	for _, c := range pending {
		owner, ok := s.Table(c.Table.Key())
		if !ok {
			diags = append(diags, warnf(-1, "%s constraint %s references unknown table %s, dropped",
				c.Kind, displayName(c), c.Table.Key()))
			continue
		}

		if missing := missingColumns(owner, c.Columns); len(missing) > 0 {
			diags = append(diags, warnf(-1, "%s constraint %s on %s names unknown column(s) %s, dropped",
				c.Kind, displayName(c), owner.Name.Key(), strings.Join(missing, ", ")))
			continue
		}

		if c.Kind == types.PrimaryKey && owner.PrimaryKey() != nil {
			diags = append(diags, warnf(-1, "table %s already has a primary key, %s ignored",
				owner.Name.Key(), displayName(c)))
			continue
		}

		c.Columns = slices.Clone(c.Columns)
		c.RefColumns = slices.Clone(c.RefColumns)
		owner.Constraints = append(owner.Constraints, c)
	}

	// Pass 3: resolve foreign keys now that every primary key is known.
	for _, t := range s.Tables() {
		for i := range t.Constraints {
			c := &t.Constraints[i]
			if c.Kind != types.ForeignKey {
				continue
			}
			if reason := resolve(s, c); reason != "" {
				c.Unresolved = true
				diags = append(diags, warnf(-1, "foreign key %s on %s is unresolved: %s",
					displayName(*c), t.Name.Key(), reason))
			}
		}
	}

	s.Freeze()
	return s, diags
}

// resolve checks a foreign key's target and fills RefColumns from the
// target's primary key when none were declared. It returns the reason the
// reference cannot be resolved, or "".
func resolve(s *types.Schema, c *types.Constraint) string {
	target, ok := s.Table(c.RefTable.Key())
	if !ok {
		return "table " + c.RefTable.Key() + " not found"
	}

	if len(c.RefColumns) == 0 {
		pk := target.PrimaryKey()
		if len(pk) != len(c.Columns) {
			return "table " + c.RefTable.Key() + " has no matching primary key"
		}
		c.RefColumns = slices.Clone(pk)
	}

	if missing := missingColumns(target, c.RefColumns); len(missing) > 0 {
		return "column(s) " + strings.Join(missing, ", ") + " not found on " + c.RefTable.Key()
	}
	return ""
}

func mergeColumns(t *types.Table, columns []types.Column) {
	for _, col := range columns {
		if _, ok := t.Column(col.Name); !ok {
			t.Columns = append(t.Columns, col)
		}
	}
}

func missingColumns(t *types.Table, columns []string) []string {
	var missing []string
	for _, name := range columns {
		if _, ok := t.Column(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func sourceRank(src types.ConstraintSource) int {
	switch src {
	case types.SourceInline, types.SourceTable:
		return 0
	case types.SourceAlter, types.SourceCatalog:
		return 1
	default:
		return 2
	}
}

func displayName(c types.Constraint) string {
	if c.Name != "" {
		return c.Name
	}
	return "(" + strings.Join(c.Columns, ", ") + ")"
}
