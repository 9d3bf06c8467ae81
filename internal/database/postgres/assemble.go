package postgres

import (
	"github.com/Rana718/pgdiagram/internal/schema"
	"github.com/Rana718/pgdiagram/internal/types"
)

// columnRow is one pg_attribute row of a user table.
type columnRow struct {
	Schema  string
	Table   string
	Name    string
	Type    string
	NotNull bool
	Default string
}

// constraintRow is one pg_constraint row of kind p, f or u. Column lists
// are in key order.
type constraintRow struct {
	Name       string
	Type       string
	Schema     string
	Table      string
	Columns    []string
	RefSchema  string
	RefTable   string
	RefColumns []string
	OnDelete   string
	OnUpdate   string
}

// indexRow is a unique index on plain columns that backs no constraint.
type indexRow struct {
	Name    string
	Schema  string
	Table   string
	Columns []string
}

var constraintKinds = map[string]types.ConstraintKind{
	"p": types.PrimaryKey,
	"f": types.ForeignKey,
	"u": types.Unique,
}

// pg_constraint.confdeltype / confupdtype codes. NO ACTION is the default
// and left blank, matching what pg_dump prints.
var referentialActions = map[string]string{
	"r": "RESTRICT",
	"c": "CASCADE",
	"n": "SET NULL",
	"d": "SET DEFAULT",
}

// assemble feeds catalog rows through the same builder the DDL path uses, so
// foreign keys resolve by identical rules.
func assemble(columns []columnRow, constraints []constraintRow, indexes []indexRow) (*types.Schema, []schema.Diagnostic) {
	b := schema.NewBuilder()

	var current *types.Table
	flush := func() {
		if current != nil {
			b.AddTable(*current)
		}
	}

	for _, row := range columns {
		name := types.QualifiedName{Schema: row.Schema, Name: row.Table}
		if current == nil || current.Name != name {
			flush()
			current = &types.Table{Name: name}
		}
		current.Columns = append(current.Columns, types.Column{
			Name:     row.Name,
			Type:     row.Type,
			Nullable: !row.NotNull,
			Default:  row.Default,
		})
	}
	flush()

	for _, row := range constraints {
		kind, ok := constraintKinds[row.Type]
		if !ok {
			continue
		}

		c := types.Constraint{
			Name:    row.Name,
			Kind:    kind,
			Table:   types.QualifiedName{Schema: row.Schema, Name: row.Table},
			Columns: row.Columns,
			Source:  types.SourceCatalog,
		}
		if kind == types.ForeignKey {
			c.RefTable = types.QualifiedName{Schema: row.RefSchema, Name: row.RefTable}
			c.RefColumns = row.RefColumns
			c.OnDelete = referentialActions[row.OnDelete]
			c.OnUpdate = referentialActions[row.OnUpdate]
		}
		b.AddConstraint(c)
	}

	for _, row := range indexes {
		b.AddConstraint(types.Constraint{
			Name:    row.Name,
			Kind:    types.Unique,
			Table:   types.QualifiedName{Schema: row.Schema, Name: row.Table},
			Columns: row.Columns,
			Source:  types.SourceIndex,
		})
	}

	return b.Build()
}
