package types

import (
	"errors"
	"fmt"
)

type ConstraintKind string

const (
	PrimaryKey ConstraintKind = "PRIMARY KEY"
	ForeignKey ConstraintKind = "FOREIGN KEY"
	Unique     ConstraintKind = "UNIQUE"
)

// Marker is the short tag shown in the key column of a diagram row.
func (k ConstraintKind) Marker() string {
	switch k {
	case PrimaryKey:
		return "PK"
	case ForeignKey:
		return "FK"
	case Unique:
		return "UQ"
	}
	return ""
}

type ConstraintSource string

const (
	SourceInline  ConstraintSource = "inline"
	SourceTable   ConstraintSource = "table"
	SourceAlter   ConstraintSource = "alter"
	SourceIndex   ConstraintSource = "index"
	SourceCatalog ConstraintSource = "catalog"
)

var ErrFrozen = errors.New("schema is frozen")

// QualifiedName identifies a table. Key is used for lookups, String for display.
type QualifiedName struct {
	Schema string `json:"schema" yaml:"schema"`
	Name   string `json:"name" yaml:"name"`
}

func (q QualifiedName) Key() string {
	if q.Schema == "" {
		return q.Name
	}
	return q.Schema + "." + q.Name
}

func (q QualifiedName) String() string {
	return q.Name
}

func (q QualifiedName) IsZero() bool {
	return q.Name == ""
}

type Column struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
}

type Constraint struct {
	Name       string           `json:"name,omitempty" yaml:"name,omitempty"`
	Kind       ConstraintKind   `json:"kind" yaml:"kind"`
	Table      QualifiedName    `json:"table" yaml:"table"`
	Columns    []string         `json:"columns" yaml:"columns"`
	RefTable   QualifiedName    `json:"ref_table,omitempty" yaml:"ref_table,omitempty"`
	RefColumns []string         `json:"ref_columns,omitempty" yaml:"ref_columns,omitempty"`
	OnDelete   string           `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate   string           `json:"on_update,omitempty" yaml:"on_update,omitempty"`
	Unresolved bool             `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Source     ConstraintSource `json:"source" yaml:"source"`
}

// Pairs returns the local/referenced column pairs of a foreign key, in
// declaration order. Referenced columns must already be resolved.
func (c Constraint) Pairs() [][2]string {
	if c.Kind != ForeignKey || len(c.Columns) != len(c.RefColumns) {
		return nil
	}
	pairs := make([][2]string, len(c.Columns))
	for i := range c.Columns {
		pairs[i] = [2]string{c.Columns[i], c.RefColumns[i]}
	}
	return pairs
}

func (c Constraint) Covers(column string) bool {
	for _, col := range c.Columns {
		if col == column {
			return true
		}
	}
	return false
}

type Table struct {
	Name        QualifiedName `json:"name" yaml:"name"`
	Columns     []Column      `json:"columns" yaml:"columns"`
	Constraints []Constraint  `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// PrimaryKey returns the primary key columns in declaration order.
func (t *Table) PrimaryKey() []string {
	for _, c := range t.Constraints {
		if c.Kind == PrimaryKey {
			return c.Columns
		}
	}
	return nil
}

func (t *Table) ForeignKeys() []Constraint {
	var fks []Constraint
	for _, c := range t.Constraints {
		if c.Kind == ForeignKey {
			fks = append(fks, c)
		}
	}
	return fks
}

func (t *Table) HasKey(kind ConstraintKind, column string) bool {
	for _, c := range t.Constraints {
		if c.Kind == kind && c.Covers(column) {
			return true
		}
	}
	return false
}

// IsUnique reports whether the exact column set is covered by a primary key
// or unique constraint.
func (t *Table) IsUnique(columns []string) bool {
	for _, c := range t.Constraints {
		if c.Kind != PrimaryKey && c.Kind != Unique {
			continue
		}
		if sameSet(c.Columns, columns) {
			return true
		}
	}
	return false
}

// KeyMarkers returns the PK/FK/UQ tags for a column, in that order.
func (t *Table) KeyMarkers(column string) []string {
	var markers []string
	for _, kind := range []ConstraintKind{PrimaryKey, ForeignKey, Unique} {
		if t.HasKey(kind, column) {
			markers = append(markers, kind.Marker())
		}
	}
	return markers
}

// Schema holds tables in first-seen order, keyed by qualified name.
type Schema struct {
	tables []*Table
	index  map[string]int
	frozen bool
}

func NewSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

func (s *Schema) Add(t *Table) error {
	if s.frozen {
		return ErrFrozen
	}
	key := t.Name.Key()
	if _, ok := s.index[key]; ok {
		return fmt.Errorf("table %s already defined", key)
	}
	s.index[key] = len(s.tables)
	s.tables = append(s.tables, t)
	return nil
}

func (s *Schema) Table(key string) (*Table, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.tables[i], true
}

func (s *Schema) Tables() []*Table {
	return s.tables
}

func (s *Schema) Len() int {
	return len(s.tables)
}

func (s *Schema) Freeze() {
	s.frozen = true
}

func (s *Schema) Frozen() bool {
	return s.frozen
}

func (s *Schema) ResolvedForeignKeys() []Constraint {
	return s.foreignKeys(false)
}

func (s *Schema) UnresolvedForeignKeys() []Constraint {
	return s.foreignKeys(true)
}

func (s *Schema) foreignKeys(unresolved bool) []Constraint {
	var out []Constraint
	for _, t := range s.tables {
		for _, fk := range t.ForeignKeys() {
			if fk.Unresolved == unresolved {
				out = append(out, fk)
			}
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			return false
		}
	}
	return true
}
