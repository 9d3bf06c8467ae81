package layout

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Rana718/pgdiagram/internal/config"
	"github.com/Rana718/pgdiagram/internal/types"
)

var ErrNotFrozen = errors.New("schema must be built before layout")

// Placement is the grid cell and pixel geometry of one entity box.
type Placement struct {
	Table  string `json:"table" yaml:"table"`
	Row    int    `json:"row" yaml:"row"`
	Col    int    `json:"col" yaml:"col"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

type Endpoint struct {
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
}

// Edge is one connector for a resolved foreign key. Source and Target are the
// first column pair; Constraint carries all of them.
type Edge struct {
	Constraint  types.Constraint `json:"constraint" yaml:"constraint"`
	Source      Endpoint         `json:"source" yaml:"source"`
	Target      Endpoint         `json:"target" yaml:"target"`
	TargetLeft  bool             `json:"target_left" yaml:"target_left"`
	SourceLabel string           `json:"source_label" yaml:"source_label"`
	TargetLabel string           `json:"target_label" yaml:"target_label"`
}

type Diagram struct {
	Columns    int         `json:"columns" yaml:"columns"`
	Placements []Placement `json:"placements" yaml:"placements"`
	Edges      []Edge      `json:"edges" yaml:"edges"`

	index map[string]int
}

func (d *Diagram) Placement(table string) (Placement, bool) {
	i, ok := d.index[table]
	if !ok {
		return Placement{}, false
	}
	return d.Placements[i], true
}

// Compute places every table of a built schema on the grid and derives the
// connector set from its resolved foreign keys.
func Compute(s *types.Schema, cfg config.Layout) (*Diagram, error) {
	if !s.Frozen() {
		return nil, ErrNotFrozen
	}

	tables := s.Tables()
	cols := GridColumns(cfg.ColumnsPerRow, len(tables))

	d := &Diagram{
		Columns:    cols,
		Placements: make([]Placement, 0, len(tables)),
		index:      make(map[string]int, len(tables)),
	}

	width := cfg.TableWidth()
	y, rowMax := cfg.OriginY, 0

	for i, t := range tables {
		row, col := i/cols, i%cols
		if col == 0 && i > 0 {
			y += rowMax + cfg.GapY
			rowMax = 0
		}

		height := cfg.HeaderHeight + len(t.Columns)*cfg.RowHeight
		rowMax = max(rowMax, height)

		d.index[t.Name.Key()] = len(d.Placements)
		d.Placements = append(d.Placements, Placement{
			Table:  t.Name.Key(),
			Row:    row,
			Col:    col,
			X:      cfg.OriginX + col*(width+cfg.GapX),
			Y:      y,
			Width:  width,
			Height: height,
		})
	}

	edges, err := buildEdges(s, d, cfg.DedupeEdges)
	if err != nil {
		return nil, err
	}
	d.Edges = edges

	return d, nil
}

// GridColumns returns the number of tables per row. A configured value of 0
// picks ceil(sqrt(n)) to keep the grid roughly square.
func GridColumns(configured, n int) int {
	if configured > 0 {
		return configured
	}
	return max(1, int(math.Ceil(math.Sqrt(float64(n)))))
}

func buildEdges(s *types.Schema, d *Diagram, dedupe bool) ([]Edge, error) {
	var edges []Edge
	seen := make(map[string]bool)

	for _, fk := range s.ResolvedForeignKeys() {
		pairs := fk.Pairs()
		if len(pairs) == 0 {
			return nil, fmt.Errorf("foreign key %s on %s has no resolved columns", fk.Name, fk.Table.Key())
		}

		if dedupe {
			key := edgeKey(fk)
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		owner, _ := s.Table(fk.Table.Key())
		src, _ := d.Placement(fk.Table.Key())
		dst, ok := d.Placement(fk.RefTable.Key())
		if !ok {
			return nil, fmt.Errorf("foreign key %s targets unplaced table %s", fk.Name, fk.RefTable.Key())
		}

		source, target := cardinality(owner, fk)
		edges = append(edges, Edge{
			Constraint:  fk,
			Source:      Endpoint{Table: fk.Table.Key(), Column: pairs[0][0]},
			Target:      Endpoint{Table: fk.RefTable.Key(), Column: pairs[0][1]},
			TargetLeft:  dst.X < src.X,
			SourceLabel: source,
			TargetLabel: target,
		})
	}

	return edges, nil
}

// cardinality returns the child-side and parent-side labels of a foreign key.
// The child side is 0..1 when the key columns are unique, else 0..N. The
// parent side is 1 when every key column is NOT NULL, else 0..1.
func cardinality(owner *types.Table, fk types.Constraint) (string, string) {
	source := "0..N"
	if owner.IsUnique(fk.Columns) {
		source = "0..1"
	}

	target := "1"
	for _, name := range fk.Columns {
		if col, ok := owner.Column(name); !ok || col.Nullable {
			target = "0..1"
			break
		}
	}

	return source, target
}

func edgeKey(fk types.Constraint) string {
	var b strings.Builder
	b.WriteString(fk.Table.Key())
	b.WriteString("->")
	b.WriteString(fk.RefTable.Key())
	for _, p := range fk.Pairs() {
		b.WriteString("|" + p[0] + "=" + p[1])
	}
	return b.String()
}

// RowOrder returns the column order of a table's entity rows. With
// primaryKeysFirst the primary key columns lead in key order; otherwise rows
// follow declaration order. The second result is the length of the leading
// run of primary key rows.
func RowOrder(t *types.Table, primaryKeysFirst bool) ([]types.Column, int) {
	pk := t.PrimaryKey()

	if !primaryKeysFirst {
		leading := 0
		for _, col := range t.Columns {
			if !slices.Contains(pk, col.Name) {
				break
			}
			leading++
		}
		return t.Columns, leading
	}

	rows := make([]types.Column, 0, len(t.Columns))
	for _, name := range pk {
		if col, ok := t.Column(name); ok {
			rows = append(rows, *col)
		}
	}
	leading := len(rows)

	for _, col := range t.Columns {
		if !slices.Contains(pk, col.Name) {
			rows = append(rows, col)
		}
	}

	return rows, leading
}
