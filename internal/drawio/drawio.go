package drawio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/Rana718/pgdiagram/internal/config"
	"github.com/Rana718/pgdiagram/internal/layout"
	"github.com/Rana718/pgdiagram/internal/types"
)

type mxFile struct {
	XMLName xml.Name `xml:"mxfile"`
	Host    string   `xml:"host,attr"`
	Version string   `xml:"version,attr"`
	Diagram page     `xml:"diagram"`
}

type page struct {
	Name  string     `xml:"name,attr"`
	ID    string     `xml:"id,attr"`
	Model graphModel `xml:"mxGraphModel"`
}

type graphModel struct {
	Dx         int     `xml:"dx,attr"`
	Dy         int     `xml:"dy,attr"`
	Grid       int     `xml:"grid,attr"`
	GridSize   int     `xml:"gridSize,attr"`
	Guides     int     `xml:"guides,attr"`
	Tooltips   int     `xml:"tooltips,attr"`
	Connect    int     `xml:"connect,attr"`
	Arrows     int     `xml:"arrows,attr"`
	Fold       int     `xml:"fold,attr"`
	Page       int     `xml:"page,attr"`
	PageScale  int     `xml:"pageScale,attr"`
	PageWidth  int     `xml:"pageWidth,attr"`
	PageHeight int     `xml:"pageHeight,attr"`
	Math       int     `xml:"math,attr"`
	Shadow     int     `xml:"shadow,attr"`
	Root       cellSet `xml:"root"`
}

type cellSet struct {
	Cells []cell `xml:"mxCell"`
}

type cell struct {
	ID          string    `xml:"id,attr"`
	Value       string    `xml:"value,attr,omitempty"`
	Style       string    `xml:"style,attr,omitempty"`
	Vertex      string    `xml:"vertex,attr,omitempty"`
	Edge        string    `xml:"edge,attr,omitempty"`
	Connectable string    `xml:"connectable,attr,omitempty"`
	Parent      string    `xml:"parent,attr,omitempty"`
	Source      string    `xml:"source,attr,omitempty"`
	Target      string    `xml:"target,attr,omitempty"`
	Geometry    *geometry `xml:"mxGeometry,omitempty"`
}

type geometry struct {
	X        int    `xml:"x,attr,omitempty"`
	Y        int    `xml:"y,attr,omitempty"`
	Width    int    `xml:"width,attr,omitempty"`
	Height   int    `xml:"height,attr,omitempty"`
	Relative string `xml:"relative,attr,omitempty"`
	As       string `xml:"as,attr"`
}

// Render serializes a schema and its layout into a draw.io document. Cell
// ids are derived from table and row positions, so the same input always
// yields the same bytes.
func Render(s *types.Schema, d *layout.Diagram, cfg *config.Config) ([]byte, error) {
	doc := mxFile{
		Host:    "pgdiagram",
		Version: "21.0.0",
		Diagram: page{
			Name: cfg.DiagramName,
			ID:   "pgdiagram",
			Model: graphModel{
				Dx: 1000, Dy: 1000, Grid: 1, GridSize: 10, Guides: 1, Tooltips: 1,
				Connect: 1, Arrows: 1, Fold: 1, Page: 1, PageScale: 1,
				PageWidth: 827, PageHeight: 1169,
			},
		},
	}

	cells := []cell{
		{ID: "0"},
		{ID: "1", Parent: "0"},
	}

	rowIDs := make(map[string]map[string]string, s.Len())

	for ti, t := range s.Tables() {
		p, ok := d.Placement(t.Name.Key())
		if !ok {
			return nil, fmt.Errorf("table %s has no placement", t.Name.Key())
		}

		tableID := fmt.Sprintf("t%d", ti+1)
		cells = append(cells, cell{
			ID:     tableID,
			Value:  t.Name.String(),
			Style:  tableStyle(cfg.Layout.HeaderHeight),
			Vertex: "1",
			Parent: "1",
			Geometry: &geometry{
				X: p.X, Y: p.Y, Width: p.Width, Height: p.Height, As: "geometry",
			},
		})

		rows, leading := layout.RowOrder(t, cfg.Render.PrimaryKeysFirst)
		ids := make(map[string]string, len(rows))
		rowIDs[t.Name.Key()] = ids

		for ri, col := range rows {
			rowID := fmt.Sprintf("%sr%d", tableID, ri+1)
			ids[col.Name] = rowID
			cells = append(cells, rowCells(tableID, rowID, t, col, ri, leading, p, cfg.Layout)...)
		}
	}

	for ei, e := range d.Edges {
		source, ok := rowIDs[e.Source.Table][e.Source.Column]
		if !ok {
			return nil, fmt.Errorf("edge source %s.%s has no row", e.Source.Table, e.Source.Column)
		}
		target, ok := rowIDs[e.Target.Table][e.Target.Column]
		if !ok {
			return nil, fmt.Errorf("edge target %s.%s has no row", e.Target.Table, e.Target.Column)
		}

		cells = append(cells, edgeCells(fmt.Sprintf("e%d", ei+1), source, target, e, cfg.Render.Cardinality)...)
	}

	doc.Diagram.Model.Root.Cells = cells

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode diagram: %w", err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

func rowCells(tableID, rowID string, t *types.Table, col types.Column, index, leading int, p layout.Placement, l config.Layout) []cell {
	style := styleRow
	if leading > 0 && index == leading-1 {
		style = styleRowSeparator
	}

	name := col.Name
	if !col.Nullable {
		name += "*"
	}

	return []cell{
		{
			ID:     rowID,
			Style:  style,
			Vertex: "1",
			Parent: tableID,
			Geometry: &geometry{
				Y: l.HeaderHeight + index*l.RowHeight, Width: p.Width, Height: l.RowHeight, As: "geometry",
			},
		},
		{
			ID:     rowID + "k",
			Value:  strings.Join(t.KeyMarkers(col.Name), " "),
			Style:  styleKey,
			Vertex: "1",
			Parent: rowID,
			Geometry: &geometry{
				Width: l.KeyWidth, Height: l.RowHeight, As: "geometry",
			},
		},
		{
			ID:     rowID + "n",
			Value:  name,
			Style:  styleName,
			Vertex: "1",
			Parent: rowID,
			Geometry: &geometry{
				X: l.KeyWidth, Width: l.NameWidth, Height: l.RowHeight, As: "geometry",
			},
		},
		{
			ID:     rowID + "t",
			Value:  col.Type,
			Style:  styleType,
			Vertex: "1",
			Parent: rowID,
			Geometry: &geometry{
				X: l.KeyWidth + l.NameWidth, Width: l.TypeWidth, Height: l.RowHeight, As: "geometry",
			},
		},
	}
}

func edgeCells(edgeID, source, target string, e layout.Edge, withLabels bool) []cell {
	anchor, srcAlign, dstAlign := anchorRight, alignLeft, alignRight
	if e.TargetLeft {
		anchor, srcAlign, dstAlign = anchorLeft, alignRight, alignLeft
	}

	cells := []cell{{
		ID:       edgeID,
		Style:    styleEdge + anchor,
		Edge:     "1",
		Parent:   "1",
		Source:   source,
		Target:   target,
		Geometry: &geometry{Relative: "1", As: "geometry"},
	}}

	if !withLabels {
		return cells
	}

	return append(cells,
		cell{
			ID:          edgeID + "s",
			Value:       e.SourceLabel,
			Style:       styleLabel + srcAlign,
			Vertex:      "1",
			Connectable: "0",
			Parent:      edgeID,
			Geometry:    &geometry{X: -1, Relative: "1", As: "geometry"},
		},
		cell{
			ID:          edgeID + "t",
			Value:       e.TargetLabel,
			Style:       styleLabel + dstAlign,
			Vertex:      "1",
			Connectable: "0",
			Parent:      edgeID,
			Geometry:    &geometry{X: 1, Relative: "1", As: "geometry"},
		},
	)
}
