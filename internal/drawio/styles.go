package drawio

import "fmt"

const (
	styleTable = "shape=table;container=1;collapsible=1;childLayout=tableLayout;" +
		"fixedRows=1;rowLines=0;fontStyle=1;align=center;resizeLast=1;html=1;whiteSpace=wrap;"

	styleRow = "shape=tableRow;horizontal=0;startSize=0;swimlaneHead=0;swimlaneBody=0;" +
		"fillColor=none;collapsible=0;dropTarget=0;points=[[0,0.5],[1,0.5]];" +
		"portConstraint=eastwest;top=0;left=0;right=0;bottom=0;html=1;"

	// Same as styleRow with a bottom border, drawn under the last leading key row.
	styleRowSeparator = "shape=tableRow;horizontal=0;startSize=0;swimlaneHead=0;swimlaneBody=0;" +
		"fillColor=none;collapsible=0;dropTarget=0;points=[[0,0.5],[1,0.5]];" +
		"portConstraint=eastwest;top=0;left=0;right=0;bottom=1;html=1;"

	styleKey = "shape=partialRectangle;connectable=0;fillColor=none;top=0;left=0;" +
		"bottom=0;right=0;fontStyle=1;overflow=hidden;html=1;whiteSpace=wrap;align=center;"

	styleName = "shape=partialRectangle;connectable=0;fillColor=none;top=0;left=0;" +
		"bottom=0;right=0;align=left;spacingLeft=6;overflow=hidden;html=1;whiteSpace=wrap;"

	styleType = "shape=partialRectangle;connectable=0;fillColor=none;top=0;left=0;" +
		"bottom=0;right=0;align=left;spacingLeft=6;overflow=hidden;html=1;whiteSpace=wrap;" +
		"fontColor=#000080;fontStyle=2;"

	styleEdge  = "endArrow=none;html=1;rounded=0;edgeStyle=entityRelationEdgeStyle;"
	styleLabel = "resizable=0;html=1;whiteSpace=wrap;verticalAlign=bottom;"

	anchorRight = "exitX=1;exitY=0.5;exitDx=0;exitDy=0;entryX=0;entryY=0.5;entryDx=0;entryDy=0;"
	anchorLeft  = "exitX=0;exitY=0.5;exitDx=0;exitDy=0;entryX=1;entryY=0.5;entryDx=0;entryDy=0;"

	alignLeft  = "align=left;"
	alignRight = "align=right;"
)

// tableStyle sizes the header band to match where the first row is placed.
func tableStyle(headerHeight int) string {
	return fmt.Sprintf("%sstartSize=%d;", styleTable, headerHeight)
}
