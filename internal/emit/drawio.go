package emit

import (
	"fmt"
	"strings"

	"archmap/internal/layout"
)

// DrawIO renders a layout plan as a draw.io mxGraph document. Layer
// groups become swimlane cells, modules rounded rectangles, and edges
// orthogonal routes with weight-scaled strokes. Attribute and text
// positions are XML-escaped.
func DrawIO(plan *layout.Plan) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<mxfile host="archmap" agent="archmap">` + "\n")
	sb.WriteString(`  <diagram id="architecture" name="Architecture">` + "\n")
	fmt.Fprintf(&sb, `    <mxGraphModel dx="%d" dy="%d" grid="0" guides="1" tooltips="1" connect="1" arrows="1" fold="1" page="1" pageScale="1" pageWidth="%d" pageHeight="%d">`+"\n",
		plan.Width, plan.Height, plan.Width, plan.Height)
	sb.WriteString("      <root>\n")
	sb.WriteString(`        <mxCell id="0"/>` + "\n")
	sb.WriteString(`        <mxCell id="1" parent="0"/>` + "\n")

	groupOrigin := make(map[string][2]int)
	for _, n := range plan.Nodes {
		if n.IsGroup {
			groupOrigin[n.ID] = [2]int{n.X, n.Y}
			style := fmt.Sprintf(
				"swimlane;rounded=1;startSize=%d;horizontal=1;fillColor=%s;strokeColor=%s;fontColor=%s;fontSize=14;fontStyle=1;",
				layout.LayerHeader, n.Fill, n.Stroke, n.FontColor)
			fmt.Fprintf(&sb,
				`        <mxCell id="%s" value="%s" style="%s" vertex="1" parent="1"><mxGeometry x="%d" y="%d" width="%d" height="%d" as="geometry"/></mxCell>`+"\n",
				xmlEscape(n.ID), xmlEscape(n.Label), xmlEscape(style), n.X, n.Y, n.Width, n.Height)
		}
	}
	for _, n := range plan.Nodes {
		if n.IsGroup {
			continue
		}
		x, y := n.X, n.Y
		parent := "1"
		if origin, ok := groupOrigin[n.Parent]; ok {
			// Child geometry is relative to the owning swimlane.
			x -= origin[0]
			y -= origin[1]
			parent = n.Parent
		}
		style := fmt.Sprintf(
			"rounded=1;whiteSpace=wrap;html=1;fillColor=%s;strokeColor=%s;fontColor=%s;fontSize=12;",
			n.Fill, n.Stroke, n.FontColor)
		fmt.Fprintf(&sb,
			`        <mxCell id="%s" value="%s" style="%s" vertex="1" parent="%s"><mxGeometry x="%d" y="%d" width="%d" height="%d" as="geometry"/></mxCell>`+"\n",
			xmlEscape(n.ID), xmlEscape(n.Label), xmlEscape(style), xmlEscape(parent), x, y, n.Width, n.Height)
	}
	for _, e := range plan.Edges {
		style := fmt.Sprintf(
			"edgeStyle=orthogonalEdgeStyle;rounded=1;curved=1;strokeWidth=%.1f;strokeColor=#666666;endArrow=blockThin;",
			e.StrokeWidth)
		fmt.Fprintf(&sb,
			`        <mxCell id="%s" style="%s" edge="1" parent="1" source="%s" target="%s"><mxGeometry relative="1" as="geometry"/></mxCell>`+"\n",
			xmlEscape(e.ID), xmlEscape(style), xmlEscape(e.Source), xmlEscape(e.Target))
	}

	sb.WriteString("      </root>\n")
	sb.WriteString("    </mxGraphModel>\n")
	sb.WriteString("  </diagram>\n")
	sb.WriteString("</mxfile>\n")
	return sb.String()
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
