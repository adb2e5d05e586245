package layout

import (
	"fmt"
	"math"
	"sort"

	t "archmap/internal/types"
)

// Geometry constants for the planned diagram.
const (
	NodeWidth     = 160
	NodeHeight    = 50
	HGap          = 30
	VGap          = 25
	LayerGap      = 60
	LayerHeader   = 30
	LayerPadding  = 20
	CanvasPadding = 40
	MaxColumns    = 6
)

// Font colors for layer groups and module nodes.
const (
	groupFontColor  = "#333333"
	moduleFontColor = "#ffffff"
)

// Node is one positioned element of the planned diagram: either a layer
// group or a module box.
type Node struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Fill      string `json:"fill"`
	Stroke    string `json:"stroke"`
	FontColor string `json:"font_color"`
	// Parent is the group node id for module boxes, empty for groups.
	Parent  string `json:"parent,omitempty"`
	IsGroup bool   `json:"is_group"`
	// Path carries the module path for module boxes.
	Path string `json:"path,omitempty"`
	// Layer carries the owning layer id.
	Layer string `json:"layer,omitempty"`
}

// Edge is one routed dependency with a weight-scaled stroke.
type Edge struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	StrokeWidth float64 `json:"stroke_width"`
	Weight      int     `json:"weight"`
}

// Plan is the geometric node/edge list consumed by the emitters.
type Plan struct {
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Build arranges layers vertically (ascending level) and each layer's
// modules in a centrality-ordered grid, then normalizes layer widths and
// emits one edge per resolvable graph edge.
func Build(g *t.DependencyGraph, layers []t.Layer) *Plan {
	plan := &Plan{Nodes: []Node{}, Edges: []Edge{}}

	ordered := make([]t.Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Level < ordered[j].Level })

	moduleIDs := make(map[string]string, len(g.Nodes))
	groupIdx := make([]int, 0, len(ordered))

	runningY := CanvasPadding
	maxWidth := 0

	for li, l := range ordered {
		members := sortByCentrality(g, l.Modules)
		cols := len(members)
		if cols > MaxColumns {
			cols = MaxColumns
		}
		if cols == 0 {
			cols = 1
		}
		rows := (len(members) + cols - 1) / cols

		width := 2*LayerPadding + cols*NodeWidth + (cols-1)*HGap
		height := LayerHeader + 2*LayerPadding + rows*NodeHeight
		if rows > 1 {
			height += (rows - 1) * VGap
		}
		if len(members) == 0 {
			height = LayerHeader + 2*LayerPadding
		}
		if width > maxWidth {
			maxWidth = width
		}

		groupID := "layer-" + l.ID
		groupIdx = append(groupIdx, len(plan.Nodes))
		plan.Nodes = append(plan.Nodes, Node{
			ID:        groupID,
			Label:     l.Name,
			X:         CanvasPadding,
			Y:         runningY,
			Width:     width,
			Height:    height,
			Fill:      Lighten(l.Color, 90),
			Stroke:    l.Color,
			FontColor: groupFontColor,
			IsGroup:   true,
			Layer:     l.ID,
		})

		for i, p := range members {
			row, col := i/cols, i%cols
			id := fmt.Sprintf("module-%d-%d", li, i)
			moduleIDs[p] = id
			node := g.Nodes[p]
			plan.Nodes = append(plan.Nodes, Node{
				ID:        id,
				Label:     node.Name,
				X:         CanvasPadding + LayerPadding + col*(NodeWidth+HGap),
				Y:         runningY + LayerHeader + LayerPadding + row*(NodeHeight+VGap),
				Width:     NodeWidth,
				Height:    NodeHeight,
				Fill:      l.Color,
				Stroke:    Darken(l.Color, 20),
				FontColor: moduleFontColor,
				Parent:    groupID,
				Path:      p,
				Layer:     l.ID,
			})
		}

		runningY += height + LayerGap
	}

	if len(ordered) > 0 {
		runningY -= LayerGap
	}

	// Align every layer group to the widest one.
	for _, idx := range groupIdx {
		plan.Nodes[idx].Width = maxWidth
	}

	plan.Width = maxWidth + 2*CanvasPadding
	plan.Height = runningY + CanvasPadding

	for _, e := range g.Edges {
		src, okS := moduleIDs[e.Source]
		dst, okD := moduleIDs[e.Target]
		if !okS || !okD {
			continue
		}
		plan.Edges = append(plan.Edges, Edge{
			ID:          fmt.Sprintf("edge-%d", len(plan.Edges)+1),
			Source:      src,
			Target:      dst,
			StrokeWidth: strokeWidth(e.Weight),
			Weight:      e.Weight,
		})
	}
	return plan
}

func sortByCentrality(g *t.DependencyGraph, modules []string) []string {
	out := make([]string, len(modules))
	copy(out, modules)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := g.Nodes[out[i]], g.Nodes[out[j]]
		ca, cb := a.InDegree+a.OutDegree, b.InDegree+b.OutDegree
		if ca != cb {
			return ca > cb
		}
		return a.Path < b.Path
	})
	return out
}

// strokeWidth scales an edge's stroke with the log of its weight,
// clamped to [1, 3].
func strokeWidth(weight int) float64 {
	w := 1 + math.Log2(float64(weight))
	if w < 1 {
		w = 1
	}
	if w > 3 {
		w = 3
	}
	return w
}
