package layer

import (
	"testing"

	t0 "archmap/internal/types"
)

func graphOf(paths []string, edges []*t0.ModuleEdge) *t0.DependencyGraph {
	g := &t0.DependencyGraph{Nodes: map[string]*t0.ModuleNode{}, Edges: edges}
	for _, p := range paths {
		g.Nodes[p] = &t0.ModuleNode{Path: p, Name: p}
	}
	for _, e := range edges {
		g.Nodes[e.Source].OutDegree += e.Weight
		g.Nodes[e.Target].InDegree += e.Weight
	}
	return g
}

func levelOf(layers []t0.Layer, id string) int {
	for _, l := range layers {
		if l.ID == id {
			return l.Level
		}
	}
	return -1
}

func TestClassifyHierarchyInference(t *testing.T) {
	g := graphOf(
		[]string{"src/controllers/u.ts", "src/services/s.ts", "src/db/m.ts"},
		[]*t0.ModuleEdge{
			{Source: "src/controllers/u.ts", Target: "src/services/s.ts", Weight: 1},
			{Source: "src/services/s.ts", Target: "src/db/m.ts", Weight: 1},
		},
	)
	layers := Classify(g, nil, nil)
	if len(layers) != 3 {
		t.Fatalf("layers: got %d want 3 (%v)", len(layers), layers)
	}

	api, services, database := levelOf(layers, "api"), levelOf(layers, "services"), levelOf(layers, "database")
	if api < 0 || services < 0 || database < 0 {
		t.Fatalf("missing expected layers: %v", layers)
	}
	// Most depended-upon layers sink to the bottom.
	if !(database > services && services > api) {
		t.Fatalf("hierarchy: api=%d services=%d database=%d", api, services, database)
	}
	for i, l := range layers {
		if l.Level != i {
			t.Fatalf("layers not in ascending level order: %v", layers)
		}
	}
}

func TestClassifyLayersPartitionNodes(t *testing.T) {
	g := graphOf([]string{"src/ui/a.ts", "src/db/b.ts", "toplevel.ts", "misc/c.ts"}, nil)
	layers := Classify(g, nil, nil)

	seen := map[string]int{}
	for _, l := range layers {
		for _, m := range l.Modules {
			seen[m]++
		}
	}
	if len(seen) != len(g.Nodes) {
		t.Fatalf("partition covers %d of %d nodes", len(seen), len(g.Nodes))
	}
	for p, n := range seen {
		if n != 1 {
			t.Fatalf("module %s appears %d times", p, n)
		}
	}
}

func TestClassifyFallback(t *testing.T) {
	g := graphOf([]string{"misc/thing.ts", "standalone.ts"}, nil)
	layers := Classify(g, nil, nil)

	if l := g.Nodes["misc/thing.ts"].Layer; l != "misc" {
		t.Fatalf("fallback layer: got %s want misc", l)
	}
	if l := g.Nodes["standalone.ts"].Layer; l != "root" {
		t.Fatalf("no-directory fallback: got %s want root", l)
	}
	_ = layers
}

func TestClassifyUserRulesWinFirst(t *testing.T) {
	g := graphOf([]string{"src/services/payment.ts"}, nil)
	layers := Classify(g, []GroupingRule{
		{Pattern: "src/services/payment*", Label: "Payments Core", Color: "#112233"},
	}, nil)

	if got := g.Nodes["src/services/payment.ts"].Layer; got != "payments-core" {
		t.Fatalf("layer: got %s want payments-core", got)
	}
	if layers[0].Name != "Payments Core" {
		t.Fatalf("name: got %s", layers[0].Name)
	}
	if layers[0].Color != "#112233" {
		t.Fatalf("color: got %s", layers[0].Color)
	}
}

func TestClassifyStylesOverridePalette(t *testing.T) {
	g := graphOf([]string{"src/api/a.ts"}, nil)
	layers := Classify(g, nil, map[string]string{"api": "#abcdef"})
	if layers[0].Color != "#abcdef" {
		t.Fatalf("color: got %s want #abcdef", layers[0].Color)
	}
}

func TestClassifyModulesOrderedByCentrality(t *testing.T) {
	g := graphOf(
		[]string{"src/api/a.ts", "src/api/b.ts", "src/api/c.ts"},
		[]*t0.ModuleEdge{
			{Source: "src/api/a.ts", Target: "src/api/b.ts", Weight: 5},
		},
	)
	layers := Classify(g, nil, nil)
	if len(layers) != 1 {
		t.Fatalf("layers: %v", layers)
	}
	mods := layers[0].Modules
	// a and b tie on centrality (5 each), ties break by path; c trails.
	want := []string{"src/api/a.ts", "src/api/b.ts", "src/api/c.ts"}
	for i, w := range want {
		if mods[i] != w {
			t.Fatalf("modules[%d]=%s want %s (all=%v)", i, mods[i], w, mods)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"payments-core": "Payments Core",
		"api":           "Api",
		"shared_utils":  "Shared Utils",
	}
	for in, want := range cases {
		if got := displayName(in); got != want {
			t.Fatalf("displayName(%q)=%q want %q", in, got, want)
		}
	}
}
