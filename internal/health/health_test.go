package health

import (
	"testing"

	"github.com/stretchr/testify/assert"

	t0 "archmap/internal/types"
)

func emptyGraph() *t0.DependencyGraph {
	return &t0.DependencyGraph{
		Nodes:            map[string]*t0.ModuleNode{},
		Edges:            []*t0.ModuleEdge{},
		ExternalPackages: []string{},
		Cycles:           [][]string{},
	}
}

func TestSummarizeEmptyRepo(t *testing.T) {
	s := Summarize(emptyGraph(), nil)
	assert.Equal(t, 100, s.Score)
	assert.Equal(t, "A", s.Grade)
	assert.Equal(t, "healthy", s.Status)
	assert.Equal(t, 0.0, s.AverageCoupling)
	assert.Equal(t, 0, s.OrphanCount)
}

func TestSummarizeLayerViolations(t *testing.T) {
	g := emptyGraph()
	g.Nodes["src/db/m.ts"] = &t0.ModuleNode{Path: "src/db/m.ts", Layer: "database"}
	g.Nodes["src/controllers/u.ts"] = &t0.ModuleNode{Path: "src/controllers/u.ts", Layer: "api"}
	g.Edges = []*t0.ModuleEdge{
		{Source: "src/db/m.ts", Target: "src/controllers/u.ts", Weight: 1},
	}
	layers := []t0.Layer{
		{ID: "api", Level: 0, Modules: []string{"src/controllers/u.ts"}},
		{ID: "database", Level: 1, Modules: []string{"src/db/m.ts"}},
	}
	s := Summarize(g, layers)
	assert.GreaterOrEqual(t, s.LayerViolations, 1)
}

func TestSummarizeCyclePenalty(t *testing.T) {
	g := emptyGraph()
	g.Nodes["a"] = &t0.ModuleNode{Path: "a", InDegree: 1, OutDegree: 1, IsEntryPoint: true}
	g.Nodes["b"] = &t0.ModuleNode{Path: "b", InDegree: 1, OutDegree: 1}
	g.Edges = []*t0.ModuleEdge{
		{Source: "a", Target: "b", Weight: 1},
		{Source: "b", Target: "a", Weight: 1},
	}
	g.Cycles = [][]string{{"a", "b", "a"}}
	s := Summarize(g, nil)
	assert.Equal(t, 1, s.CircularDependencyCount)
	assert.Less(t, s.Score, 100)
}

func TestSummarizeCyclePenaltyCapped(t *testing.T) {
	g := emptyGraph()
	g.Nodes["a"] = &t0.ModuleNode{Path: "a", IsEntryPoint: true}
	for i := 0; i < 20; i++ {
		g.Cycles = append(g.Cycles, []string{"a", "b", "a"})
	}
	s := Summarize(g, nil)
	// 20 cycles at -3 each would be -60; the cap keeps it at -30.
	assert.GreaterOrEqual(t, s.Score, 100-30-10)
}

func TestSummarizeMaxDegrees(t *testing.T) {
	g := emptyGraph()
	g.Nodes["a"] = &t0.ModuleNode{Path: "a", InDegree: 7, OutDegree: 2, IsEntryPoint: true}
	g.Nodes["b"] = &t0.ModuleNode{Path: "b", InDegree: 1, OutDegree: 9}
	s := Summarize(g, nil)
	assert.Equal(t, 7, s.MaxInDegree)
	assert.Equal(t, 9, s.MaxOutDegree)
}

func TestGradeBands(t *testing.T) {
	cases := map[int]string{100: "A", 90: "A", 89: "B", 80: "B", 79: "C", 70: "C", 69: "D", 60: "D", 59: "F", 0: "F"}
	for score, want := range cases {
		assert.Equal(t, want, grade(score), "score %d", score)
	}
}

func TestStatusBands(t *testing.T) {
	assert.Equal(t, "healthy", status(70))
	assert.Equal(t, "warning", status(69))
	assert.Equal(t, "warning", status(50))
	assert.Equal(t, "critical", status(49))
}

func TestOrphanRatioPenalty(t *testing.T) {
	g := emptyGraph()
	g.Nodes["main.ts"] = &t0.ModuleNode{Path: "main.ts", IsEntryPoint: true}
	g.Nodes["a.ts"] = &t0.ModuleNode{Path: "a.ts"}
	g.Nodes["b.ts"] = &t0.ModuleNode{Path: "b.ts"}
	g.OrphanModules = []string{"a.ts", "b.ts"}
	s := Summarize(g, nil)
	// 2/3 orphans lands in the >50% tier.
	assert.Equal(t, 85, s.Score)
	assert.Equal(t, 2, s.OrphanCount)
}
