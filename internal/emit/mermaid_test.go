package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	t0 "archmap/internal/types"
)

func sampleResult() *t0.AnalysisResult {
	g := &t0.DependencyGraph{Nodes: map[string]*t0.ModuleNode{
		"src/api/a.ts":    {Path: "src/api/a.ts", Name: "a"},
		"src/shared/b.ts": {Path: "src/shared/b.ts", Name: "b"},
		"1digit.ts":       {Path: "1digit.ts", Name: "1digit"},
	}}
	g.Edges = []*t0.ModuleEdge{
		{Source: "src/api/a.ts", Target: "src/shared/b.ts", Weight: 1},
	}
	return &t0.AnalysisResult{
		Graph: g,
		Layers: []t0.Layer{
			{ID: "api", Name: "Api", Color: "#1abc9c", Level: 0, Modules: []string{"src/api/a.ts"}},
			{ID: "shared", Name: "Shared", Color: "#e67e22", Level: 1, Modules: []string{"src/shared/b.ts"}},
			{ID: "root", Name: "Root", Color: "#bdc3c7", Level: 2, Modules: []string{"1digit.ts"}},
		},
	}
}

func TestMermaidStructure(t *testing.T) {
	out := Mermaid(sampleResult())
	assert.True(t, strings.HasPrefix(out, "flowchart TB\n"))
	assert.Contains(t, out, `subgraph layer_api["Api"]`)
	assert.Contains(t, out, `subgraph layer_shared["Shared"]`)
	assert.Contains(t, out, "src_api_a_ts --> src_shared_b_ts")
}

func TestSanitizeMermaidID(t *testing.T) {
	assert.Equal(t, "src_api_a_ts", sanitizeMermaidID("src/api/a.ts"))
	assert.Equal(t, "_1digit_ts", sanitizeMermaidID("1digit.ts"))
	assert.Equal(t, "_", sanitizeMermaidID(""))
	assert.Equal(t, "ok_name", sanitizeMermaidID("ok-name"))
}

func TestMermaidIDsUnique(t *testing.T) {
	out := Mermaid(sampleResult())
	// Every node renders exactly once.
	assert.Equal(t, 1, strings.Count(out, `src_api_a_ts["a"]`))
	assert.Equal(t, 1, strings.Count(out, `_1digit_ts["1digit"]`))
}
