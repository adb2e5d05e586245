package layer

import (
	"regexp"
	"sort"
	"strings"

	"archmap/internal/scan"
	t "archmap/internal/types"
)

// GroupingRule is a user-supplied classification rule. Pattern is a glob
// matched case-insensitively against the module path, anchored at the
// start. User rules outrank every built-in rule.
type GroupingRule struct {
	Pattern string
	Label   string
	Color   string
}

// rule is a compiled classification rule; first match wins.
type rule struct {
	re    *regexp.Regexp
	id    string
	level int
	color string
}

// fallbackLevel is assigned when no rule matches.
const fallbackLevel = 99

// defaultPalette maps built-in layer ids to their colors.
var defaultPalette = map[string]string{
	"frontend": "#3498db",
	"api":      "#1abc9c",
	"services": "#e74c3c",
	"database": "#9b59b6",
	"shared":   "#e67e22",
	"cli":      "#2ecc71",
	"config":   "#95a5a6",
	"types":    "#7f8c8d",
}

// neutralColor is used when neither styles, rule colors, nor the palette
// supply one.
const neutralColor = "#bdc3c7"

var builtinRules = []rule{
	{re: segmentRe("ui|views|pages|components|frontend|app"), id: "frontend", level: 0},
	{re: segmentRe("api|routes|controllers|handlers|endpoints"), id: "api", level: 1},
	{re: segmentRe("services|business|logic|core|domain"), id: "services", level: 2},
	{re: segmentRe("db|database|models|entities|repositories|data"), id: "database", level: 3},
	{re: segmentRe("utils|helpers|lib|common|shared"), id: "shared", level: 4},
	{re: segmentRe("cli"), id: "cli", level: 5},
	{re: segmentRe("config"), id: "config", level: 6},
	{re: segmentRe("types"), id: "types", level: 7},
}

func segmentRe(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(^|/)(` + alternatives + `)(/|$)`)
}

// Classify assigns every node of g to a layer, infers the layer hierarchy
// from dependency direction, and returns layers in ascending level order.
// Node Layer fields are set as a side effect.
func Classify(g *t.DependencyGraph, grouping []GroupingRule, styles map[string]string) []t.Layer {
	rules := append(compileGrouping(grouping), builtinRules...)

	type bucket struct {
		id    string
		level int
		color string
		paths []string
	}
	buckets := make(map[string]*bucket)
	order := []string{}

	paths := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		id, level, ruleColor := classifyPath(rules, p)
		b, ok := buckets[id]
		if !ok {
			b = &bucket{id: id, level: level, color: layerColor(id, ruleColor, styles)}
			buckets[id] = b
			order = append(order, id)
		}
		b.paths = append(b.paths, p)
		g.Nodes[p].Layer = id
	}

	layers := make([]t.Layer, 0, len(order))
	for _, id := range order {
		b := buckets[id]
		layers = append(layers, t.Layer{
			ID:      b.id,
			Name:    displayName(b.id),
			Modules: b.paths,
			Color:   b.color,
			Level:   b.level,
		})
	}

	inferHierarchy(g, layers)
	orderModules(g, layers)
	return layers
}

func compileGrouping(grouping []GroupingRule) []rule {
	out := make([]rule, 0, len(grouping))
	for _, gr := range grouping {
		pattern := strings.TrimSpace(gr.Pattern)
		if pattern == "" || strings.TrimSpace(gr.Label) == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)^` + scan.GlobBody(pattern))
		if err != nil {
			continue
		}
		out = append(out, rule{re: re, id: slug(gr.Label), level: 0, color: gr.Color})
	}
	return out
}

func classifyPath(rules []rule, p string) (id string, level int, color string) {
	normalized := strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	for _, r := range rules {
		if r.re.MatchString(normalized) {
			return r.id, r.level, r.color
		}
	}
	if idx := strings.Index(normalized, "/"); idx > 0 {
		return normalized[:idx], fallbackLevel, ""
	}
	return "root", fallbackLevel, ""
}

func layerColor(id, ruleColor string, styles map[string]string) string {
	if c, ok := styles[id]; ok {
		return c
	}
	if ruleColor != "" {
		return ruleColor
	}
	if c, ok := defaultPalette[id]; ok {
		return c
	}
	return neutralColor
}

// displayName turns a slug into a title-cased name: hyphen/underscore
// segments become space-separated words.
func displayName(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func slug(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, s)
	return strings.Trim(s, "-")
}

// inferHierarchy re-levels layers by observed dependency direction: the
// aggregate inbound weight from cross-layer edges sorts layers ascending,
// so the most depended-upon layers sink to the bottom.
func inferHierarchy(g *t.DependencyGraph, layers []t.Layer) {
	inbound := make(map[string]int, len(layers))
	for _, e := range g.Edges {
		src, okS := g.Nodes[e.Source]
		dst, okD := g.Nodes[e.Target]
		if !okS || !okD || src.Layer == dst.Layer {
			continue
		}
		inbound[dst.Layer] += e.Weight
	}
	sort.SliceStable(layers, func(i, j int) bool {
		wi, wj := inbound[layers[i].ID], inbound[layers[j].ID]
		if wi != wj {
			return wi < wj
		}
		if layers[i].Level != layers[j].Level {
			return layers[i].Level < layers[j].Level
		}
		return layers[i].ID < layers[j].ID
	})
	for i := range layers {
		layers[i].Level = i
	}
}

// orderModules sorts each layer's members by centrality descending, ties
// broken by ascending path.
func orderModules(g *t.DependencyGraph, layers []t.Layer) {
	for _, l := range layers {
		sort.SliceStable(l.Modules, func(i, j int) bool {
			a, b := g.Nodes[l.Modules[i]], g.Nodes[l.Modules[j]]
			ca, cb := a.InDegree+a.OutDegree, b.InDegree+b.OutDegree
			if ca != cb {
				return ca > cb
			}
			return a.Path < b.Path
		})
	}
}
