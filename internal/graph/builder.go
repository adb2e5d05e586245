package graph

import (
	"log"
	"os"
	"path"
	"sort"
	"strings"

	t "archmap/internal/types"
)

var debugEnabled = os.Getenv("ARCHMAP_DEBUG") != ""

func debugf(format string, args ...any) {
	if debugEnabled {
		log.Printf(format, args...)
	}
}

// entryPointNames are the case-folded basenames that mark a module as an
// entry point.
var entryPointNames = map[string]struct{}{
	"index": {}, "main": {}, "app": {}, "server": {}, "cli": {}, "entry": {},
}

// probeExtensions are appended to an unresolved candidate, in order.
var probeExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".py"}

// indexSuffixes are appended after "/index", in order.
var indexSuffixes = []string{"", ".ts", ".js"}

// highCouplingThreshold marks nodes whose normalized coupling exceeds it.
const highCouplingThreshold = 0.7

// Build constructs the dependency graph from parsed files: one node per
// file, imports resolved against the known file set and collapsed into
// weighted edges, then derived degrees, coupling, and cycles.
func Build(files []t.ParsedFile) *t.DependencyGraph {
	g := &t.DependencyGraph{
		Nodes:            make(map[string]*t.ModuleNode, len(files)),
		Edges:            []*t.ModuleEdge{},
		ExternalPackages: []string{},
		Cycles:           [][]string{},
	}

	for _, pf := range files {
		g.Nodes[pf.File.RelPath] = newNode(pf)
	}

	lookup := buildLookup(files)
	externals := make(map[string]struct{})
	edges := make(map[[2]string]*t.ModuleEdge)

	for _, pf := range files {
		for _, rec := range pf.Imports {
			if rec.IsExternal {
				externals[packageName(rec.Source)] = struct{}{}
				continue
			}
			targets := resolveImport(lookup, pf.File.RelPath, rec)
			if len(targets) == 0 {
				debugf("graph: unresolved import %q in %s (line %d)", rec.Source, pf.File.RelPath, rec.Line)
				continue
			}
			for _, target := range targets {
				addEdge(edges, pf.File.RelPath, target, rec.Kind)
			}
		}
	}

	g.Edges = sortedEdges(edges)
	g.ExternalPackages = sortedKeys(externals)

	computeDegrees(g)
	computeCoupling(g)
	g.Cycles = detectCycles(sortedNodePaths(g), g.Edges)
	return g
}

func newNode(pf t.ParsedFile) *t.ModuleNode {
	rel := pf.File.RelPath
	base := path.Base(rel)
	if ext := path.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	name := base
	if strings.EqualFold(base, "index") {
		if parent := path.Base(path.Dir(rel)); parent != "." && parent != "/" {
			name = parent
		}
	}
	_, entry := entryPointNames[strings.ToLower(base)]
	return &t.ModuleNode{
		Path:         rel,
		Name:         name,
		Language:     pf.File.Language,
		IsEntryPoint: entry,
	}
}

// buildLookup indexes every known file under up to three keys: its
// root-relative path, that path with the extension stripped, and, for
// index files, the parent directory path. The first file claiming a key
// keeps it.
func buildLookup(files []t.ParsedFile) map[string]string {
	lookup := make(map[string]string, len(files)*3)
	put := func(key, target string) {
		if key == "" || key == "." {
			return
		}
		if _, exists := lookup[key]; !exists {
			lookup[key] = target
		}
	}
	for _, pf := range files {
		rel := pf.File.RelPath
		put(rel, rel)
		if ext := path.Ext(rel); ext != "" {
			stripped := rel[:len(rel)-len(ext)]
			put(stripped, rel)
			if strings.EqualFold(path.Base(stripped), "index") {
				put(path.Dir(rel), rel)
			}
		}
	}
	return lookup
}

// resolveImport computes candidate root-relative paths for a non-external
// import and probes the lookup table. Most imports yield at most one
// target; a bare-relative Python `from . import a, b` yields one per
// resolved name.
func resolveImport(lookup map[string]string, fromPath string, rec t.ImportRecord) []string {
	if rec.Kind == t.KindPythonImport || rec.Kind == t.KindPythonFrom {
		return resolvePython(lookup, fromPath, rec)
	}

	var candidate string
	switch {
	case strings.HasPrefix(rec.Source, "."):
		candidate = path.Join(path.Dir(fromPath), rec.Source)
	case strings.HasPrefix(rec.Source, "/"):
		candidate = path.Clean(strings.TrimPrefix(rec.Source, "/"))
	default:
		candidate = path.Clean(rec.Source)
	}
	if target := probe(lookup, candidate); target != "" {
		return []string{target}
	}
	return nil
}

// resolvePython maps dotted module paths onto file paths. Relative sources
// climb one directory per dot past the first; a source that is nothing but
// dots (e.g. `from . import b`) resolves each imported name as a sibling
// module, falling back to the package __init__.
func resolvePython(lookup map[string]string, fromPath string, rec t.ImportRecord) []string {
	source := rec.Source
	if !rec.IsRelative {
		if target := probe(lookup, strings.ReplaceAll(source, ".", "/")); target != "" {
			return []string{target}
		}
		return nil
	}

	dots := 0
	for dots < len(source) && source[dots] == '.' {
		dots++
	}
	base := path.Dir(fromPath)
	for i := 1; i < dots; i++ {
		base = path.Dir(base)
	}
	rest := strings.ReplaceAll(source[dots:], ".", "/")

	if rest != "" {
		if target := probe(lookup, path.Join(base, rest)); target != "" {
			return []string{target}
		}
		return nil
	}

	var targets []string
	for _, name := range rec.Names {
		if name == "*" {
			continue
		}
		if target := probe(lookup, path.Join(base, name)); target != "" {
			targets = append(targets, target)
		}
	}
	if len(targets) > 0 {
		return targets
	}
	if target := probe(lookup, path.Join(base, "__init__")); target != "" {
		return []string{target}
	}
	return nil
}

// probe tries, in order: the exact candidate, the candidate with its
// extension stripped, the candidate with each known extension appended,
// and the candidate as a directory with an index module.
func probe(lookup map[string]string, candidate string) string {
	if candidate == "" || candidate == "." || strings.HasPrefix(candidate, "..") {
		return ""
	}
	if target, ok := lookup[candidate]; ok {
		return target
	}
	if ext := path.Ext(candidate); ext != "" {
		if target, ok := lookup[candidate[:len(candidate)-len(ext)]]; ok {
			return target
		}
	}
	for _, ext := range probeExtensions {
		if target, ok := lookup[candidate+ext]; ok {
			return target
		}
	}
	for _, suffix := range indexSuffixes {
		if target, ok := lookup[candidate+"/index"+suffix]; ok {
			return target
		}
	}
	return ""
}

// packageName extracts the external package identifier: scoped names keep
// their first two slash segments, everything else the first.
func packageName(source string) string {
	parts := strings.Split(source, "/")
	if strings.HasPrefix(source, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func addEdge(edges map[[2]string]*t.ModuleEdge, source, target string, kind t.ImportKind) {
	key := [2]string{source, target}
	e, ok := edges[key]
	if !ok {
		e = &t.ModuleEdge{Source: source, Target: target}
		edges[key] = e
	}
	e.Weight++
	for _, k := range e.Kinds {
		if k == kind {
			return
		}
	}
	e.Kinds = append(e.Kinds, kind)
}

func sortedEdges(edges map[[2]string]*t.ModuleEdge) []*t.ModuleEdge {
	out := make([]*t.ModuleEdge, 0, len(edges))
	for _, e := range edges {
		sort.Slice(e.Kinds, func(i, j int) bool { return e.Kinds[i] < e.Kinds[j] })
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedNodePaths(g *t.DependencyGraph) []string {
	paths := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func computeDegrees(g *t.DependencyGraph) {
	for _, e := range g.Edges {
		if src, ok := g.Nodes[e.Source]; ok {
			src.OutDegree += e.Weight
		}
		if dst, ok := g.Nodes[e.Target]; ok {
			dst.InDegree += e.Weight
		}
	}
}

func computeCoupling(g *t.DependencyGraph) {
	max := 1
	for _, n := range g.Nodes {
		if d := n.InDegree + n.OutDegree; d > max {
			max = d
		}
	}
	var high, orphans []string
	for _, p := range sortedNodePaths(g) {
		n := g.Nodes[p]
		n.Coupling = float64(n.InDegree+n.OutDegree) / float64(max)
		if n.Coupling > highCouplingThreshold {
			high = append(high, p)
		}
		if n.InDegree == 0 && !n.IsEntryPoint {
			orphans = append(orphans, p)
		}
	}
	g.HighCouplingModules = high
	g.OrphanModules = orphans
}
