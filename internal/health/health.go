package health

import (
	"math"

	t "archmap/internal/types"
)

// Summarize derives the health metrics and grade from a finished graph
// and its layers.
func Summarize(g *t.DependencyGraph, layers []t.Layer) t.HealthSummary {
	s := t.HealthSummary{
		CircularDependencyCount: len(g.Cycles),
		LayerViolations:         layerViolations(g, layers),
		OrphanCount:             len(g.OrphanModules),
	}

	var couplingSum float64
	var degreeSum int
	for _, n := range g.Nodes {
		couplingSum += n.Coupling
		degreeSum += n.InDegree + n.OutDegree
		if n.InDegree > s.MaxInDegree {
			s.MaxInDegree = n.InDegree
		}
		if n.OutDegree > s.MaxOutDegree {
			s.MaxOutDegree = n.OutDegree
		}
		if n.IsEntryPoint {
			s.EntryPointsCount++
		}
	}
	nodeCount := len(g.Nodes)
	avgDegree := 0.0
	if nodeCount > 0 {
		s.AverageCoupling = round2(couplingSum / float64(nodeCount))
		avgDegree = float64(degreeSum) / float64(nodeCount)
	}

	s.Score = score(g, s, avgDegree, nodeCount)
	s.Grade = grade(s.Score)
	s.Status = status(s.Score)
	return s
}

// layerViolations counts edges pointing "up" against the inferred
// hierarchy: the source layer's level strictly greater than the target's.
func layerViolations(g *t.DependencyGraph, layers []t.Layer) int {
	levels := make(map[string]int, len(layers))
	for _, l := range layers {
		levels[l.ID] = l.Level
	}
	violations := 0
	for _, e := range g.Edges {
		src, okS := g.Nodes[e.Source]
		dst, okD := g.Nodes[e.Target]
		if !okS || !okD {
			continue
		}
		if levels[src.Layer] > levels[dst.Layer] {
			violations++
		}
	}
	return violations
}

// score starts at 100 and applies the penalty schedule, clamped to
// [0, 100].
func score(g *t.DependencyGraph, s t.HealthSummary, avgDegree float64, nodeCount int) int {
	sc := 100

	cyclePenalty := 3 * s.CircularDependencyCount
	if cyclePenalty > 30 {
		cyclePenalty = 30
	}
	sc -= cyclePenalty

	if avgDegree > 5 {
		sc -= 5
	}
	if avgDegree > 10 {
		sc -= 10
	}
	if avgDegree > 20 {
		sc -= 5
	}

	if nodeCount > 0 {
		ratio := float64(s.OrphanCount) / float64(nodeCount)
		switch {
		case ratio > 0.5:
			sc -= 15
		case ratio > 0.3:
			sc -= 10
		case ratio > 0.1:
			sc -= 5
		}
	}

	violationPenalty := s.LayerViolations
	if violationPenalty > 15 {
		violationPenalty = 15
	}
	sc -= violationPenalty

	if s.MaxInDegree > 50 {
		sc -= 5
	}
	if s.MaxOutDegree > 50 {
		sc -= 5
	}

	hubs := hubCount(g)
	switch {
	case hubs > 3:
		sc -= 5
	case hubs > 0:
		sc -= 2
	}

	if i, ok := globalInstability(g); ok && (i < 0.1 || i > 0.9) {
		sc -= 3
	}

	if sc < 0 {
		sc = 0
	}
	if sc > 100 {
		sc = 100
	}
	return sc
}

// hubCount counts modules with at least 5 distinct inbound and 5 distinct
// outbound neighbor modules.
func hubCount(g *t.DependencyGraph) int {
	in := make(map[string]map[string]struct{})
	out := make(map[string]map[string]struct{})
	add := func(m map[string]map[string]struct{}, key, other string) {
		set := m[key]
		if set == nil {
			set = make(map[string]struct{})
			m[key] = set
		}
		set[other] = struct{}{}
	}
	for _, e := range g.Edges {
		add(out, e.Source, e.Target)
		add(in, e.Target, e.Source)
	}
	count := 0
	for p := range g.Nodes {
		if len(in[p]) >= 5 && len(out[p]) >= 5 {
			count++
		}
	}
	return count
}

// globalInstability computes Ce/(Ca+Ce) over the whole graph, where Ce
// includes references to external packages and Ca covers internal inbound
// weight only. Returns ok=false when the graph has no dependencies.
func globalInstability(g *t.DependencyGraph) (float64, bool) {
	ca, ce := 0, 0
	for _, e := range g.Edges {
		ca += e.Weight
		ce += e.Weight
	}
	ce += len(g.ExternalPackages)
	if ca+ce == 0 {
		return 0, false
	}
	return float64(ce) / float64(ca+ce), true
}

func grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func status(score int) string {
	switch {
	case score >= 70:
		return "healthy"
	case score >= 50:
		return "warning"
	default:
		return "critical"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
