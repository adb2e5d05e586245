package emit

import (
	"html/template"
	"strings"

	t "archmap/internal/types"
)

// Dashboard renders a standalone HTML page with the health summary, the
// layer table, and the cycle list. All values pass through html/template
// escaping.
func Dashboard(result *t.AnalysisResult) (string, error) {
	var sb strings.Builder
	if err := dashboardTmpl.Execute(&sb, dashboardData(result)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type dashboardView struct {
	Root       string
	Health     t.HealthSummary
	GradeClass string
	Layers     []t.Layer
	Cycles     []string
	FileCount  int
	EdgeCount  int
	Externals  []string
}

func dashboardData(result *t.AnalysisResult) dashboardView {
	view := dashboardView{
		Root:       result.Root,
		Health:     result.Health,
		GradeClass: "grade-" + strings.ToLower(result.Health.Grade),
		Layers:     result.Layers,
		FileCount:  result.FileCount,
		EdgeCount:  result.EdgeCount,
		Externals:  result.Graph.ExternalPackages,
	}
	for _, c := range result.Graph.Cycles {
		view.Cycles = append(view.Cycles, strings.Join(c, " → "))
	}
	return view
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Architecture Health</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #2c3e50; background: #f8f9fa; }
h1 { font-size: 1.4rem; }
.cards { display: flex; gap: 1rem; flex-wrap: wrap; margin: 1rem 0; }
.card { background: #fff; border: 1px solid #e1e4e8; border-radius: 8px; padding: 1rem 1.5rem; min-width: 9rem; }
.card .value { font-size: 1.6rem; font-weight: 600; }
.card .label { font-size: .75rem; color: #7f8c8d; text-transform: uppercase; }
.grade { font-size: 2.4rem; font-weight: 700; border-radius: 8px; padding: .5rem 1.2rem; color: #fff; display: inline-block; }
.grade-a { background: #2ecc71; } .grade-b { background: #27ae60; }
.grade-c { background: #f39c12; } .grade-d { background: #e67e22; }
.grade-f { background: #e74c3c; }
table { border-collapse: collapse; background: #fff; width: 100%; }
th, td { border: 1px solid #e1e4e8; padding: .4rem .8rem; text-align: left; font-size: .85rem; }
th { background: #f1f3f5; }
.swatch { display: inline-block; width: .8rem; height: .8rem; border-radius: 2px; margin-right: .4rem; vertical-align: middle; }
.cycle { font-family: monospace; font-size: .8rem; color: #c0392b; }
</style>
</head>
<body>
<h1>Architecture Health — {{.Root}}</h1>
<div class="cards">
  <div class="card"><div class="grade {{.GradeClass}}">{{.Health.Grade}}</div><div class="label">grade ({{.Health.Score}}/100, {{.Health.Status}})</div></div>
  <div class="card"><div class="value">{{.FileCount}}</div><div class="label">modules</div></div>
  <div class="card"><div class="value">{{.EdgeCount}}</div><div class="label">dependencies</div></div>
  <div class="card"><div class="value">{{.Health.CircularDependencyCount}}</div><div class="label">cycles</div></div>
  <div class="card"><div class="value">{{.Health.LayerViolations}}</div><div class="label">layer violations</div></div>
  <div class="card"><div class="value">{{.Health.AverageCoupling}}</div><div class="label">avg coupling</div></div>
  <div class="card"><div class="value">{{.Health.OrphanCount}}</div><div class="label">orphans</div></div>
</div>
<h2>Layers</h2>
<table>
<tr><th>Level</th><th>Layer</th><th>Modules</th></tr>
{{range .Layers}}<tr><td>{{.Level}}</td><td><span class="swatch" style="background:{{.Color}}"></span>{{.Name}}</td><td>{{len .Modules}}</td></tr>
{{end}}</table>
{{if .Cycles}}<h2>Circular dependencies</h2>
{{range .Cycles}}<div class="cycle">{{.}}</div>
{{end}}{{end}}
{{if .Externals}}<h2>External packages</h2>
<table><tr><th>Package</th></tr>
{{range .Externals}}<tr><td>{{.}}</td></tr>
{{end}}</table>{{end}}
</body>
</html>
`))
