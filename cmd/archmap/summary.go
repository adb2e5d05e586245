package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	t "archmap/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	goodStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

// renderSummary formats the health summary for the terminal.
func renderSummary(result *t.AnalysisResult) string {
	h := result.Health

	gradeStyle := goodStyle
	switch h.Status {
	case "warning":
		gradeStyle = warnStyle
	case "critical":
		gradeStyle = badStyle
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Architecture Health"))
	sb.WriteString("  ")
	sb.WriteString(gradeStyle.Render(fmt.Sprintf("%s (%d/100, %s)", h.Grade, h.Score, h.Status)))
	sb.WriteString("\n\n")

	row := func(label string, value any) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", label)))
		sb.WriteString(fmt.Sprintf("%v\n", value))
	}
	row("modules", result.FileCount)
	row("dependencies", result.EdgeCount)
	row("layers", len(result.Layers))
	row("cycles", h.CircularDependencyCount)
	row("layer violations", h.LayerViolations)
	row("avg coupling", h.AverageCoupling)
	row("orphans", h.OrphanCount)
	row("entry points", h.EntryPointsCount)
	row("external pkgs", len(result.Graph.ExternalPackages))

	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
