package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/slvDev/solwatch/internal/core/app"
	"github.com/slvDev/solwatch/internal/core/findings"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	highStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	mediumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FB923C")).
			Bold(true)

	lowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	gasStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34D399"))

	ncStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#94A3B8"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))
)

func severityStyle(s findings.Severity) lipgloss.Style {
	switch s {
	case findings.SeverityHigh:
		return highStyle
	case findings.SeverityMedium:
		return mediumStyle
	case findings.SeverityLow:
		return lowStyle
	case findings.SeverityGas:
		return gasStyle
	}
	return ncStyle
}

// maxTerminalLocations caps how many locations a finding prints before
// collapsing the rest into a count; full detail belongs in markdown/JSON.
const maxTerminalLocations = 5

// RenderTerminal writes the interactive summary shown after a CLI run.
func RenderTerminal(r *app.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("solwatch analysis") + "\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("%d files | %d contracts | %s",
		r.Files, r.Contracts, r.Duration.Round(time.Millisecond))) + "\n\n")

	if r.Summary.Total == 0 {
		b.WriteString(successStyle.Render("No issues found") + "\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s  %s  %s  %s  %s\n\n",
		highStyle.Render(fmt.Sprintf("High: %d", r.Summary.High)),
		mediumStyle.Render(fmt.Sprintf("Medium: %d", r.Summary.Medium)),
		lowStyle.Render(fmt.Sprintf("Low: %d", r.Summary.Low)),
		gasStyle.Render(fmt.Sprintf("Gas: %d", r.Summary.Gas)),
		ncStyle.Render(fmt.Sprintf("NC: %d", r.Summary.NC))))

	for _, f := range r.Findings {
		badge := severityStyle(f.Severity).Render("[" + f.Severity.String() + "]")
		b.WriteString(fmt.Sprintf("%s %s (%d)\n", badge, f.Title, len(f.Locations)))
		for i, loc := range f.Locations {
			if i == maxTerminalLocations {
				b.WriteString(locationStyle.Render(
					fmt.Sprintf("    ... and %d more", len(f.Locations)-maxTerminalLocations)) + "\n")
				break
			}
			b.WriteString(locationStyle.Render(
				fmt.Sprintf("    %s:%d", loc.File, loc.Line)) + "\n")
		}
	}

	if len(r.MissingContracts) > 0 {
		b.WriteString("\n" + statusStyle.Render(fmt.Sprintf(
			"warning: %d base contracts unresolved: %s",
			len(r.MissingContracts), strings.Join(r.MissingContracts, ", "))) + "\n")
	}

	return b.String()
}
