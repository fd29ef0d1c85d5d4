package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/runstate"
)

var (
	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Underline(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimmedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	categoryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236"))
)

var tabNames = []string{"Overview", "Apps", "Runs"}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	header := fmt.Sprintf(" App Forge │ Apps: %d │ Generated: %d │ Bugs fixed: %d ",
		len(m.apps), m.stats[runstate.StatAppsGenerated], m.stats[runstate.StatBugsFixed])
	b.WriteString(headerStyle.Width(m.width).Render(header))
	b.WriteString("\n")

	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	var content string
	switch m.activeTab {
	case 0:
		content = m.renderOverview()
	case 1:
		content = m.renderApps()
	case 2:
		content = m.renderRuns()
	}
	b.WriteString(sectionStyle.Width(m.width - 2).Render(content))
	b.WriteString("\n")

	b.WriteString(dimmedStyle.Render(" q quit │ tab switch │ j/k scroll │ r refresh"))
	return b.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if i == m.activeTab {
			parts[i] = tabActiveStyle.Render(name)
		} else {
			parts[i] = tabInactiveStyle.Render(name)
		}
	}
	return " " + strings.Join(parts, "  ")
}

func (m Model) renderOverview() string {
	var b strings.Builder

	b.WriteString(categoryStyle.Render("Catalog by category"))
	b.WriteString("\n")
	counts := map[string]int{}
	for _, app := range m.apps {
		counts[app.Category]++
	}
	if len(counts) == 0 {
		b.WriteString(dimmedStyle.Render("  no apps yet"))
		b.WriteString("\n")
	} else {
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %-28s %d\n", name, counts[name])
		}
	}

	b.WriteString("\n")
	b.WriteString(categoryStyle.Render("Last run"))
	b.WriteString("\n")
	if m.lastRun == nil {
		b.WriteString(dimmedStyle.Render("  never"))
	} else {
		fmt.Fprintf(&b, "  %s: %d new apps, %d bugs fixed",
			humanize.Time(m.lastRun.Timestamp), len(m.lastRun.NewApps), len(m.lastRun.BugsFixed))
	}
	return b.String()
}

func (m Model) renderApps() string {
	if len(m.apps) == 0 {
		return dimmedStyle.Render("no apps in the catalog")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-34s %-22s %s\n", "NAME", "CATEGORY", "CREATED")

	end := m.scroll + m.visibleRows()
	if end > len(m.apps) {
		end = len(m.apps)
	}
	for i := m.scroll; i < end; i++ {
		app := m.apps[i]
		line := fmt.Sprintf("%-34s %-22s %s", truncate(app.Name, 33), app.Category, humanize.Time(app.CreatedAt))
		if i == m.selectedRow {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderRuns() string {
	if len(m.runs) == 0 {
		return dimmedStyle.Render("no recorded runs")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-20s %-10s %s\n", "STATUS", "STARTED", "APPS", "BUGS FIXED")

	end := m.scroll + m.visibleRows()
	if end > len(m.runs) {
		end = len(m.runs)
	}
	for i := m.scroll; i < end; i++ {
		run := m.runs[i]
		status := okStyle.Render(string(run.Status))
		if run.Status == domain.RunFailed {
			status = failStyle.Render(string(run.Status))
		}
		line := fmt.Sprintf("%-12s %-20s %-10d %d",
			status, run.StartedAt.Format(time.RFC3339), run.AppsGenerated, run.BugsFixed)
		if i == m.selectedRow {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
