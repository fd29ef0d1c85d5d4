package orchestrator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hochfrequenz/app-forge/internal/domain"
)

// reportFile is the per-run summary left for the calling workflow.
const reportFile = "iteration_summary.md"

// CommitSubject builds the commit subject line for a run summary.
func CommitSubject(summary domain.RunSummary) string {
	var parts []string
	if n := len(summary.NewApps); n > 0 {
		parts = append(parts, fmt.Sprintf("add %d new app(s)", n))
	}
	if n := len(summary.BugsFixed); n > 0 {
		parts = append(parts, fmt.Sprintf("fix %d bug(s)", n))
	}
	if n := len(summary.Improved); n > 0 {
		parts = append(parts, fmt.Sprintf("improve %d app(s)", n))
	}
	if n := len(summary.DocsUpdated); n > 0 {
		parts = append(parts, fmt.Sprintf("update %d doc(s)", n))
	}

	if len(parts) == 0 {
		return "chore: daily repository maintenance"
	}
	return "feat: " + strings.Join(parts, ", ")
}

// Report renders the run summary as markdown.
func Report(summary domain.RunSummary) string {
	return fmt.Sprintf(`# Daily Iteration Summary

## New Applications (%d)
%s

## Bugs Fixed (%d)
%s

## Improvements (%d)
%s

## Documentation Updates (%d)
%s

---
*Generated at %s*
`,
		len(summary.NewApps), formatList(summary.NewApps),
		len(summary.BugsFixed), formatList(summary.BugsFixed),
		len(summary.Improved), formatList(summary.Improved),
		len(summary.DocsUpdated), formatList(summary.DocsUpdated),
		summary.Timestamp.Format("2006-01-02T15:04:05"),
	)
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "*None*"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s", item)
	}
	return b.String()
}

func (o *Orchestrator) writeReport(summary domain.RunSummary) error {
	rel, err := filepath.Rel(o.ws.Root(), filepath.Join(o.ws.DataDir(), reportFile))
	if err != nil || strings.HasPrefix(rel, "..") {
		// Data dir lives outside the checkout; write it directly.
		return writeOutside(filepath.Join(o.ws.DataDir(), reportFile), Report(summary))
	}
	return o.ws.WriteFile(rel, Report(summary))
}
