package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pactlint/pactlint/internal/domain"
)

var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	inferredStyle = lipgloss.NewStyle().Foreground(skipColor)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	ruleStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport formats a lint run for terminal output: a summary box, then
// violations grouped by file in the aggregator's stable order.
func RenderReport(report *domain.LintReport) string {
	var b strings.Builder

	title := headerStyle.Render("pactlint")
	subtitle := dimStyle.Render("Contract Conformance")
	verdict := verdictLine(report)

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + verdict))
	b.WriteString("\n\n")

	renderSummary(&b, report.Summary)

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	if len(report.Violations) > 0 {
		renderCounts(&b, report.Summary)
		byFile := groupByFile(report.Violations)
		for _, group := range byFile {
			renderFileGroup(&b, group)
		}
	} else {
		b.WriteString("  " + passStyle.Render("No violations found.") + "\n")
	}

	if len(report.Diagnostics) > 0 {
		b.WriteString("\n")
		renderDiagnostics(&b, report.Diagnostics)
	}

	b.WriteString("\n")
	return b.String()
}

func verdictLine(report *domain.LintReport) string {
	if report.Summary.ErrorCount > 0 {
		return failStyle.Bold(true).Render(fmt.Sprintf("%d errors", report.Summary.ErrorCount))
	}
	if report.Summary.TotalViolations > 0 {
		return warnTagStyle.Render(fmt.Sprintf("%d findings", report.Summary.TotalViolations))
	}
	return passStyle.Bold(true).Render("conformant")
}

func renderSummary(b *strings.Builder, s domain.Summary) {
	row := func(label, value string) {
		fmt.Fprintf(b, "  %s %s\n", dimStyle.Render(padRight(label, 18)), value)
	}
	row("contracts", fmt.Sprintf("%d", s.Contracts))
	row("files scanned", fmt.Sprintf("%d", s.TotalFiles))
	row("files extracted", fmt.Sprintf("%d", s.ExtractedFiles))
	if s.SkippedFiles > 0 {
		row("files skipped", warnTagStyle.Render(fmt.Sprintf("%d", s.SkippedFiles)))
	}
	row("elapsed", fmt.Sprintf("%dms", s.DurationMillis))
}

func renderCounts(b *strings.Builder, s domain.Summary) {
	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Violations"))
	b.WriteString("  ")
	if s.ErrorCount > 0 {
		b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", s.ErrorCount)))
		b.WriteString("  ")
	}
	if s.WarningCount > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", s.WarningCount)))
		b.WriteString("  ")
	}
	infoCount := s.TotalViolations - s.ErrorCount - s.WarningCount
	if infoCount > 0 {
		b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", infoCount)))
	}
	b.WriteString("\n\n")
}

type fileGroup struct {
	file       string
	violations []domain.Violation
}

// groupByFile preserves the aggregator's order inside each group; groups are
// ordered by first appearance, with file-less violations last.
func groupByFile(violations []domain.Violation) []fileGroup {
	index := map[string]int{}
	var groups []fileGroup
	for _, v := range violations {
		i, ok := index[v.File]
		if !ok {
			i = len(groups)
			index[v.File] = i
			groups = append(groups, fileGroup{file: v.File})
		}
		groups[i].violations = append(groups[i].violations, v)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].file != "" && groups[j].file == ""
	})
	return groups
}

func renderFileGroup(b *strings.Builder, group fileGroup) {
	header := "(no file)"
	if group.file != "" {
		header = shortenPath(group.file)
	}
	fmt.Fprintf(b, "  %s\n", fileStyle.Render(header))

	for _, v := range group.violations {
		renderViolation(b, v)
	}
	b.WriteString("\n")
}

func renderViolation(b *strings.Builder, v domain.Violation) {
	tag := severityTag(v.Severity)
	site := ""
	if v.Line > 0 {
		site = dimStyle.Render(fmt.Sprintf(":%d", v.Line))
	}

	fmt.Fprintf(b, "    %s %s%s %s\n", tag, ruleStyle.Render(v.RuleID), site, confidenceTag(v.Confidence))
	fmt.Fprintf(b, "         %s\n", dimStyle.Render(v.Message))
	if v.EndpointID != "" {
		fmt.Fprintf(b, "         %s\n", faintStyle.Render(v.EndpointID+fieldSuffix(v.FieldPath)))
	}
}

func fieldSuffix(fieldPath string) string {
	if fieldPath == "" {
		return ""
	}
	return " · " + fieldPath
}

func severityTag(severity string) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func confidenceTag(confidence string) string {
	if confidence == domain.ConfidenceInferred {
		return inferredStyle.Render("(inferred)")
	}
	return ""
}

func renderDiagnostics(b *strings.Builder, diags []domain.Diagnostic) {
	b.WriteString("  " + titleStyle.Render("Diagnostics") + "\n\n")
	for _, d := range diags {
		site := d.Message
		if d.File != "" {
			site = shortenPath(d.File) + ": " + d.Message
		}
		fmt.Fprintf(b, "    %s %s\n", inferredStyle.Render(d.Kind), dimStyle.Render(site))
	}
}

func shortenPath(path string) string {
	if idx := strings.Index(path, "internal/"); idx >= 0 {
		return path[idx:]
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
