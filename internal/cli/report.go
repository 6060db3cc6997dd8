package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/follow-the-money/internal/model"
)

// RenderRunReport renders a full run report for the operator. Every
// dropped, skipped, or failed record is visible here; nothing is lost
// silently.
func RenderRunReport(report *model.RunReport) string {
	var rows []string

	rows = append(rows,
		reportRow("Records read", report.Read),
		reportRow("Malformed", report.Malformed),
		reportRow("Rejected", report.Rejected),
		reportRow("Tier-1 filtered", report.Filtered),
		reportRow("Staged", report.Staged),
		reportRow("Fraud classified", report.Classified),
		reportRow("Duplicates", report.Duplicates),
	)
	rows = append(rows, renderLoadRows(&report.Load)...)

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return RenderBox("Run Report", content)
}

// RenderLoadReport renders just the batch-load outcome.
func RenderLoadReport(report *model.LoadReport) string {
	content := lipgloss.JoinVertical(lipgloss.Left, renderLoadRows(report)...)
	return RenderBox("Load Report", content)
}

func renderLoadRows(load *model.LoadReport) []string {
	rows := []string{
		reportRow("Load attempted", load.Attempted),
		reportRow("Loaded", load.Loaded),
		reportRow("Skipped", load.Skipped),
	}

	failedRow := reportRow("Failed", load.Failed)
	if load.Failed > 0 {
		failedRow = ErrorStyle.Render(failedRow)
	}
	rows = append(rows, failedRow)

	if load.Abandoned > 0 {
		rows = append(rows, WarningStyle.Render(reportRow("Abandoned", load.Abandoned)))
	}

	if urls := load.FailedURLs(); len(urls) > 0 {
		rows = append(rows, "", ErrorStyle.Render("Failed URLs:"))
		for _, url := range urls {
			rows = append(rows, SubtleStyle.Render("  "+url))
		}
	}

	return rows
}

func reportRow(label string, value int) string {
	return LabelStyle.Render(label) + fmt.Sprintf("%d", value)
}

// RenderKeywordTable renders a keyword table for inspection.
func RenderKeywordTable(name string, minHits int, terms []string, weights []float64) string {
	var rows []string
	rows = append(rows, SubtleStyle.Render(fmt.Sprintf("min hits: %d, terms: %d", minHits, len(terms))), "")

	for i, term := range terms {
		row := fmt.Sprintf("%-32s %.2f", term, weights[i])
		rows = append(rows, row)
	}

	return RenderBox(name, strings.Join(rows, "\n"))
}
