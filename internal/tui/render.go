package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xteampro/funnel/internal/models"
)

// RenderResult formats a finished audit for the terminal
func RenderResult(r *models.AuditResult, s Styles) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("Automation Audit: "+r.CompanyName) + "\n")
	b.WriteString(s.Subtle.Render("Audit "+r.AuditID) + "\n\n")

	metrics := []string{
		metric(s, "Maturity", fmt.Sprintf("%.0f/100", r.MaturityScore)),
		metric(s, "Automation potential", fmt.Sprintf("%.0f%%", r.AutomationPotential)),
		metric(s, "ROI projection", fmt.Sprintf("%.0f%%", r.ROIProjection)),
		metric(s, "Timeline", r.ImplementationTimeline),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, metrics...) + "\n")

	if r.EstimatedSavings != nil || r.PaybackPeriod != nil {
		var parts []string
		if r.EstimatedSavings != nil {
			parts = append(parts, fmt.Sprintf("Estimated savings $%.0f", *r.EstimatedSavings))
		}
		if r.PaybackPeriod != nil {
			parts = append(parts, fmt.Sprintf("payback %.1f months", *r.PaybackPeriod))
		}
		b.WriteString(strings.Join(parts, ", ") + "\n")
	}

	list(&b, s, "Strengths", r.Strengths)
	list(&b, s, "Weaknesses", r.Weaknesses)
	list(&b, s, "Opportunities", r.Opportunities)
	list(&b, s, "Recommendations", r.Recommendations)
	list(&b, s, "Priority areas", r.PriorityAreas)

	if len(r.ProcessScores) > 0 {
		names := make([]string, 0, len(r.ProcessScores))
		for name := range r.ProcessScores {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n" + s.Label.Render("Process scores") + "\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %-28s %3.0f\n", name, r.ProcessScores[name])
		}
	}
	return b.String()
}

func metric(s Styles, label, value string) string {
	return s.Box.Render(s.Subtle.Render(label) + "\n" + s.Label.Render(value))
}

func list(b *strings.Builder, s Styles, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + s.Label.Render(title) + "\n")
	for _, item := range items {
		b.WriteString("  • " + item + "\n")
	}
}
