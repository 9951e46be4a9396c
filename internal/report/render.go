package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/xteampro/funnel/internal/models"
)

const (
	pageWidth   = 612
	pageHeight  = 792
	marginLeft  = 56
	marginTop   = 740
	lineHeight  = 16
	linesOnPage = 44
)

// Lines lays out an audit result as plain report lines
func Lines(r *models.AuditResult) []string {
	lines := []string{
		"XTeam Automation Audit",
		"Company: " + r.CompanyName,
		"Audit ID: " + r.AuditID,
		"",
		fmt.Sprintf("Maturity score: %.0f/100", r.MaturityScore),
		fmt.Sprintf("Automation potential: %.0f%%", r.AutomationPotential),
		fmt.Sprintf("ROI projection: %.0f%%", r.ROIProjection),
		"Implementation timeline: " + r.ImplementationTimeline,
	}
	if r.EstimatedSavings != nil {
		lines = append(lines, fmt.Sprintf("Estimated savings: $%.0f", *r.EstimatedSavings))
	}
	if r.PaybackPeriod != nil {
		lines = append(lines, fmt.Sprintf("Payback period: %.1f months", *r.PaybackPeriod))
	}

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		lines = append(lines, "", title)
		for _, item := range items {
			lines = append(lines, "- "+item)
		}
	}
	section("Strengths", r.Strengths)
	section("Weaknesses", r.Weaknesses)
	section("Opportunities", r.Opportunities)
	section("Recommendations", r.Recommendations)
	section("Priority areas", r.PriorityAreas)

	if len(r.ProcessScores) > 0 {
		names := make([]string, 0, len(r.ProcessScores))
		for name := range r.ProcessScores {
			names = append(names, name)
		}
		sort.Strings(names)
		lines = append(lines, "", "Process scores")
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("- %s: %.0f", name, r.ProcessScores[name]))
		}
	}
	return lines
}

// Render produces a text-only PDF of the audit result
func Render(r *models.AuditResult) []byte {
	return renderPages(paginate(Lines(r), linesOnPage))
}

func paginate(lines []string, per int) [][]string {
	var pages [][]string
	for len(lines) > per {
		pages = append(pages, lines[:per])
		lines = lines[per:]
	}
	return append(pages, lines)
}

// renderPages writes a PDF 1.4 file with one Helvetica content stream per
// page. Objects: 1 catalog, 2 pages, 3 font, then a page/content pair per page.
func renderPages(pages [][]string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i*2)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, lines := range pages {
		var content strings.Builder
		fmt.Fprintf(&content, "BT /F1 11 Tf %d TL %d %d Td\n", lineHeight, marginLeft, marginTop)
		for _, line := range lines {
			fmt.Fprintf(&content, "(%s) Tj T*\n", escape(line))
		}
		content.WriteString("ET")

		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pageWidth, pageHeight, 5+i*2))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// escape keeps the line inside a PDF literal string. Non-ASCII runes are
// replaced since the standard Helvetica encoding cannot show them.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 32 || r > 126:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
