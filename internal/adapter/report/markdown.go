// Package report renders ranking results into human-readable artifacts.
package report

import (
	"fmt"
	"strings"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
	"github.com/iamcalledayush/resume-scorer-resupply/pkg/textx"
)

// MarkdownRenderer implements domain.ReportRenderer with a Markdown layout.
type MarkdownRenderer struct{}

// NewMarkdown constructs a MarkdownRenderer.
func NewMarkdown() *MarkdownRenderer { return &MarkdownRenderer{} }

// Render produces a Markdown report for one ranking run.
func (r *MarkdownRenderer) Render(role string, res domain.RankingResult) ([]byte, error) {
	var b strings.Builder
	b.WriteString("# Candidate Ranking\n\n")
	fmt.Fprintf(&b, "Role description (excerpt): %s\n\n", excerpt(role, 240))
	fmt.Fprintf(&b, "Candidates ranked: %d", len(res.Ranked))
	if res.Truncated > 0 {
		fmt.Fprintf(&b, " (plus %d truncated before comparative re-ranking)", res.Truncated)
	}
	b.WriteString("\n\n")

	for _, rec := range res.Ranked {
		fmt.Fprintf(&b, "## #%d %s\n\n", rec.FinalRank, orDash(rec.CandidateName))
		fmt.Fprintf(&b, "- Final score: %d/100 (initial %d/100)\n", rec.FinalScore, rec.Score)
		fmt.Fprintf(&b, "- File: %s\n", rec.Filename)
		fmt.Fprintf(&b, "- Initial reason: %s\n", orDash(rec.OneLineReason))
		fmt.Fprintf(&b, "- Re-ranking reason: %s\n", orDash(rec.RerankReason))
		fmt.Fprintf(&b, "- Seniority: %s\n", orDash(rec.Seniority))
		fmt.Fprintf(&b, "- Recency: %s\n", orDash(rec.Recency))
		fmt.Fprintf(&b, "- Top attributes: %s\n", orDash(strings.Join(rec.TopAttributes, ", ")))
		fmt.Fprintf(&b, "- Key highlights: %s\n", orDash(strings.Join(rec.KeyHighlights, "; ")))
		fmt.Fprintf(&b, "- Key gaps: %s\n", orDash(strings.Join(rec.KeyGaps, "; ")))
		b.WriteString("\n")
	}

	if len(res.Skipped) > 0 {
		b.WriteString("## Not ranked\n\n")
		for _, s := range res.Skipped {
			fmt.Fprintf(&b, "- %s: %s\n", s.Filename, s.Reason)
		}
	}
	return []byte(b.String()), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func excerpt(s string, n int) string {
	return textx.Truncate(textx.CollapseWhitespace(s), n)
}
