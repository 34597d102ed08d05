package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

func TestRender_FullResult(t *testing.T) {
	res := domain.RankingResult{
		Ranked: []domain.RankedRecord{
			{
				EvaluationRecord: domain.EvaluationRecord{
					Filename:      "ada.pdf",
					CandidateName: "Ada Lovelace",
					Score:         88,
					OneLineReason: "Deep Go and distributed systems experience.",
					Seniority:     "senior",
					TopAttributes: []string{"Go", "Kubernetes"},
					KeyGaps:       []string{"No fintech background"},
				},
				FinalRank:    1,
				FinalScore:   91,
				RerankReason: "Strongest systems depth in the pool.",
			},
		},
		Skipped: []domain.SkippedCandidate{
			{Filename: "bob.pdf", Reason: "denied by eligibility gate"},
		},
		Truncated: 2,
	}

	out, err := NewMarkdown().Render("Senior backend engineer, Go", res)
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "# Candidate Ranking")
	assert.Contains(t, s, "Senior backend engineer, Go")
	assert.Contains(t, s, "## #1 Ada Lovelace")
	assert.Contains(t, s, "Final score: 91/100 (initial 88/100)")
	assert.Contains(t, s, "Go, Kubernetes")
	assert.Contains(t, s, "plus 2 truncated")
	assert.Contains(t, s, "## Not ranked")
	assert.Contains(t, s, "bob.pdf: denied by eligibility gate")
}

func TestRender_EmptyFieldsRenderAsDash(t *testing.T) {
	res := domain.RankingResult{
		Ranked: []domain.RankedRecord{{
			EvaluationRecord: domain.EvaluationRecord{Filename: "x.txt"},
			FinalRank:        1,
		}},
	}
	out, err := NewMarkdown().Render("role", res)
	require.NoError(t, err)
	assert.Contains(t, string(out), "- Seniority: -")
	assert.NotContains(t, string(out), "## Not ranked")
}

func TestRender_LongRoleIsExcerpted(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "very long role description "
	}
	out, err := NewMarkdown().Render(long, domain.RankingResult{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "...")
}
