package stub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

func TestScore_DeterministicAndSchemaConforming(t *testing.T) {
	c := New()
	req := domain.OracleRequest{
		Instructions: "Scoring rubric: evaluate the candidate.",
		Document:     "Ada Lovelace, Go engineer with distributed systems background",
	}
	out1, err := c.Invoke(context.Background(), req)
	require.NoError(t, err)
	out2, err := c.Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out1), &payload))
	assert.Equal(t, "Ada Lovelace", payload["candidate_name"])
	score, ok := payload["score"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, score, float64(0))
	assert.LessOrEqual(t, score, float64(100))
	assert.NotEmpty(t, payload["one_line_reason"])
}

func TestGate_AlwaysAdmits(t *testing.T) {
	out, err := New().Invoke(context.Background(), domain.OracleRequest{
		Instructions: "This is a binary eligibility check.",
	})
	require.NoError(t, err)

	var verdict struct {
		Admit bool `json:"admit"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &verdict))
	assert.True(t, verdict.Admit)
}

func TestRerank_OrdersByInitialScore(t *testing.T) {
	instructions := "Produce the FINAL ranking.\n" +
		"id=low.txt | name=Low | score=40 | notes\n" +
		"id=high.txt | name=High | score=90 | notes\n" +
		"id=mid.txt | name=Mid | score=60 | notes\n"

	out, err := New().Invoke(context.Background(), domain.OracleRequest{Instructions: instructions})
	require.NoError(t, err)

	var parsed struct {
		Candidates []struct {
			ID         string `json:"id"`
			Rank       int    `json:"rank"`
			FinalScore int    `json:"final_score"`
		} `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	require.Len(t, parsed.Candidates, 3)
	assert.Equal(t, "high.txt", parsed.Candidates[0].ID)
	assert.Equal(t, 1, parsed.Candidates[0].Rank)
	assert.Equal(t, "mid.txt", parsed.Candidates[1].ID)
	assert.Equal(t, "low.txt", parsed.Candidates[2].ID)
	assert.Equal(t, 3, parsed.Candidates[2].Rank)
}

func TestRequirements_ReturnsProfile(t *testing.T) {
	out, err := New().Invoke(context.Background(), domain.OracleRequest{
		Instructions: "Produce a structured requirement profile for this role.",
	})
	require.NoError(t, err)

	var profile map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Contains(t, profile, "core_competencies")
	assert.Contains(t, profile, "archetype")
}
