package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEvaluation_EmptyMapping(t *testing.T) {
	rec := NormalizeEvaluation(map[string]any{}, "jane_doe.pdf")

	assert.Equal(t, "jane_doe.pdf", rec.CandidateName)
	assert.Equal(t, 0, rec.Score)
	assert.Equal(t, DefaultOneLineReason, rec.OneLineReason)
	assert.Equal(t, "", rec.Seniority)
	assert.Equal(t, "", rec.Recency)
	require.NotNil(t, rec.TopAttributes)
	require.NotNil(t, rec.KeyHighlights)
	require.NotNil(t, rec.KeyGaps)
	assert.Empty(t, rec.TopAttributes)
	assert.Empty(t, rec.KeyHighlights)
	assert.Empty(t, rec.KeyGaps)
	assert.Equal(t, "", rec.MatchSummary)
	assert.True(t, isDefaultEvaluation(rec))
}

func TestNormalizeEvaluation_FullMapping(t *testing.T) {
	rec := NormalizeEvaluation(map[string]any{
		"candidate_name":  "Jane Doe",
		"score":           float64(88),
		"one_line_reason": "Covers the whole stack.",
		"seniority":       "Senior (8y)",
		"recency":         "2023-2025",
		"top_attributes":  []any{"Go", "Postgres", "Kafka"},
		"key_highlights":  []any{"Led platform rebuild"},
		"key_gaps":        []any{"No Kubernetes"},
		"match_summary":   "Strong technical fit.",
	}, "fallback")

	assert.Equal(t, "Jane Doe", rec.CandidateName)
	assert.Equal(t, 88, rec.Score)
	assert.Equal(t, []string{"Go", "Postgres", "Kafka"}, rec.TopAttributes)
	assert.Equal(t, []string{"Led platform rebuild"}, rec.KeyHighlights)
	assert.Equal(t, []string{"No Kubernetes"}, rec.KeyGaps)
	assert.False(t, isDefaultEvaluation(rec))
}

func TestNormalizeEvaluation_ScoreCoercionAndClamp(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{"float", float64(55.4), 55},
		{"string", "61", 61},
		{"string padded", " 70 ", 70},
		{"negative clamped", float64(-5), 0},
		{"above range clamped", float64(140), 100},
		{"garbage string", "high", 0},
		{"wrong type", []any{"x"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := NormalizeEvaluation(map[string]any{"score": tc.in}, "f")
			assert.Equal(t, tc.want, rec.Score)
		})
	}
}

func TestNormalizeEvaluation_LegacyKeys(t *testing.T) {
	rec := NormalizeEvaluation(map[string]any{
		"top_tech":     []any{"Python", "Spark"},
		"key_projects": []any{"ETL revamp", "Fraud scoring", "Infra move", "One too many"},
	}, "f")

	assert.Equal(t, []string{"Python", "Spark"}, rec.TopAttributes)
	// Highlights are capped at 3 per the record shape.
	assert.Equal(t, []string{"ETL revamp", "Fraud scoring", "Infra move"}, rec.KeyHighlights)
}

func TestNormalizeEvaluation_MixedListEntries(t *testing.T) {
	rec := NormalizeEvaluation(map[string]any{
		"key_gaps": []any{"No Go", float64(3), map[string]any{"x": 1}, true},
	}, "f")
	assert.Equal(t, []string{"No Go", "3", "true"}, rec.KeyGaps)
}
