package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompts_EmptyPath(t *testing.T) {
	p, err := LoadPrompts("")
	require.NoError(t, err)
	assert.Empty(t, p.EligibilityRule)
	assert.Empty(t, p.ScoringGuidance)
}

func TestLoadPrompts_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := `eligibility_rule: "Candidate must be authorized to work in the EU."
scoring_guidance: "Weight production Go experience heavily."
rerank_guidance: "Prefer depth over breadth on ties."
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, "Candidate must be authorized to work in the EU.", p.EligibilityRule)
	assert.Equal(t, "Weight production Go experience heavily.", p.ScoringGuidance)
	assert.Equal(t, "Prefer depth over breadth on ties.", p.RerankGuidance)
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadPrompts_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("eligibility_rule: [unclosed"), 0o600))
	_, err := LoadPrompts(path)
	require.Error(t, err)
}
