package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts carries operator-tunable prompt inputs. Zero values fall back to
// the built-in templates in the pipeline.
type Prompts struct {
	// EligibilityRule is the predicate the gate asks the oracle to apply,
	// e.g. "The candidate must be legally able to work in the EU."
	// Empty disables the gate stage entirely (every candidate admitted).
	EligibilityRule string `yaml:"eligibility_rule"`

	// ScoringGuidance is appended to the Stage-1 rubric when set, letting
	// operators emphasize role-specific criteria without a redeploy.
	ScoringGuidance string `yaml:"scoring_guidance"`

	// RerankGuidance is appended to the Stage-2 instructions when set.
	RerankGuidance string `yaml:"rerank_guidance"`
}

// LoadPrompts reads prompt overrides from a YAML file. An empty path returns
// zero-valued Prompts.
func LoadPrompts(path string) (Prompts, error) {
	var p Prompts
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("op=config.LoadPrompts: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prompts{}, fmt.Errorf("op=config.LoadPrompts: %w", err)
	}
	return p, nil
}
