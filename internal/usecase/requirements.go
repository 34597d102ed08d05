package usecase

import (
	"context"
	"log/slog"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

// extractRequirements derives the shared requirement profile with one oracle
// call per run. Its failure must never abort the run: on any error or
// malformed output the profile stays empty and downstream prompts simply
// reference nothing.
func (p *Pipeline) extractRequirements(ctx context.Context, role string) domain.RequirementProfile {
	raw, err := p.oracle.Invoke(ctx, domain.OracleRequest{
		Instructions: requirementsPrompt(role),
		MaxTokens:    p.opts.MaxTokens,
	})
	if err != nil {
		slog.Warn("requirement extraction call failed; proceeding with empty profile", slog.Any("error", err))
		return domain.RequirementProfile{}
	}

	parsed := ExtractJSON(raw)
	profile := domain.RequirementProfile{
		CoreCompetencies: listField(parsed, "core_competencies"),
		MustHaves:        listField(parsed, "must_haves"),
		NiceToHaves:      listField(parsed, "nice_to_haves"),
		Archetype:        stringField(parsed, "", "archetype"),
	}
	if profile.Empty() {
		slog.Warn("requirement extraction returned no usable profile",
			slog.Int("raw_len", len(raw)))
	}
	return profile
}
