package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

const deniedDefaultReason = "Denied by eligibility rule."

// checkEligibility runs one oracle call deciding binary admission before any
// scoring cost is spent.
//
// The gate fails open: a transport error, a missing admit/allow field, or a
// non-boolean value all admit the candidate. A noisy filter must never cost
// a candidate their shot, so this must not be flipped to fail-closed.
func (p *Pipeline) checkEligibility(ctx context.Context, docText, filename string) domain.EligibilityVerdict {
	raw, err := p.oracle.Invoke(ctx, domain.OracleRequest{
		Instructions: gatePrompt(p.opts.EligibilityRule, filename),
		Document:     docText,
		MaxTokens:    p.opts.MaxTokens,
	})
	if err != nil {
		slog.Warn("eligibility gate call failed",
			slog.String("filename", filename),
			slog.Any("error", err))
		return domain.EligibilityVerdict{
			Admit:  true,
			Reason: fmt.Sprintf("gate call failed (%v); unclear, allowed by fail-open policy", err),
		}
	}

	parsed := ExtractJSON(raw)
	for _, key := range []string{"admit", "allow"} {
		v, ok := parsed[key]
		if !ok {
			continue
		}
		admit, ok := v.(bool)
		if !ok {
			return domain.EligibilityVerdict{
				Admit:  true,
				Reason: fmt.Sprintf("invalid %s type (%T); unclear, allowed by fail-open policy", key, v),
			}
		}
		reason := stringField(parsed, "", "reason")
		if admit {
			if reason == "" {
				reason = "admitted by eligibility rule"
			}
			return domain.EligibilityVerdict{Admit: true, Reason: reason}
		}
		if reason == "" {
			reason = deniedDefaultReason
		}
		return domain.EligibilityVerdict{Admit: false, Reason: reason}
	}

	return domain.EligibilityVerdict{
		Admit:  true,
		Reason: "no admit field in gate response; unclear, allowed by fail-open policy",
	}
}
