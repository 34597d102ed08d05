package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

// scoreCandidate runs Stage 1 for one admitted candidate. It never returns
// an error: any failure along the way produces a degraded record (score 0,
// "Evaluation error" gap, reason carrying the cause) so the batch continues.
func (p *Pipeline) scoreCandidate(ctx context.Context, role string, profile domain.RequirementProfile, doc domain.CandidateDocument, docText string, extractErr error) domain.EvaluationRecord {
	if extractErr != nil {
		return p.degradedRecord(doc, extractErr)
	}

	raw, err := p.oracle.Invoke(ctx, domain.OracleRequest{
		Instructions: scorePrompt(role, profileText{
			Core:       profile.CoreCompetencies,
			MustHave:   profile.MustHaves,
			NiceToHave: profile.NiceToHaves,
			Archetype:  profile.Archetype,
		}, doc.Filename, p.opts.ScoringGuidance),
		Document:  docText,
		MaxTokens: p.opts.MaxTokens,
	})
	if err != nil {
		slog.Warn("stage-1 scoring call failed",
			slog.String("filename", doc.Filename),
			slog.Any("error", err))
		return p.degradedRecord(doc, err)
	}

	rec := NormalizeEvaluation(ExtractJSON(raw), fallbackName(doc.Filename))

	// A bare default with non-empty raw text means the oracle said something
	// that did not parse as the schema, not that the candidate scored zero.
	// One repair attempt, never more.
	if isDefaultEvaluation(rec) && strings.TrimSpace(raw) != "" {
		if repaired, ok := p.repairEvaluation(ctx, raw, fallbackName(doc.Filename)); ok {
			rec = repaired
		}
	}

	rec.Filename = doc.Filename
	rec.SourceURL = doc.SourceURL
	if p.opts.SurfaceRawResponses {
		rec.RawOracleText = raw
	}
	return rec
}

// degradedRecord is the per-candidate isolation fallback for Stage 1.
func (p *Pipeline) degradedRecord(doc domain.CandidateDocument, cause error) domain.EvaluationRecord {
	return domain.EvaluationRecord{
		Filename:      doc.Filename,
		SourceURL:     doc.SourceURL,
		CandidateName: fallbackName(doc.Filename),
		Score:         0,
		OneLineReason: fmt.Sprintf("Evaluation error: %v", cause),
		TopAttributes: []string{},
		KeyHighlights: []string{},
		KeyGaps:       []string{"Evaluation error"},
	}
}

// fallbackName derives a display name from a filename: extension stripped,
// separators turned into spaces.
func fallbackName(filename string) string {
	name := filename
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return filename
	}
	return name
}
