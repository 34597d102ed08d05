package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

// repairEvaluation makes one additional oracle call asking the model to
// rewrap its own prior answer as strict JSON matching the evaluation schema.
// The repaired record is accepted only when it is more informative than a
// bare default. A transport failure of the repair call itself keeps the
// original default record.
func (p *Pipeline) repairEvaluation(ctx context.Context, raw, fallbackName string) (domain.EvaluationRecord, bool) {
	if strings.TrimSpace(raw) == "" {
		return domain.EvaluationRecord{}, false
	}

	repairedRaw, err := p.oracle.Invoke(ctx, domain.OracleRequest{
		Instructions: repairPrompt(raw),
		MaxTokens:    p.opts.MaxTokens,
	})
	if err != nil {
		slog.Warn("json repair call failed; keeping default record", slog.Any("error", err))
		return domain.EvaluationRecord{}, false
	}

	repaired := NormalizeEvaluation(ExtractJSON(repairedRaw), fallbackName)
	if isDefaultEvaluation(repaired) {
		return domain.EvaluationRecord{}, false
	}
	slog.Debug("json repair produced an informative record",
		slog.Int("score", repaired.Score))
	return repaired, true
}
