package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

// Rerank reason sentinels. Distinct fixed strings so callers can tell a real
// oracle justification from a locally synthesized one.
const (
	fallbackRerankReason = "Ranked by initial technical score only."
	genericRerankReason  = "No additional re-ranking reason provided."
	missingRerankReason  = "Missing from rerank output; ordered by initial technical score."
)

// rerank is Stage 2: one oracle call over compact candidate summaries asking
// for a total order, then reconciliation back onto full records by the
// filename identity. The oracle's ordering is taken as-is and not re-sorted
// locally; monotonic scores are a prompt-level instruction, and re-sorting
// here would hide oracle misbehavior from diagnostics.
func (p *Pipeline) rerank(ctx context.Context, role string, records []domain.EvaluationRecord) []domain.RankedRecord {
	if len(records) == 0 {
		return []domain.RankedRecord{}
	}

	raw, err := p.oracle.Invoke(ctx, domain.OracleRequest{
		Instructions: rerankPrompt(role, p.buildSummaries(records), p.opts.RerankGuidance),
		MaxTokens:    p.opts.MaxTokens * 4,
	})
	if err != nil {
		slog.Warn("comparative re-ranking call failed; using score-order fallback", slog.Any("error", err))
		return fallbackRanking(records)
	}

	entries, ok := ExtractJSON(raw)["candidates"].([]any)
	if !ok || len(entries) == 0 {
		slog.Warn("comparative re-ranking output unusable; using score-order fallback",
			slog.Int("raw_len", len(raw)))
		return fallbackRanking(records)
	}
	return mergeRanked(records, entries)
}

// mergeRanked maps the oracle's ordered entries back onto input records.
// Duplicate ids are deduplicated first-occurrence-wins, unknown ids are
// dropped, and every input never mentioned by the oracle is appended at the
// end by descending Stage-1 score. The output always contains every input
// exactly once with ranks forming the permutation 1..N.
func mergeRanked(records []domain.EvaluationRecord, entries []any) []domain.RankedRecord {
	byID := make(map[string]domain.EvaluationRecord, len(records))
	for _, rec := range records {
		byID[rec.Filename] = rec
	}

	consumed := make(map[string]bool, len(records))
	out := make([]domain.RankedRecord, 0, len(records))
	rank := 0
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		id := stringField(entry, "", "id")
		if id == "" || consumed[id] {
			continue
		}
		base, known := byID[id]
		if !known {
			continue
		}
		consumed[id] = true
		rank++

		finalScore := intField(entry, 0, "final_score")
		if finalScore == 0 {
			finalScore = base.Score
		}
		reason := stringField(entry, "", "rerank_reason")
		if reason == "" {
			reason = genericRerankReason
		}
		out = append(out, domain.RankedRecord{
			EvaluationRecord: base,
			FinalRank:        rank,
			FinalScore:       clampScore(finalScore),
			RerankReason:     reason,
		})
	}

	// Anything the oracle never mentioned still gets a defined position.
	leftovers := make([]domain.EvaluationRecord, 0)
	for _, rec := range records {
		if !consumed[rec.Filename] {
			leftovers = append(leftovers, rec)
		}
	}
	sort.SliceStable(leftovers, func(i, j int) bool { return leftovers[i].Score > leftovers[j].Score })
	for _, rec := range leftovers {
		rank++
		out = append(out, domain.RankedRecord{
			EvaluationRecord: rec,
			FinalRank:        rank,
			FinalScore:       rec.Score,
			RerankReason:     missingRerankReason,
		})
	}
	return out
}

// fallbackRanking is the deterministic Stage-2 fallback: inputs sorted by
// Stage-1 score descending, stable on ties, ranks 1..N.
func fallbackRanking(records []domain.EvaluationRecord) []domain.RankedRecord {
	sorted := make([]domain.EvaluationRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	out := make([]domain.RankedRecord, len(sorted))
	for i, rec := range sorted {
		out[i] = domain.RankedRecord{
			EvaluationRecord: rec,
			FinalRank:        i + 1,
			FinalScore:       rec.Score,
			RerankReason:     fallbackRerankReason,
		}
	}
	return out
}

// buildSummaries renders one compact line per candidate for the Stage-2
// prompt, shrinking lines evenly when the batch would blow the token budget.
func (p *Pipeline) buildSummaries(records []domain.EvaluationRecord) string {
	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = summaryLine(rec)
	}
	joined := strings.Join(lines, "\n")

	budget := p.opts.RerankTokenBudget
	if p.tokens.Count(joined) <= budget {
		return joined
	}

	// Over budget: truncate each line to an even byte share (~4 bytes per
	// token). Every candidate keeps a line; nothing is dropped here.
	perLine := budget * 4 / len(lines)
	if perLine < 80 {
		perLine = 80
	}
	for i, line := range lines {
		if len(line) > perLine {
			lines[i] = line[:perLine]
		}
	}
	slog.Warn("rerank summaries exceeded token budget; truncated lines",
		slog.Int("candidates", len(lines)),
		slog.Int("budget", budget))
	return strings.Join(lines, "\n")
}

func summaryLine(rec domain.EvaluationRecord) string {
	reason := rec.OneLineReason
	if reason == "" || reason == DefaultOneLineReason {
		reason = rec.MatchSummary
	}
	return fmt.Sprintf("id=%s | name=%s | score=%d | reason=%s | seniority=%s | recency=%s | top_attributes=%s | key_highlights=%s | key_gaps=%s",
		rec.Filename, rec.CandidateName, rec.Score, reason, rec.Seniority, rec.Recency,
		strings.Join(rec.TopAttributes, ", "),
		strings.Join(rec.KeyHighlights, "; "),
		strings.Join(rec.KeyGaps, "; "))
}
