package usecase

import (
	"sort"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

// SelectTop bounds the comparative stage input. A list of length <= limit is
// returned unchanged (same order, same backing slice). A longer list is
// stably sorted by Stage-1 score descending on a copy; ties keep their
// original relative order. The second return value holds the excluded tail
// so callers can report the truncation instead of losing it silently.
func SelectTop(records []domain.EvaluationRecord, limit int) (kept, dropped []domain.EvaluationRecord) {
	if limit <= 0 || len(records) <= limit {
		return records, nil
	}
	sorted := make([]domain.EvaluationRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	return sorted[:limit], sorted[limit:]
}
