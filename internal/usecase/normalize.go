package usecase

import (
	"strconv"
	"strings"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

// DefaultOneLineReason is the sentinel filled in when the oracle returned no
// usable one-line reason. The repair trigger and the repair acceptance rule
// both key on this exact string, so production and detection must agree.
const DefaultOneLineReason = "No one-line reason returned."

const maxKeyHighlights = 3

// NormalizeEvaluation fills a possibly-empty parsed mapping into a complete
// EvaluationRecord so downstream stages never re-validate shape. Unset
// fields get safe defaults: fallback name, score 0, the reason sentinel,
// empty lists, empty strings. The score is clamped to [0,100].
func NormalizeEvaluation(m map[string]any, fallbackName string) domain.EvaluationRecord {
	rec := domain.EvaluationRecord{
		CandidateName: stringField(m, fallbackName, "candidate_name"),
		Score:         clampScore(intField(m, 0, "score")),
		OneLineReason: stringField(m, DefaultOneLineReason, "one_line_reason"),
		Seniority:     stringField(m, "", "seniority"),
		Recency:       stringField(m, "", "recency"),
		// Older prompt revisions used top_tech / key_projects; accept both
		// spellings so schema drift degrades gracefully.
		TopAttributes: listField(m, "top_attributes", "top_tech"),
		KeyHighlights: listField(m, "key_highlights", "key_projects"),
		KeyGaps:       listField(m, "key_gaps"),
		MatchSummary:  stringField(m, "", "match_summary"),
	}
	if len(rec.KeyHighlights) > maxKeyHighlights {
		rec.KeyHighlights = rec.KeyHighlights[:maxKeyHighlights]
	}
	return rec
}

// isDefaultEvaluation reports whether a normalized record looks like a parse
// failure rather than a genuine low score: exactly the default sentinel pair.
func isDefaultEvaluation(rec domain.EvaluationRecord) bool {
	return rec.Score == 0 && rec.OneLineReason == DefaultOneLineReason
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// stringField returns the first present non-empty string among keys,
// otherwise def.
func stringField(m map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := coerceString(v); s != "" {
				return s
			}
		}
	}
	return def
}

// intField returns the first present key coerced to int, otherwise def.
// JSON numbers arrive as float64; models occasionally quote them.
func intField(m map[string]any, def int, keys ...string) int {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return parsed
			}
		}
	}
	return def
}

// listField returns the first present key coerced to a string slice,
// otherwise an empty slice. Scalar entries are stringified; nested
// structures are dropped.
func listField(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s := coerceString(it); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
