// Package stub implements a deterministic offline oracle for dev and tests.
package stub

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

// Client answers every pipeline prompt with deterministic, schema-conforming
// JSON derived from hashing the inputs. No network, no keys, stable output
// for a given input.
type Client struct{}

// New constructs the stub oracle.
func New() *Client { return &Client{} }

var idLine = regexp.MustCompile(`(?m)^id=([^|]+?) \|.*score=(\d+)`)

// Invoke dispatches on prompt markers shared with the pipeline's templates.
func (c *Client) Invoke(_ context.Context, req domain.OracleRequest) (string, error) {
	switch {
	case strings.Contains(req.Instructions, "structured requirement profile"):
		return `{"core_competencies":["general engineering"],"must_haves":[],"nice_to_haves":[],"archetype":"Generalist"}`, nil
	case strings.Contains(req.Instructions, "binary eligibility check"):
		return `{"admit": true, "reason": "stub oracle admits everyone"}`, nil
	case strings.Contains(req.Instructions, "FINAL ranking"):
		return c.rerank(req.Instructions), nil
	default:
		return c.score(req), nil
	}
}

func (c *Client) score(req domain.OracleRequest) string {
	score := int(hashToUnit(req.Document+req.Instructions) * 100)
	payload := map[string]any{
		"candidate_name":  firstWords(req.Document, 2),
		"score":           score,
		"one_line_reason": fmt.Sprintf("Deterministic stub score %d.", score),
		"seniority":       "unknown",
		"recency":         "unknown",
		"top_attributes":  topWords(req.Document, 3),
		"key_highlights":  []string{},
		"key_gaps":        []string{},
		"match_summary":   "Stub evaluation; not a real assessment.",
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

// rerank reflects the submitted summary lines back in Stage-1 score order.
func (c *Client) rerank(instructions string) string {
	matches := idLine.FindAllStringSubmatch(instructions, -1)
	entries := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, map[string]any{
			"id":            strings.TrimSpace(m[1]),
			"final_score":   atoiSafe(m[2]),
			"rerank_reason": "Stub ordering by initial score.",
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i]["final_score"].(int) > entries[j]["final_score"].(int)
	})
	for i := range entries {
		entries[i]["rank"] = i + 1
	}
	b, _ := json.Marshal(map[string]any{"candidates": entries})
	return string(b)
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func hashToUnit(s string) float64 {
	sum := sha1.Sum([]byte(s))
	v := binary.BigEndian.Uint32(sum[:4])
	return float64(v) / float64(^uint32(0))
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "Unknown"
	}
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func topWords(s string, n int) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, n)
	for _, f := range fields {
		if len(f) >= 4 {
			out = append(out, f)
		}
		if len(out) == n {
			break
		}
	}
	return out
}
