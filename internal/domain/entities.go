// Package domain holds the pipeline entities, ports, and error taxonomy.
package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrInternal          = errors.New("internal error")
)

// CandidateDocument is the unit of work entering the pipeline.
// Filename is the stable, caller-visible identity for the whole run;
// the pipeline does not deduplicate filenames.
type CandidateDocument struct {
	Filename  string
	Bytes     []byte
	SourceURL string
}

// RequirementProfile is derived once per run from the role description and
// shared read-only by every Stage-1 call. Immutable after creation.
type RequirementProfile struct {
	CoreCompetencies []string
	MustHaves        []string
	NiceToHaves      []string
	Archetype        string
}

// Empty reports whether extraction produced no usable profile.
func (p RequirementProfile) Empty() bool {
	return len(p.CoreCompetencies) == 0 && len(p.MustHaves) == 0 &&
		len(p.NiceToHaves) == 0 && p.Archetype == ""
}

// EligibilityVerdict is the gate outcome for one candidate. Never absent:
// an untrustworthy gate response resolves to admit=true (fail-open).
type EligibilityVerdict struct {
	Admit  bool
	Reason string
}

// EvaluationRecord is the per-candidate Stage-1 result. Created by the
// scorer and never mutated afterwards; Stage 2 produces RankedRecord copies.
type EvaluationRecord struct {
	Filename      string   `json:"filename"`
	SourceURL     string   `json:"source_url,omitempty"`
	CandidateName string   `json:"candidate_name"`
	Score         int      `json:"score"`
	OneLineReason string   `json:"one_line_reason"`
	Seniority     string   `json:"seniority"`
	Recency       string   `json:"recency"`
	TopAttributes []string `json:"top_attributes"`
	KeyHighlights []string `json:"key_highlights"`
	KeyGaps       []string `json:"key_gaps"`
	MatchSummary  string   `json:"match_summary"`
	RawOracleText string   `json:"raw_oracle_text,omitempty"`
}

// RankedRecord is an EvaluationRecord with final ordering attached.
// FinalRank values across a result list form a permutation of 1..N.
type RankedRecord struct {
	EvaluationRecord
	FinalRank    int    `json:"final_rank"`
	FinalScore   int    `json:"final_score"`
	RerankReason string `json:"rerank_reason"`
}

// SkippedCandidate records a candidate that did not reach the final ranking,
// with a human-readable reason. Nothing is dropped without one.
type SkippedCandidate struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// RankingResult is the complete outcome of one pipeline run.
type RankingResult struct {
	Ranked    []RankedRecord     `json:"ranked"`
	Skipped   []SkippedCandidate `json:"skipped"`
	Evaluated []EvaluationRecord `json:"evaluated,omitempty"`
	Denied    int                `json:"denied"`
	Truncated int                `json:"truncated"`
	Profile   RequirementProfile `json:"-"`
}

// OracleRequest is one stateless request to the reasoning oracle.
// Document carries extracted resume text when the call is about a
// specific candidate; it is empty for batch-level calls.
type OracleRequest struct {
	Instructions string
	Document     string
	MaxTokens    int
}

// OracleClient (port). Implementations must treat the service as untrusted
// and possibly slow; transport errors are returned, never panicked.
type OracleClient interface {
	Invoke(ctx context.Context, req OracleRequest) (string, error)
}

// DocumentFetcher (port) retrieves raw document bytes for one candidate.
// A failure for one document must not abort retrieval of others.
type DocumentFetcher interface {
	Fetch(ctx context.Context, name, url string) ([]byte, error)
}

// TextExtractor (port) turns document bytes into plain text for prompts.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// ReportRenderer (port) produces a human-readable artifact from a result.
type ReportRenderer interface {
	Render(role string, res RankingResult) ([]byte, error)
}
