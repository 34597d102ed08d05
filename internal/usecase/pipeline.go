package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

// TokenCounter estimates prompt size for the Stage-2 budget.
type TokenCounter interface {
	Count(text string) int
}

// Options tune a Pipeline. Zero values fall back to reference defaults.
type Options struct {
	// MaxComparative caps how many Stage-1 records enter the comparative
	// re-ranking call. Default 100.
	MaxComparative int
	// Concurrency bounds concurrent gate+score tasks. Default 1, which
	// reproduces the strictly sequential reference behavior.
	Concurrency int
	// MaxTokens is the completion budget passed on each oracle call.
	MaxTokens int
	// RerankTokenBudget bounds the Stage-2 summary block size.
	RerankTokenBudget int
	// SurfaceRawResponses attaches raw oracle text to evaluated records.
	SurfaceRawResponses bool

	// EligibilityRule is the gate predicate. Empty disables the gate stage.
	EligibilityRule string
	// ScoringGuidance and RerankGuidance are appended to the respective
	// prompts when set.
	ScoringGuidance string
	RerankGuidance  string
}

func (o Options) withDefaults() Options {
	if o.MaxComparative <= 0 {
		o.MaxComparative = 100
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 1200
	}
	if o.RerankTokenBudget <= 0 {
		o.RerankTokenBudget = 24000
	}
	return o
}

// Pipeline runs one synchronous three-stage ranking per submitted batch.
// It is stateless across runs; all per-run state lives on the stack.
type Pipeline struct {
	oracle    domain.OracleClient
	extractor domain.TextExtractor
	tokens    TokenCounter
	opts      Options
}

// NewPipeline constructs a Pipeline. tokens may be nil, in which case a
// rough bytes/4 estimator is used for the Stage-2 budget.
func NewPipeline(oracle domain.OracleClient, extractor domain.TextExtractor, tokens TokenCounter, opts Options) *Pipeline {
	if tokens == nil {
		tokens = estimateCounter{}
	}
	return &Pipeline{oracle: oracle, extractor: extractor, tokens: tokens, opts: opts.withDefaults()}
}

type estimateCounter struct{}

func (estimateCounter) Count(text string) int { return len(text) / 4 }

// candidateOutcome is the per-candidate task result. Each task owns exactly
// one slot; workers never share mutable state.
type candidateOutcome struct {
	admitted   bool
	skipReason string
	record     domain.EvaluationRecord
}

// Run executes eligibility gate, Stage-1 scoring, cap selection, Stage-2
// re-ranking, and merge for one batch. It returns an error only for invalid
// input; oracle failures degrade per candidate and never abort the batch.
func (p *Pipeline) Run(ctx context.Context, role string, docs []domain.CandidateDocument) (domain.RankingResult, error) {
	if role == "" {
		return domain.RankingResult{}, fmt.Errorf("%w: role description required", domain.ErrInvalidArgument)
	}
	if len(docs) == 0 {
		return domain.RankingResult{}, fmt.Errorf("%w: at least one candidate document required", domain.ErrInvalidArgument)
	}

	tracer := otel.Tracer("pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.Int("candidates", len(docs)))

	profile := p.extractRequirements(ctx, role)

	outcomes := make([]candidateOutcome, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i := range docs {
		g.Go(func() error {
			// Gate then score on a single logical task; a candidate is never
			// scored while its gate outcome is pending or denied. Failures
			// stay inside the slot so one candidate cannot sink the batch.
			outcomes[i] = p.processCandidate(gctx, role, profile, docs[i])
			return nil
		})
	}
	// Barrier: cap selection and Stage 2 start only once every per-candidate
	// task has completed or terminally failed.
	_ = g.Wait()

	var res domain.RankingResult
	res.Profile = profile
	evaluated := make([]domain.EvaluationRecord, 0, len(docs))
	for i, out := range outcomes {
		if !out.admitted {
			res.Denied++
			res.Skipped = append(res.Skipped, domain.SkippedCandidate{Filename: docs[i].Filename, Reason: out.skipReason})
			continue
		}
		evaluated = append(evaluated, out.record)
	}
	res.Evaluated = evaluated

	kept, dropped := SelectTop(evaluated, p.opts.MaxComparative)
	res.Truncated = len(dropped)
	if len(dropped) > 0 {
		slog.Warn("capping comparative stage input",
			slog.Int("evaluated", len(evaluated)),
			slog.Int("kept", len(kept)),
			slog.Int("dropped", len(dropped)))
		for _, rec := range dropped {
			res.Skipped = append(res.Skipped, domain.SkippedCandidate{
				Filename: rec.Filename,
				Reason:   fmt.Sprintf("truncated before comparative re-ranking (capacity %d)", p.opts.MaxComparative),
			})
		}
	}

	res.Ranked = p.rerank(ctx, role, kept)
	return res, nil
}

// processCandidate runs the gate and, if admitted, Stage-1 scoring for one
// document. It always produces a defined outcome.
func (p *Pipeline) processCandidate(ctx context.Context, role string, profile domain.RequirementProfile, doc domain.CandidateDocument) candidateOutcome {
	text, extractErr := p.extractText(ctx, doc)

	if p.opts.EligibilityRule != "" {
		verdict := p.checkEligibility(ctx, text, doc.Filename)
		if !verdict.Admit {
			slog.Info("candidate denied by eligibility gate",
				slog.String("filename", doc.Filename),
				slog.String("reason", verdict.Reason))
			return candidateOutcome{admitted: false, skipReason: verdict.Reason}
		}
	}

	rec := p.scoreCandidate(ctx, role, profile, doc, text, extractErr)
	return candidateOutcome{admitted: true, record: rec}
}

func (p *Pipeline) extractText(ctx context.Context, doc domain.CandidateDocument) (string, error) {
	if p.extractor == nil {
		return string(doc.Bytes), nil
	}
	text, err := p.extractor.Extract(ctx, doc.Filename, doc.Bytes)
	if err != nil {
		slog.Warn("document text extraction failed",
			slog.String("filename", doc.Filename),
			slog.Any("error", err))
		return "", fmt.Errorf("op=pipeline.extractText: %w", err)
	}
	return text, nil
}
