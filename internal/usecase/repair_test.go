package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

func repairPipeline(repair func(domain.OracleRequest) (string, error)) (*Pipeline, *scriptedOracle) {
	oracle := &scriptedOracle{repair: repair}
	return NewPipeline(oracle, nil, nil, Options{}), oracle
}

func TestRepairEvaluation_AcceptsInformativeResult(t *testing.T) {
	p, _ := repairPipeline(func(domain.OracleRequest) (string, error) {
		return `{"candidate_name":"X","score":72,"one_line_reason":"solid"}`, nil
	})
	rec, ok := p.repairEvaluation(context.Background(), "some prose answer", "fallback")
	assert.True(t, ok)
	assert.Equal(t, 72, rec.Score)
}

func TestRepairEvaluation_AcceptsNonDefaultReasonWithZeroScore(t *testing.T) {
	// score of zero alone is not a rejection; the reason being informative
	// is enough to beat the bare default.
	p, _ := repairPipeline(func(domain.OracleRequest) (string, error) {
		return `{"score": 0, "one_line_reason": "resume was empty"}`, nil
	})
	rec, ok := p.repairEvaluation(context.Background(), "raw", "fallback")
	assert.True(t, ok)
	assert.Equal(t, "resume was empty", rec.OneLineReason)
}

func TestRepairEvaluation_RejectsStillDefaultResult(t *testing.T) {
	p, _ := repairPipeline(func(domain.OracleRequest) (string, error) {
		return "still not json", nil
	})
	_, ok := p.repairEvaluation(context.Background(), "raw", "fallback")
	assert.False(t, ok)
}

func TestRepairEvaluation_TransportFailureKeepsDefault(t *testing.T) {
	p, _ := repairPipeline(func(domain.OracleRequest) (string, error) {
		return "", errors.New("timeout")
	})
	_, ok := p.repairEvaluation(context.Background(), "raw", "fallback")
	assert.False(t, ok)
}

func TestRepairEvaluation_EmptyRawNeverCalls(t *testing.T) {
	p, oracle := repairPipeline(func(domain.OracleRequest) (string, error) {
		return `{"score": 90, "one_line_reason": "should not happen"}`, nil
	})
	_, ok := p.repairEvaluation(context.Background(), "   ", "fallback")
	assert.False(t, ok)
	assert.Zero(t, oracle.callCount("repair"))
}

func TestRepairEvaluation_RepairPromptCarriesOriginalText(t *testing.T) {
	var seen string
	p, _ := repairPipeline(func(req domain.OracleRequest) (string, error) {
		seen = req.Instructions
		return `{"score": 40, "one_line_reason": "ok"}`, nil
	})
	_, ok := p.repairEvaluation(context.Background(), "the previous prose answer", "fallback")
	assert.True(t, ok)
	assert.Contains(t, seen, "the previous prose answer")
	assert.Contains(t, seen, "STRICT JSON")
}
