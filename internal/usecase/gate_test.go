package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

func gatePipeline(gate func(domain.OracleRequest) (string, error)) *Pipeline {
	oracle := &scriptedOracle{gate: gate}
	return NewPipeline(oracle, nil, nil, Options{EligibilityRule: "must be located in the EU"})
}

func TestCheckEligibility_AdmitBoolean(t *testing.T) {
	p := gatePipeline(func(domain.OracleRequest) (string, error) {
		return `{"admit": true, "reason": "located in Berlin"}`, nil
	})
	v := p.checkEligibility(context.Background(), "resume", "a.pdf")
	assert.True(t, v.Admit)
	assert.Equal(t, "located in Berlin", v.Reason)
}

func TestCheckEligibility_DenyBoolean(t *testing.T) {
	p := gatePipeline(func(domain.OracleRequest) (string, error) {
		return `{"admit": false, "reason": "based outside the EU"}`, nil
	})
	v := p.checkEligibility(context.Background(), "resume", "a.pdf")
	assert.False(t, v.Admit)
	assert.Equal(t, "based outside the EU", v.Reason)
}

func TestCheckEligibility_DenyWithoutReasonGetsDefault(t *testing.T) {
	p := gatePipeline(func(domain.OracleRequest) (string, error) {
		return `{"admit": false}`, nil
	})
	v := p.checkEligibility(context.Background(), "resume", "a.pdf")
	assert.False(t, v.Admit)
	assert.Equal(t, deniedDefaultReason, v.Reason)
}

func TestCheckEligibility_AllowKeyAccepted(t *testing.T) {
	p := gatePipeline(func(domain.OracleRequest) (string, error) {
		return `{"allow": false, "reason": "remote only"}`, nil
	})
	v := p.checkEligibility(context.Background(), "resume", "a.pdf")
	assert.False(t, v.Admit)
}

func TestCheckEligibility_FailOpenOnCallError(t *testing.T) {
	p := gatePipeline(func(domain.OracleRequest) (string, error) {
		return "", errors.New("upstream 503")
	})
	v := p.checkEligibility(context.Background(), "resume", "a.pdf")
	assert.True(t, v.Admit)
	assert.Contains(t, v.Reason, "fail-open")
}

func TestCheckEligibility_FailOpenOnStringAllow(t *testing.T) {
	// The oracle answering {"allow": "yes"} must admit, with the reason
	// naming the invalid allow type.
	p := gatePipeline(func(domain.OracleRequest) (string, error) {
		return `{"allow": "yes"}`, nil
	})
	v := p.checkEligibility(context.Background(), "resume", "a.pdf")
	assert.True(t, v.Admit)
	assert.Contains(t, v.Reason, "invalid allow type")
	assert.Contains(t, v.Reason, "fail-open")
}

func TestCheckEligibility_FailOpenOnNumericAdmit(t *testing.T) {
	p := gatePipeline(func(domain.OracleRequest) (string, error) {
		return `{"admit": 1}`, nil
	})
	v := p.checkEligibility(context.Background(), "resume", "a.pdf")
	assert.True(t, v.Admit)
	assert.Contains(t, v.Reason, "invalid admit type")
}

func TestCheckEligibility_FailOpenOnMissingField(t *testing.T) {
	cases := []string{
		`{"eligible": true}`,
		`not json at all`,
		``,
	}
	for _, raw := range cases {
		p := gatePipeline(func(domain.OracleRequest) (string, error) { return raw, nil })
		v := p.checkEligibility(context.Background(), "resume", "a.pdf")
		assert.True(t, v.Admit, "raw: %q", raw)
		assert.Contains(t, v.Reason, "fail-open", "raw: %q", raw)
	}
}
