package infringement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patlytics/internal/domain/analysis"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

const validResponse = `{
	"analyses": [
		{
			"product_name": "PowerMax Charger",
			"infringement_likelihood": "High",
			"claims_at_issue": [1, 2],
			"explanation": "The charger varies charge current under controller supervision.",
			"specific_features": ["adaptive current control"]
		},
		{
			"product_name": "VoltGuard Monitor",
			"infringement_likelihood": "Low",
			"claims_at_issue": [],
			"explanation": "Monitoring alone does not implement the charging claims."
		}
	],
	"overall_risk_assessment": "Moderate exposure concentrated in the charger line."
}`

func TestNormalizeValidOutput(t *testing.T) {
	out, err := Normalize(validResponse)
	require.NoError(t, err)
	assert.False(t, out.Degraded)
	require.Len(t, out.Analyses, 2)

	first := out.Analyses[0]
	assert.Equal(t, "PowerMax Charger", first.ProductName)
	assert.Equal(t, analysis.LikelihoodHigh, first.InfringementLikelihood)
	assert.Equal(t, []string{"1", "2"}, first.ClaimsAtIssue)
	assert.Equal(t, []string{"adaptive current control"}, first.SpecificFeatures)
	assert.Equal(t, "Moderate exposure concentrated in the charger line.", out.OverallRiskAssessment)
}

func TestNormalizeFencedEqualsUnfenced(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	plainFence := "```\n" + validResponse + "\n```"

	want, err := Normalize(validResponse)
	require.NoError(t, err)

	for _, raw := range []string{fenced, plainFence} {
		got, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNormalizeStringClaimNumbers(t *testing.T) {
	raw := `{"analyses":[{"product_name":"P","infringement_likelihood":"Medium","claims_at_issue":["1","3"],"explanation":"x"}]}`
	out, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, out.Analyses[0].ClaimsAtIssue)
}

func TestNormalizeMalformedOutputDegrades(t *testing.T) {
	cases := []string{
		"not json at all",
		"```json\nstill not json\n```",
		`{"analyses": []}`,
		`{"unexpected": true}`,
		"",
	}
	for _, raw := range cases {
		out, err := Normalize(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.True(t, out.Degraded)
		require.Len(t, out.Analyses, 1, "raw=%q", raw)

		synthetic := out.Analyses[0]
		assert.Equal(t, analysis.LikelihoodLow, synthetic.InfringementLikelihood)
		assert.Empty(t, synthetic.ClaimsAtIssue)
		assert.NotEmpty(t, synthetic.Explanation)
	}
}

func TestNormalizeInvalidLabelIsHardError(t *testing.T) {
	raw := `{"analyses":[{"product_name":"P","infringement_likelihood":"Severe","claims_at_issue":[],"explanation":"x"}]}`
	_, err := Normalize(raw)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidLikelihoodLabel))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("  {\"a\":1}  "))
}

func TestDegradedInvocationNamesFailureClass(t *testing.T) {
	timeoutErr := apperrors.Wrap(context.DeadlineExceeded, apperrors.ErrCodeTimeout, "model invocation timed out")
	out := DegradedInvocation(timeoutErr)
	require.Len(t, out.Analyses, 1)
	assert.True(t, out.Degraded)
	assert.Contains(t, out.Analyses[0].Explanation, "time")

	transportErr := apperrors.New(apperrors.ErrCodeModelInvocationFailure, "connection refused")
	out = DegradedInvocation(transportErr)
	assert.Contains(t, out.Analyses[0].Explanation, "reached")
}
