package infringement

import (
	"encoding/json"
	"strings"

	"github.com/patlytics/patlytics/internal/domain/analysis"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// ModelOutput is the normalized form of a model response.
type ModelOutput struct {
	Analyses              []analysis.ProductAnalysis
	OverallRiskAssessment string
	// Degraded is true when the output was synthesized because the model
	// response could not be used.
	Degraded bool
}

// claimRef tolerates both JSON numbers and strings, since models render
// claim numbers either way.
type claimRef string

func (c *claimRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = claimRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = claimRef(n.String())
	return nil
}

// rawOutput mirrors the JSON contract the prompt asks for, with the
// likelihood still a raw string pending validation.
type rawOutput struct {
	Analyses []struct {
		ProductName            string     `json:"product_name"`
		InfringementLikelihood string     `json:"infringement_likelihood"`
		ClaimsAtIssue          []claimRef `json:"claims_at_issue"`
		Explanation            string     `json:"explanation"`
		SpecificFeatures       []string   `json:"specific_features"`
	} `json:"analyses"`
	OverallRiskAssessment string `json:"overall_risk_assessment"`
}

// StripFences removes a Markdown code fence wrapping, with or without the
// "json" language tag, returning the inner text trimmed.  Unfenced input
// passes through trimmed.  Fenced and unfenced renditions of the same JSON
// normalize identically.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// Normalize converts a raw model response into a ModelOutput.
//
// Malformed output never propagates as a panic or a raw parse error:
// unparseable responses yield exactly one synthetic Low-likelihood analysis
// whose explanation states the parse failure.  A well-formed response
// carrying an unrecognized likelihood label, however, is a hard
// ErrCodeInvalidLikelihoodLabel error; bad labels are rejected, not
// defaulted.
func Normalize(raw string) (*ModelOutput, error) {
	cleaned := StripFences(raw)

	var parsed rawOutput
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil || len(parsed.Analyses) == 0 {
		return degradedOutput("The model response could not be parsed as a patent analysis."), nil
	}

	out := &ModelOutput{
		Analyses:              make([]analysis.ProductAnalysis, 0, len(parsed.Analyses)),
		OverallRiskAssessment: parsed.OverallRiskAssessment,
	}
	for _, a := range parsed.Analyses {
		likelihood, err := analysis.ParseLikelihood(a.InfringementLikelihood)
		if err != nil {
			return nil, err
		}
		claims := make([]string, 0, len(a.ClaimsAtIssue))
		for _, c := range a.ClaimsAtIssue {
			claims = append(claims, string(c))
		}
		out.Analyses = append(out.Analyses, analysis.ProductAnalysis{
			ProductName:            a.ProductName,
			InfringementLikelihood: likelihood,
			ClaimsAtIssue:          claims,
			Explanation:            a.Explanation,
			SpecificFeatures:       a.SpecificFeatures,
		})
	}
	return out, nil
}

// DegradedInvocation builds the synthetic output used when the model could
// not be invoked at all (transport failure or timeout).  The explanation
// names the failure class so callers can tell invocation failures from
// parse failures.
func DegradedInvocation(err error) *ModelOutput {
	msg := "The analysis model could not be reached."
	if apperrors.IsCode(err, apperrors.ErrCodeTimeout) {
		msg = "The analysis model did not respond within the allowed time."
	}
	return degradedOutput(msg)
}

func degradedOutput(explanation string) *ModelOutput {
	return &ModelOutput{
		Analyses: []analysis.ProductAnalysis{{
			InfringementLikelihood: analysis.LikelihoodLow,
			ClaimsAtIssue:          []string{},
			Explanation:            explanation,
		}},
		Degraded: true,
	}
}
