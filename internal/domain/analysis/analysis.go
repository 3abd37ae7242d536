// Package analysis defines the infringement-assessment domain model: the
// likelihood scale, per-product analyses, match candidates from company
// resolution, and the final ranked report.
package analysis

import (
	"sort"
	"time"

	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// Likelihood is the enumerated infringement-likelihood scale.  It is a
// closed set; any other label coming back from a model is rejected rather
// than silently carried through.
type Likelihood string

const (
	LikelihoodHigh   Likelihood = "High"
	LikelihoodMedium Likelihood = "Medium"
	LikelihoodLow    Likelihood = "Low"
)

// Rank returns the ordering weight of the likelihood: High 3, Medium 2,
// Low 1.  Every valid Likelihood has a rank; ParseLikelihood guarantees no
// other value enters the system.
func (l Likelihood) Rank() int {
	switch l {
	case LikelihoodHigh:
		return 3
	case LikelihoodMedium:
		return 2
	default:
		return 1
	}
}

// Valid reports whether l is one of the three recognized labels.
func (l Likelihood) Valid() bool {
	switch l {
	case LikelihoodHigh, LikelihoodMedium, LikelihoodLow:
		return true
	}
	return false
}

// ParseLikelihood converts a raw label into a Likelihood.  Unrecognized
// labels produce an ErrCodeInvalidLikelihoodLabel error; they are never
// coerced to a default.
func ParseLikelihood(s string) (Likelihood, error) {
	l := Likelihood(s)
	if !l.Valid() {
		return "", apperrors.Newf(apperrors.ErrCodeInvalidLikelihoodLabel,
			"unrecognized likelihood label %q", s)
	}
	return l, nil
}

// ProductAnalysis is the model's assessment of a single product against the
// patent claims.
type ProductAnalysis struct {
	ProductName            string     `json:"product_name"`
	InfringementLikelihood Likelihood `json:"infringement_likelihood"`
	// ClaimsAtIssue lists the claim numbers the model considers relevant.
	ClaimsAtIssue []string `json:"claims_at_issue"`
	Explanation   string   `json:"explanation"`
	// SpecificFeatures is optional detail some models include.
	SpecificFeatures []string `json:"specific_features,omitempty"`
}

// InfringementReport is the final ranked deliverable for one patent/company
// pair.
type InfringementReport struct {
	PatentID    string `json:"patent_id"`
	PatentTitle string `json:"patent_title"`
	CompanyName string `json:"company_name"`
	// TopInfringingProducts holds at most the two highest-likelihood
	// analyses, ordered by descending likelihood rank.
	TopInfringingProducts []ProductAnalysis `json:"top_infringing_products"`
	OverallRiskAssessment string            `json:"overall_risk_assessment"`
	AnalysisDate          time.Time         `json:"analysis_date"`
}

// MaxReportedProducts is how many product analyses a report retains after
// ranking.
const MaxReportedProducts = 2

// RankAnalyses orders analyses by descending likelihood rank, preserving the
// input order among equals, and returns at most MaxReportedProducts entries.
// The input slice is not modified.
func RankAnalyses(in []ProductAnalysis) []ProductAnalysis {
	out := make([]ProductAnalysis, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InfringementLikelihood.Rank() > out[j].InfringementLikelihood.Rank()
	})
	if len(out) > MaxReportedProducts {
		out = out[:MaxReportedProducts]
	}
	return out
}

// ScoreKind identifies which scoring scale produced a match-candidate score.
// Index relevance scores and local similarity ratios live on incomparable
// scales and are never mixed in a single candidate list.
type ScoreKind string

const (
	// ScoreIndexRelevance marks an OpenSearch relevance score.
	ScoreIndexRelevance ScoreKind = "index_relevance"
	// ScoreLocalRatio marks a local string-similarity ratio in [0, 100].
	ScoreLocalRatio ScoreKind = "local_ratio"
)

// MatchCandidate is one scored company-name candidate from resolution.
type MatchCandidate struct {
	Name  string    `json:"name"`
	Score float64   `json:"score"`
	Kind  ScoreKind `json:"kind"`
}
