package infringement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/patlytics/patlytics/internal/application/resolver"
	"github.com/patlytics/patlytics/internal/domain/analysis"
	"github.com/patlytics/patlytics/internal/domain/catalog"
	"github.com/patlytics/patlytics/internal/domain/report"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// TextGenerator is the language-model contract.  Implementations send a
// system prompt and a user prompt and return the raw completion text.  The
// context carries the invocation deadline; implementations must respect it.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Metrics records pipeline outcomes.  The prometheus collector implements
// it; tests pass a no-op.
type Metrics interface {
	RecordAssessment(outcome string, modelDuration time.Duration)
	RecordResolution(tier string)
	RecordReportSaved()
}

// Outcome labels recorded on the assessment metric.
const (
	OutcomeOK                     = "ok"
	OutcomePatentNotFound         = "patent_not_found"
	OutcomeCompanyNoMatch         = "company_no_match"
	OutcomeResolutionUnavailable  = "resolution_unavailable"
	OutcomeModelInvocationFailure = "model_invocation_failure"
	OutcomeMalformedModelOutput   = "malformed_model_output"
	OutcomeInvalidLikelihood      = "invalid_likelihood_label"
)

// Request identifies the patent/company pair to assess.
type Request struct {
	PatentID    string
	CompanyName string
	// UserID, when set, asks the pipeline to persist the finished report
	// for that user.
	UserID *uuid.UUID
}

// Response carries the finished report plus resolution and persistence
// detail.
type Response struct {
	Report analysis.InfringementReport `json:"report"`
	// InputCompany is the company name as the caller supplied it.
	InputCompany string `json:"input_company"`
	// ResolvedCompany is the catalog name the input was resolved to, with
	// its score.
	ResolvedCompany analysis.MatchCandidate `json:"resolved_company"`
	// Alternatives lists runner-up company candidates, when the index tier
	// produced any.
	Alternatives []analysis.MatchCandidate `json:"alternatives,omitempty"`
	// Degraded is true when the report content was synthesized because the
	// model output was unusable.
	Degraded bool `json:"degraded,omitempty"`
	// ReportID is set when the report was persisted.
	ReportID *uuid.UUID `json:"report_id,omitempty"`
	// PersistenceError carries the save failure, if any.  A failed save
	// never discards the computed report.
	PersistenceError string `json:"persistence_error,omitempty"`
}

// Service runs the end-to-end assessment pipeline.
type Service struct {
	catalog      catalog.Catalog
	resolver     *resolver.FuzzyResolver
	generator    TextGenerator
	reports      report.Repository
	metrics      Metrics
	logger       logging.Logger
	modelTimeout time.Duration
	now          func() time.Time
}

// NewService wires the pipeline.  reports may be nil when persistence is
// not configured.
func NewService(
	cat catalog.Catalog,
	res *resolver.FuzzyResolver,
	gen TextGenerator,
	reports report.Repository,
	metrics Metrics,
	logger logging.Logger,
	modelTimeout time.Duration,
) *Service {
	return &Service{
		catalog:      cat,
		resolver:     res,
		generator:    gen,
		reports:      reports,
		metrics:      metrics,
		logger:       logger.Named("infringement"),
		modelTimeout: modelTimeout,
		now:          time.Now,
	}
}

// Assess runs the pipeline for one patent/company pair.
//
// Input failures short-circuit before any model call: an unknown patent or
// an unresolvable company returns immediately.  Model failures degrade into
// a synthetic low-likelihood report rather than an error.  Persistence runs
// last; its failure is reported alongside the report, never instead of it.
func (s *Service) Assess(ctx context.Context, req Request) (*Response, error) {
	resolved, err := s.resolver.Resolve(ctx, req.CompanyName)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	s.metrics.RecordResolution(string(resolved.Tier))

	patent, err := s.catalog.GetPatent(ctx, req.PatentID)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	prompt := BuildPrompt(patent, &resolved.Company)

	modelCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	start := time.Now()
	raw, genErr := s.generator.Generate(modelCtx, SystemPrompt, prompt)
	cancel()
	modelDuration := time.Since(start)

	var output *ModelOutput
	outcome := OutcomeOK
	switch {
	case genErr != nil:
		if errors.Is(genErr, context.DeadlineExceeded) {
			genErr = apperrors.Wrap(genErr, apperrors.ErrCodeTimeout, "model invocation timed out")
		}
		s.logger.Warn("model invocation failed",
			logging.String("patent_id", req.PatentID),
			logging.String("company", resolved.Company.Name),
			logging.Err(genErr))
		output = DegradedInvocation(genErr)
		outcome = OutcomeModelInvocationFailure
	default:
		output, err = Normalize(raw)
		if err != nil {
			s.metrics.RecordAssessment(OutcomeInvalidLikelihood, modelDuration)
			return nil, err
		}
		if output.Degraded {
			outcome = OutcomeMalformedModelOutput
			s.logger.Warn("model output could not be parsed",
				logging.String("patent_id", req.PatentID),
				logging.String("company", resolved.Company.Name))
		}
	}
	s.metrics.RecordAssessment(outcome, modelDuration)

	rep := analysis.InfringementReport{
		PatentID:              patent.PatentID,
		PatentTitle:           patent.Title,
		CompanyName:           resolved.Company.Name,
		TopInfringingProducts: analysis.RankAnalyses(output.Analyses),
		OverallRiskAssessment: output.OverallRiskAssessment,
		AnalysisDate:          s.now().UTC(),
	}

	resp := &Response{
		Report:          rep,
		InputCompany:    req.CompanyName,
		ResolvedCompany: resolved.Match,
		Alternatives:    resolved.Alternatives,
		Degraded:        output.Degraded,
	}

	if req.UserID != nil && s.reports != nil {
		rec := &report.StoredReport{
			UserID:       *req.UserID,
			PatentID:     rep.PatentID,
			CompanyName:  rep.CompanyName,
			InputCompany: req.CompanyName,
			Payload:      rep,
		}
		if err := s.reports.Save(ctx, rec); err != nil {
			s.logger.Error("report persistence failed",
				logging.String("patent_id", rep.PatentID),
				logging.String("company", rep.CompanyName),
				logging.Err(err))
			resp.PersistenceError = apperrors.DefaultMessageForCode(apperrors.ErrCodePersistenceFailure)
		} else {
			resp.ReportID = &rec.ID
			s.metrics.RecordReportSaved()
		}
	}
	return resp, nil
}

func (s *Service) recordFailure(err error) {
	switch {
	case apperrors.IsCode(err, apperrors.ErrCodePatentNotFound):
		s.metrics.RecordAssessment(OutcomePatentNotFound, 0)
	case apperrors.IsCode(err, apperrors.ErrCodeNoMatch):
		s.metrics.RecordAssessment(OutcomeCompanyNoMatch, 0)
	case apperrors.IsUnavailable(err):
		s.metrics.RecordAssessment(OutcomeResolutionUnavailable, 0)
	}
}
