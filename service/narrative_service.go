package service

import (
	"context"
	"fmt"

	"loan-advisor/domain"
	"loan-advisor/logger"
	"loan-advisor/metrics"
)

const (
	ModeGenerative = "generative"
	ModeFallback   = "fallback"
)

// NarrativeService produces explanatory text. When a generative backend is
// configured it is tried first; any failure falls back to the canned
// responder for the same prompt, so callers always get text.
type NarrativeService struct {
	primary  TextProducer
	fallback *FallbackResponder
	logger   logger.Logger
}

// NewNarrativeService builds the service. A nil primary selects fallback-only mode.
func NewNarrativeService(primary TextProducer, log logger.Logger) *NarrativeService {
	return &NarrativeService{
		primary:  primary,
		fallback: NewFallbackResponder(),
		logger:   log,
	}
}

func (s *NarrativeService) Mode() string {
	if s.primary == nil {
		return ModeFallback
	}
	return ModeGenerative
}

func (s *NarrativeService) Backend() string {
	if s.primary == nil {
		return s.fallback.Name()
	}
	return s.primary.Name()
}

// ProduceText never fails.
func (s *NarrativeService) ProduceText(ctx context.Context, prompt, dataContext string) string {
	if s.primary == nil {
		metrics.NarrativeRequests.WithLabelValues(ModeFallback, "ok").Inc()
		return s.fallback.Reply(prompt)
	}

	text, err := s.tryPrimary(ctx, prompt, dataContext)
	if err != nil {
		s.logger.Warn("Generative backend failed, using fallback response", map[string]interface{}{
			"backend": s.primary.Name(),
			"error":   err,
		})
		metrics.NarrativeRequests.WithLabelValues(ModeGenerative, "failover").Inc()
		return s.fallback.Reply(prompt)
	}

	metrics.NarrativeRequests.WithLabelValues(ModeGenerative, "ok").Inc()
	return text
}

// AnalyzeApplication explains an application field by field. The generative
// path receives a structured prompt; the fallback path uses fixed thresholds.
func (s *NarrativeService) AnalyzeApplication(ctx context.Context, app domain.ApplicationInput, dataContext string) string {
	if s.primary == nil {
		metrics.NarrativeRequests.WithLabelValues(ModeFallback, "ok").Inc()
		return s.fallback.Analyze(app)
	}

	text, err := s.tryPrimary(ctx, analysisPrompt(app), dataContext)
	if err != nil {
		s.logger.Warn("Generative analysis failed, using fallback analysis", map[string]interface{}{
			"backend": s.primary.Name(),
			"error":   err,
		})
		metrics.NarrativeRequests.WithLabelValues(ModeGenerative, "failover").Inc()
		return s.fallback.Analyze(app)
	}

	metrics.NarrativeRequests.WithLabelValues(ModeGenerative, "ok").Inc()
	return text
}

// tryPrimary converts a panic in the backend into an error.
func (s *NarrativeService) tryPrimary(ctx context.Context, prompt, dataContext string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: backend panic: %v", domain.ErrBackendUnavailable, r)
		}
	}()
	return s.primary.ProduceText(ctx, prompt, dataContext)
}

func analysisPrompt(app domain.ApplicationInput) string {
	purpose := app.Purpose
	if purpose == "" {
		purpose = "Not specified"
	}
	return fmt.Sprintf(`Analyze this loan application and provide recommendations:

Application Details:
- Income: $%.2f
- Credit Score: %d
- Loan Amount: $%.2f
- DTI Ratio: %g%%
- Employment Status: %s
- Loan Purpose: %s

Provide specific analysis and improvement recommendations.`,
		app.Income, app.CreditScore, app.LoanAmount, app.DTIRatio, app.EmploymentStatus, purpose)
}
