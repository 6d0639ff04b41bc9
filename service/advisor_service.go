package service

import (
	"context"
	"errors"

	"loan-advisor/domain"
	"loan-advisor/logger"
	"loan-advisor/metrics"
)

// AdvisorService is the application analysis flow: validate, score, then
// explain. The score never depends on the narrative backend.
type AdvisorService struct {
	scoring     *ScoringService
	narrative   *NarrativeService
	dataContext DataContextProvider
	logger      logger.Logger
}

func NewAdvisorService(scoring *ScoringService, narrative *NarrativeService, dataContext DataContextProvider, log logger.Logger) *AdvisorService {
	return &AdvisorService{
		scoring:     scoring,
		narrative:   narrative,
		dataContext: dataContext,
		logger:      log,
	}
}

func (a *AdvisorService) Score(input domain.ApplicationInput) (domain.ScoreResult, error) {
	result, err := a.scoring.Score(input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			metrics.ValidationFailures.Inc()
		}
		return domain.ScoreResult{}, err
	}

	metrics.ApplicationsScored.WithLabelValues(tierLabel(result.Score)).Inc()
	return result, nil
}

func (a *AdvisorService) Analyze(ctx context.Context, input domain.ApplicationInput) (domain.ApplicationAnalysis, error) {
	result, err := a.Score(input)
	if err != nil {
		return domain.ApplicationAnalysis{}, err
	}

	// Score already validated; this only normalises the employment status.
	app, _ := ValidateApplication(input)

	dataContext := DataContextUnavailable
	if a.dataContext != nil {
		dataContext = a.dataContext.DataContext(ctx)
	}

	analysis := a.narrative.AnalyzeApplication(ctx, app, dataContext)

	a.logger.Info("Application analyzed", map[string]interface{}{
		"score":   result.Score,
		"backend": a.narrative.Backend(),
	})

	return domain.ApplicationAnalysis{
		ScoreResult: result,
		Analysis:    analysis,
	}, nil
}

func tierLabel(score int) string {
	switch {
	case score >= StrongTierFloor:
		return "strong"
	case score >= GoodTierFloor:
		return "good"
	case score >= ModerateTierFloor:
		return "moderate"
	default:
		return "weak"
	}
}
