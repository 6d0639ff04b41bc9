package service

import (
	"loan-advisor/domain"
)

// ScoringService turns an application into a 0-100 approval score using four
// independent buckets: income, credit score, DTI ratio and employment.
// It is a pure function of its input.
type ScoringService struct{}

func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// Score validates the application and scores it. Factors are always emitted
// in the order income, credit score, DTI ratio, employment.
func (s *ScoringService) Score(input domain.ApplicationInput) (domain.ScoreResult, error) {
	app, err := ValidateApplication(input)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	total := 0
	factors := make([]string, 0, 4)

	for _, bucket := range []func(domain.ApplicationInput) (int, string){
		scoreIncome,
		scoreCreditScore,
		scoreDTIRatio,
		scoreEmployment,
	} {
		points, factor := bucket(app)
		total += points
		factors = append(factors, factor)
	}

	score := min(total, MaxApprovalScore)

	return domain.ScoreResult{
		Score:          score,
		Factors:        factors,
		Recommendation: Recommendation(score),
	}, nil
}

// Recommendation maps a final score to its tier text.
func Recommendation(score int) string {
	switch {
	case score >= StrongTierFloor:
		return RecommendationStrong
	case score >= GoodTierFloor:
		return RecommendationGood
	case score >= ModerateTierFloor:
		return RecommendationModerate
	default:
		return RecommendationWeak
	}
}

// Thresholds are strict: a value exactly on a boundary falls to the lower bucket.

func scoreIncome(app domain.ApplicationInput) (int, string) {
	switch {
	case app.Income > 75000:
		return 25, "Good income level"
	case app.Income > 50000:
		return 15, "Moderate income level"
	default:
		return 0, "Low income level - consider increasing income"
	}
}

func scoreCreditScore(app domain.ApplicationInput) (int, string) {
	switch {
	case app.CreditScore > 750:
		return 30, "Excellent credit score"
	case app.CreditScore > 700:
		return 20, "Good credit score"
	case app.CreditScore > 650:
		return 10, "Fair credit score - consider improvement"
	default:
		return 0, "Poor credit score - significant improvement needed"
	}
}

func scoreDTIRatio(app domain.ApplicationInput) (int, string) {
	switch {
	case app.DTIRatio < 20:
		return 25, "Excellent DTI ratio"
	case app.DTIRatio < 35:
		return 15, "Good DTI ratio"
	case app.DTIRatio < 50:
		return 5, "High DTI ratio - consider reduction"
	default:
		return 0, "Very high DTI ratio - significant reduction needed"
	}
}

func scoreEmployment(app domain.ApplicationInput) (int, string) {
	if domain.EmploymentStatus(app.EmploymentStatus) == domain.Employed {
		return 20, "Employed - positive factor"
	}
	return 0, "Unemployed - consider securing employment"
}
