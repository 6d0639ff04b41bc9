package service

const (
	MinCreditScore = 300
	MaxCreditScore = 850
	MaxDTIRatio    = 100.0

	// MaxApprovalScore caps the summed bucket points. With the current
	// weights (25+30+25+20) the cap is never exceeded.
	MaxApprovalScore = 100

	// MaxHistoryEntries is the conversation window: 5 user/assistant exchanges.
	MaxHistoryEntries = 10
)

// Recommendation tiers, by final score.
const (
	StrongTierFloor   = 80
	GoodTierFloor     = 60
	ModerateTierFloor = 40

	RecommendationStrong   = "Strong candidate for loan approval"
	RecommendationGood     = "Good candidate, minor improvements possible"
	RecommendationModerate = "Moderate candidate, significant improvements needed"
	RecommendationWeak     = "Weak candidate, major improvements required"
)

const ApologyMessage = "I apologize, but I encountered an error processing your message. Please try again."

const DataContextUnavailable = "Data context unavailable due to loading error."
