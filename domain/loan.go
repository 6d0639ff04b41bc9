package domain

import "strings"

type EmploymentStatus string

const (
	Employed   EmploymentStatus = "employed"
	Unemployed EmploymentStatus = "unemployed"
)

// ParseEmploymentStatus lower-cases and trims the raw value. It does not
// default: an unknown value is reported as not ok.
func ParseEmploymentStatus(raw string) (EmploymentStatus, bool) {
	switch s := EmploymentStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case Employed, Unemployed:
		return s, true
	default:
		return s, false
	}
}

type ApprovalOutcome string

const (
	Approved ApprovalOutcome = "Approved"
	Rejected ApprovalOutcome = "Rejected"
)

// LoanRecord is one historical application with its outcome.
type LoanRecord struct {
	Income           float64          `json:"income"`
	CreditScore      int              `json:"credit_score"`
	LoanAmount       float64          `json:"loan_amount"`
	DTIRatio         float64          `json:"dti_ratio"`
	EmploymentStatus EmploymentStatus `json:"employment_status"`
	Approval         ApprovalOutcome  `json:"approval"`
	Purpose          string           `json:"purpose,omitempty"`
}

// ApplicationInput is what an applicant submits for analysis. It is never stored.
type ApplicationInput struct {
	Income           float64 `json:"income"`
	CreditScore      int     `json:"credit_score"`
	LoanAmount       float64 `json:"loan_amount"`
	DTIRatio         float64 `json:"dti_ratio"`
	EmploymentStatus string  `json:"employment_status"`
	Purpose          string  `json:"purpose"`
}

type ScoreResult struct {
	Score          int      `json:"score"`
	Factors        []string `json:"factors"`
	Recommendation string   `json:"recommendation"`
}

// ApplicationAnalysis pairs the deterministic score with the narrative text.
type ApplicationAnalysis struct {
	ScoreResult
	Analysis string `json:"analysis"`
}
