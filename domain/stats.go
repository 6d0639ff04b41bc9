package domain

// ApprovalStats summarises a loan dataset by outcome. Values are raw numbers;
// formatting belongs to the caller.
type ApprovalStats struct {
	TotalApplications      int     `json:"total_applications"`
	Approved               int     `json:"approved"`
	Rejected               int     `json:"rejected"`
	ApprovalRate           float64 `json:"approval_rate"`
	AvgIncomeApproved      float64 `json:"avg_income_approved"`
	AvgIncomeRejected      float64 `json:"avg_income_rejected"`
	AvgCreditScoreApproved float64 `json:"avg_credit_score_approved"`
	AvgCreditScoreRejected float64 `json:"avg_credit_score_rejected"`
}

// HasApproved reports whether the approved-group means are meaningful.
func (s ApprovalStats) HasApproved() bool { return s.Approved > 0 }

// HasRejected reports whether the rejected-group means are meaningful.
func (s ApprovalStats) HasRejected() bool { return s.Rejected > 0 }
