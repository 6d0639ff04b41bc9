package service

import (
	"math"

	"loan-advisor/domain"
)

// ValidateApplication checks every field and reports all violations at once.
// On success the returned input has a lower-cased employment status.
func ValidateApplication(input domain.ApplicationInput) (domain.ApplicationInput, error) {
	errs := domain.ValidationErrors{}

	if !isFinite(input.Income) || input.Income <= 0 {
		errs["income"] = "Income must be positive"
	}
	if input.CreditScore < MinCreditScore || input.CreditScore > MaxCreditScore {
		errs["credit_score"] = "Credit score must be between 300 and 850"
	}
	if !isFinite(input.LoanAmount) || input.LoanAmount <= 0 {
		errs["loan_amount"] = "Loan amount must be positive"
	}
	if !isFinite(input.DTIRatio) || input.DTIRatio < 0 || input.DTIRatio > MaxDTIRatio {
		errs["dti_ratio"] = "DTI ratio must be between 0 and 100"
	}

	status, ok := domain.ParseEmploymentStatus(input.EmploymentStatus)
	switch {
	case status == "":
		errs["employment_status"] = "Employment status is required"
	case !ok:
		errs["employment_status"] = "Employment status must be employed or unemployed"
	}

	if len(errs) > 0 {
		return domain.ApplicationInput{}, errs
	}

	input.EmploymentStatus = string(status)
	return input, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
