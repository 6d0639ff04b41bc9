package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"loan-advisor/domain"
	"loan-advisor/service"
)

type LoanHandler struct {
	advisor *service.AdvisorService
}

func NewLoanHandler(advisor *service.AdvisorService) *LoanHandler {
	return &LoanHandler{advisor: advisor}
}

// applicationRequest accepts credit scores written as 712.0; the schema has
// already rejected fractional values.
type applicationRequest struct {
	Income           float64 `json:"income"`
	CreditScore      float64 `json:"credit_score"`
	LoanAmount       float64 `json:"loan_amount"`
	DTIRatio         float64 `json:"dti_ratio"`
	EmploymentStatus string  `json:"employment_status"`
	Purpose          string  `json:"purpose"`
}

func (req applicationRequest) toInput() domain.ApplicationInput {
	return domain.ApplicationInput{
		Income:           req.Income,
		CreditScore:      int(req.CreditScore),
		LoanAmount:       req.LoanAmount,
		DTIRatio:         req.DTIRatio,
		EmploymentStatus: req.EmploymentStatus,
		Purpose:          req.Purpose,
	}
}

func decodeApplication(r *http.Request) (domain.ApplicationInput, error) {
	body, err := readValidatedBody(r, applicationSchema)
	if err != nil {
		return domain.ApplicationInput{}, err
	}

	var req applicationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return domain.ApplicationInput{}, fmt.Errorf("%w: invalid request body", domain.ErrInvalidArgument)
	}
	return req.toInput(), nil
}

// Analyze scores the application and attaches the narrative analysis.
func (h *LoanHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	input, err := decodeApplication(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.advisor.Analyze(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Score returns only the deterministic score. It never calls the narrative backend.
func (h *LoanHandler) Score(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	input, err := decodeApplication(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.advisor.Score(input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
