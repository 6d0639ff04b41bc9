package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"loan-advisor/domain"
)

const (
	colApproval   = "Approval"
	colIncome     = "Income"
	colCredit     = "Credit_Score"
	colLoanAmount = "Loan_Amount"
	colDTI        = "DTI_Ratio"
	colEmployment = "Employment_Status"
)

var requiredColumns = []string{colApproval, colIncome, colCredit, colLoanAmount, colDTI, colEmployment}

var purposeColumns = []string{"Purpose", "Loan_Purpose"}

// CSVLoanSource reads loan records from a CSV file with a header row.
type CSVLoanSource struct {
	path string
}

func NewCSVLoanSource(path string) *CSVLoanSource {
	return &CSVLoanSource{path: path}
}

func (s *CSVLoanSource) Name() string {
	return "csv:" + s.path
}

func (s *CSVLoanSource) Load(ctx context.Context) ([]domain.LoanRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrDataUnavailable, s.path, err)
	}
	defer f.Close()

	records, err := ParseLoanCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return records, nil
}

// ParseLoanCSV decodes the dataset format. Column order is free and unknown
// columns are ignored.
func ParseLoanCSV(ctx context.Context, r io.Reader) ([]domain.LoanRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrDataUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrDataUnavailable, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrDataUnavailable, strings.Join(missing, ", "))
	}

	purposeIdx := -1
	for _, col := range purposeColumns {
		if i, ok := index[col]; ok {
			purposeIdx = i
			break
		}
	}

	records := []domain.LoanRecord{}
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrDataUnavailable, line, err)
		}

		rec, err := parseRow(row, index, purposeIdx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrDataUnavailable, line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(row []string, index map[string]int, purposeIdx int) (domain.LoanRecord, error) {
	field := func(col string) string {
		return strings.TrimSpace(row[index[col]])
	}

	income, err := parseNonNegative(colIncome, field(colIncome))
	if err != nil {
		return domain.LoanRecord{}, err
	}
	loanAmount, err := parseNonNegative(colLoanAmount, field(colLoanAmount))
	if err != nil {
		return domain.LoanRecord{}, err
	}

	credit, err := parseCreditScore(field(colCredit))
	if err != nil {
		return domain.LoanRecord{}, err
	}

	dti, err := strconv.ParseFloat(field(colDTI), 64)
	if err != nil || !isFinite(dti) || dti < 0 || dti > 100 {
		return domain.LoanRecord{}, fmt.Errorf("%s %q is not a number in [0,100]", colDTI, field(colDTI))
	}

	employment, ok := domain.ParseEmploymentStatus(field(colEmployment))
	if !ok {
		return domain.LoanRecord{}, fmt.Errorf("%s %q is not employed or unemployed", colEmployment, field(colEmployment))
	}

	approval, err := parseApproval(field(colApproval))
	if err != nil {
		return domain.LoanRecord{}, err
	}

	rec := domain.LoanRecord{
		Income:           income,
		CreditScore:      credit,
		LoanAmount:       loanAmount,
		DTIRatio:         dti,
		EmploymentStatus: employment,
		Approval:         approval,
	}
	if purposeIdx >= 0 {
		rec.Purpose = strings.TrimSpace(row[purposeIdx])
	}
	return rec, nil
}

func parseNonNegative(col, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(v) || v < 0 {
		return 0, fmt.Errorf("%s %q is not a non-negative number", col, raw)
	}
	return v, nil
}

// isFinite rejects the NaN and Inf spellings strconv.ParseFloat accepts.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// parseCreditScore accepts "712" and "712.0" but not "712.5".
func parseCreditScore(raw string) (int, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(v) || v != float64(int(v)) {
		return 0, fmt.Errorf("%s %q is not an integer", colCredit, raw)
	}
	score := int(v)
	if score < 300 || score > 850 {
		return 0, fmt.Errorf("%s %d is outside [300,850]", colCredit, score)
	}
	return score, nil
}

func parseApproval(raw string) (domain.ApprovalOutcome, error) {
	switch {
	case strings.EqualFold(raw, string(domain.Approved)):
		return domain.Approved, nil
	case strings.EqualFold(raw, string(domain.Rejected)):
		return domain.Rejected, nil
	default:
		return "", fmt.Errorf("%s %q is not Approved or Rejected", colApproval, raw)
	}
}
