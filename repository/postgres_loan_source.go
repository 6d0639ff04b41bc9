package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"

	"loan-advisor/domain"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresLoanSource reads loan records from a table shaped like the CSV
// dataset:
//
//	id BIGSERIAL, income NUMERIC, credit_score INT, loan_amount NUMERIC,
//	dti_ratio NUMERIC, employment_status TEXT, approval TEXT, purpose TEXT NULL
//
// Rows are returned ordered by id.
type PostgresLoanSource struct {
	db    *sql.DB
	table string
	query string
}

// OpenPostgres opens a pooled connection using the lib/pq driver.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func NewPostgresLoanSource(db *sql.DB, table string) (*PostgresLoanSource, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresLoanSource{
		db:    db,
		table: table,
		query: fmt.Sprintf(
			`SELECT income, credit_score, loan_amount, dti_ratio, employment_status, approval, COALESCE(purpose, '') FROM %s ORDER BY id`,
			table,
		),
	}, nil
}

func (s *PostgresLoanSource) Name() string {
	return "postgres:" + s.table
}

func (s *PostgresLoanSource) Load(ctx context.Context) ([]domain.LoanRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", domain.ErrDataUnavailable, s.table, err)
	}
	defer rows.Close()

	records := []domain.LoanRecord{}
	for n := 1; rows.Next(); n++ {
		var (
			rec        domain.LoanRecord
			employment string
			approval   string
		)
		if err := rows.Scan(
			&rec.Income,
			&rec.CreditScore,
			&rec.LoanAmount,
			&rec.DTIRatio,
			&employment,
			&approval,
			&rec.Purpose,
		); err != nil {
			return nil, fmt.Errorf("%w: scan row %d: %v", domain.ErrDataUnavailable, n, err)
		}

		if err := checkRecord(&rec, employment, approval); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrDataUnavailable, n, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %v", domain.ErrDataUnavailable, s.table, err)
	}

	return records, nil
}

func checkRecord(rec *domain.LoanRecord, employment, approval string) error {
	if !isFinite(rec.Income) || !isFinite(rec.LoanAmount) || !isFinite(rec.DTIRatio) {
		return fmt.Errorf("non-finite numeric value")
	}
	if rec.Income < 0 || rec.LoanAmount < 0 {
		return fmt.Errorf("negative income or loan amount")
	}
	if rec.CreditScore < 300 || rec.CreditScore > 850 {
		return fmt.Errorf("credit score %d is outside [300,850]", rec.CreditScore)
	}
	if rec.DTIRatio < 0 || rec.DTIRatio > 100 {
		return fmt.Errorf("dti ratio %v is outside [0,100]", rec.DTIRatio)
	}

	status, ok := domain.ParseEmploymentStatus(employment)
	if !ok {
		return fmt.Errorf("employment status %q is not employed or unemployed", employment)
	}
	rec.EmploymentStatus = status

	outcome, err := parseApproval(approval)
	if err != nil {
		return err
	}
	rec.Approval = outcome
	return nil
}
