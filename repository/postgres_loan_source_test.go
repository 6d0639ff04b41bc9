package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"math"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-advisor/domain"
)

var loanColumns = []string{"income", "credit_score", "loan_amount", "dti_ratio", "employment_status", "approval", "purpose"}

const expectedQuery = `SELECT income, credit_score, loan_amount, dti_ratio, employment_status, approval, COALESCE(purpose, '') FROM loan_records ORDER BY id`

func newMockSource(t *testing.T) (*PostgresLoanSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src, err := NewPostgresLoanSource(db, "loan_records")
	require.NoError(t, err)
	return src, mock
}

func TestPostgresLoanSource_Load(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery(regexp.QuoteMeta(expectedQuery)).WillReturnRows(
		sqlmock.NewRows(loanColumns).
			AddRow(85000.0, 760, 20000.0, 15.0, "Employed", "Approved", "Home").
			AddRow(40000.0, 640, 30000.0, 55.0, "unemployed", "Rejected", ""),
	)

	recs, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.Employed, recs[0].EmploymentStatus)
	assert.Equal(t, "Home", recs[0].Purpose)
	assert.Equal(t, domain.Rejected, recs[1].Approval)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoanSource_QueryError(t *testing.T) {
	src, mock := newMockSource(t)
	mock.ExpectQuery(regexp.QuoteMeta(expectedQuery)).WillReturnError(errors.New("connection refused"))

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoanSource_BadRow(t *testing.T) {
	src, mock := newMockSource(t)
	mock.ExpectQuery(regexp.QuoteMeta(expectedQuery)).WillReturnRows(
		sqlmock.NewRows(loanColumns).AddRow(85000.0, 760, 20000.0, 15.0, "employed", "Maybe", ""),
	)

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestPostgresLoanSource_NonFiniteValues(t *testing.T) {
	rows := [][]interface{}{
		{math.NaN(), 760, 20000.0, 15.0, "employed", "Approved", ""},
		{85000.0, 760, math.Inf(1), 15.0, "employed", "Approved", ""},
		{85000.0, 760, 20000.0, math.NaN(), "employed", "Rejected", ""},
	}

	for _, row := range rows {
		src, mock := newMockSource(t)
		values := make([]driver.Value, len(row))
		for i, v := range row {
			values[i] = v
		}
		mock.ExpectQuery(regexp.QuoteMeta(expectedQuery)).WillReturnRows(
			sqlmock.NewRows(loanColumns).AddRow(values...),
		)

		_, err := src.Load(context.Background())
		assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	}
}

func TestNewPostgresLoanSource_RejectsBadTableName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewPostgresLoanSource(db, "loans; DROP TABLE users")
	assert.Error(t, err)

	src, err := NewPostgresLoanSource(db, "public.loan_records")
	require.NoError(t, err)
	assert.Equal(t, "postgres:public.loan_records", src.Name())
}
