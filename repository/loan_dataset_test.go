package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-advisor/domain"
)

type stubSource struct {
	records []domain.LoanRecord
	err     error
	calls   int
}

func (s *stubSource) Load(context.Context) ([]domain.LoanRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.LoanRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *stubSource) Name() string { return "stub" }

func makeRecords(n int) []domain.LoanRecord {
	out := make([]domain.LoanRecord, n)
	for i := range out {
		out[i] = domain.LoanRecord{
			Income:           float64(40000 + i*1000),
			CreditScore:      600 + i,
			LoanAmount:       10000,
			DTIRatio:         25,
			EmploymentStatus: domain.Employed,
			Approval:         domain.Approved,
			Purpose:          fmt.Sprintf("purpose-%d", i),
		}
	}
	return out
}

func TestLoanDataset_NotLoaded(t *testing.T) {
	ds := NewLoanDataset(&stubSource{records: makeRecords(3)})

	_, err := ds.Records()
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	_, err = ds.Sample(2)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Empty(t, ds.Fingerprint())
}

func TestLoanDataset_Sample(t *testing.T) {
	ds := NewLoanDataset(&stubSource{records: makeRecords(5)})
	_, err := ds.Load(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"zero", 0, 0},
		{"fewer than available", 3, 3},
		{"exactly available", 5, 5},
		{"more than available", 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ds.Sample(tt.n)
			require.NoError(t, err)
			require.Len(t, got, tt.want)
			for i, rec := range got {
				assert.Equal(t, fmt.Sprintf("purpose-%d", i), rec.Purpose, "source order")
			}
		})
	}

	_, err = ds.Sample(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestLoanDataset_ReturnsCopies(t *testing.T) {
	ds := NewLoanDataset(&stubSource{records: makeRecords(2)})
	_, err := ds.Load(context.Background())
	require.NoError(t, err)

	recs, err := ds.Records()
	require.NoError(t, err)
	recs[0].Income = -1

	again, err := ds.Records()
	require.NoError(t, err)
	assert.Equal(t, 40000.0, again[0].Income)
}

func TestLoanDataset_ReloadAndFingerprint(t *testing.T) {
	src := &stubSource{records: makeRecords(2)}
	ds := NewLoanDataset(src)

	_, err := ds.Load(context.Background())
	require.NoError(t, err)
	first := ds.Fingerprint()
	require.NotEmpty(t, first)

	_, err = ds.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, ds.Fingerprint(), "same data, same fingerprint")
	assert.Equal(t, 2, src.calls)

	src.records = makeRecords(3)
	_, err = ds.Load(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, ds.Fingerprint())

	recs, err := ds.Records()
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestLoanDataset_FailedReloadKeepsSnapshot(t *testing.T) {
	src := &stubSource{records: makeRecords(2)}
	ds := NewLoanDataset(src)
	_, err := ds.Load(context.Background())
	require.NoError(t, err)

	src.err = fmt.Errorf("%w: gone", domain.ErrDataUnavailable)
	_, err = ds.Load(context.Background())
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))

	recs, err := ds.Records()
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
