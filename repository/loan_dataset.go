package repository

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"loan-advisor/domain"
)

// LoanDataset holds the in-memory snapshot of the historical loan records.
// The snapshot is replaced wholesale on Load and never modified in place.
type LoanDataset struct {
	source LoanDataSource

	mu          sync.RWMutex
	records     []domain.LoanRecord
	fingerprint string
	loaded      bool
}

func NewLoanDataset(source LoanDataSource) *LoanDataset {
	return &LoanDataset{source: source}
}

// Load reads the source again and replaces the snapshot. On failure the
// previous snapshot is kept.
func (d *LoanDataset) Load(ctx context.Context) ([]domain.LoanRecord, error) {
	records, err := d.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	fp := fingerprint(records)

	d.mu.Lock()
	d.records = records
	d.fingerprint = fp
	d.loaded = true
	d.mu.Unlock()

	return copyRecords(records), nil
}

// Records returns a copy of the full table.
func (d *LoanDataset) Records() ([]domain.LoanRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.loaded {
		return nil, fmt.Errorf("%w: dataset %s not loaded", domain.ErrDataUnavailable, d.source.Name())
	}
	return copyRecords(d.records), nil
}

// Sample returns the first n records in source order, or all of them when
// the dataset is smaller.
func (d *LoanDataset) Sample(n int) ([]domain.LoanRecord, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: sample size %d is negative", domain.ErrInvalidArgument, n)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.loaded {
		return nil, fmt.Errorf("%w: dataset %s not loaded", domain.ErrDataUnavailable, d.source.Name())
	}
	if n > len(d.records) {
		n = len(d.records)
	}
	return copyRecords(d.records[:n]), nil
}

// Fingerprint identifies the loaded snapshot; empty before the first load.
func (d *LoanDataset) Fingerprint() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fingerprint
}

// Size reports the number of loaded records and whether a load has succeeded.
func (d *LoanDataset) Size() (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records), d.loaded
}

func (d *LoanDataset) SourceName() string {
	return d.source.Name()
}

func copyRecords(in []domain.LoanRecord) []domain.LoanRecord {
	out := make([]domain.LoanRecord, len(in))
	copy(out, in)
	return out
}

func fingerprint(records []domain.LoanRecord) string {
	h := xxhash.New()
	var buf [8]byte

	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}

	for _, r := range records {
		writeFloat(r.Income)
		writeFloat(float64(r.CreditScore))
		writeFloat(r.LoanAmount)
		writeFloat(r.DTIRatio)
		_, _ = h.WriteString(string(r.EmploymentStatus))
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(string(r.Approval))
		_, _ = h.WriteString("\n")
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
