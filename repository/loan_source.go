package repository

import (
	"context"

	"loan-advisor/domain"
)

// LoanDataSource reads the full historical dataset in source order.
// Implementations wrap every failure in domain.ErrDataUnavailable.
type LoanDataSource interface {
	Load(ctx context.Context) ([]domain.LoanRecord, error)
	Name() string
}
