package repositories

import (
	"context"

	"clinic-console/internal/core/address"
)

// DivisionRepository defines division repository interface
type DivisionRepository interface {
	Count(ctx context.Context) (int64, error)
	LoadDataset(ctx context.Context) (address.Dataset, error)
	Seed(ctx context.Context, ds address.Dataset) error
}
