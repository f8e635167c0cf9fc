package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"clinic-console/internal/adapters/persistence/repositories"
	"clinic-console/internal/core/address"
)

// Seeder handles database seeding
type Seeder struct {
	divisions repositories.DivisionRepository
	logger    *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(divisions repositories.DivisionRepository, logger *zap.Logger) *Seeder {
	return &Seeder{divisions: divisions, logger: logger}
}

// Run seeds the division tables from ds when they are empty
func (s *Seeder) Run(ctx context.Context, ds address.Dataset) error {
	count, err := s.divisions.Count(ctx)
	if err != nil {
		return fmt.Errorf("count divisions: %w", err)
	}
	if count > 0 {
		s.logger.Debug("division tables already seeded", zap.Int64("provinces", count))
		return nil
	}

	if err := s.divisions.Seed(ctx, ds); err != nil {
		return err
	}
	s.logger.Info("division tables seeded",
		zap.Int("provinces", len(ds.Provinces)),
		zap.Int("municipalities", len(ds.Municipalities)),
		zap.Int("barangays", len(ds.Barangays)),
	)
	return nil
}
