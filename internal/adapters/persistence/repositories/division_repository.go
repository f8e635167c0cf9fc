package repositories

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"clinic-console/internal/adapters/persistence/models"
	"clinic-console/internal/core/address"
	"clinic-console/internal/core/domain"
)

const seedBatchSize = 500

// divisionRepository implements DivisionRepository interface
type divisionRepository struct {
	db *gorm.DB
}

// NewDivisionRepository creates a new division repository
func NewDivisionRepository(db *gorm.DB) DivisionRepository {
	return &divisionRepository{db: db}
}

// Count returns the number of stored provinces
func (r *divisionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Province{}).Count(&n).Error
	return n, err
}

// LoadDataset reads every division level
func (r *divisionRepository) LoadDataset(ctx context.Context) (address.Dataset, error) {
	db := r.db.WithContext(ctx)

	var provinces []*models.Province
	if err := db.Order("name").Find(&provinces).Error; err != nil {
		return address.Dataset{}, fmt.Errorf("load provinces: %w", err)
	}
	var municipalities []*models.Municipality
	if err := db.Order("name").Find(&municipalities).Error; err != nil {
		return address.Dataset{}, fmt.Errorf("load municipalities: %w", err)
	}
	var barangays []*models.Barangay
	if err := db.Order("name").Find(&barangays).Error; err != nil {
		return address.Dataset{}, fmt.Errorf("load barangays: %w", err)
	}

	return address.Dataset{
		Provinces:      lo.Map(provinces, func(p *models.Province, _ int) domain.AdminRegion { return p.ToRegion() }),
		Municipalities: lo.Map(municipalities, func(m *models.Municipality, _ int) domain.AdminRegion { return m.ToRegion() }),
		Barangays:      lo.Map(barangays, func(b *models.Barangay, _ int) domain.AdminRegion { return b.ToRegion() }),
	}, nil
}

// Seed inserts the dataset in one transaction
func (r *divisionRepository) Seed(ctx context.Context, ds address.Dataset) error {
	provinces := lo.Map(ds.Provinces, func(p domain.AdminRegion, _ int) *models.Province {
		return &models.Province{Code: p.ProvinceID, Name: p.Name}
	})
	municipalities := lo.Map(ds.Municipalities, func(m domain.AdminRegion, _ int) *models.Municipality {
		return &models.Municipality{ProvinceCode: m.ProvinceID, Code: m.MunicipalityID, Name: m.Name}
	})
	barangays := lo.Map(ds.Barangays, func(b domain.AdminRegion, _ int) *models.Barangay {
		return &models.Barangay{ProvinceCode: b.ProvinceID, MunicipalityCode: b.MunicipalityID, Code: b.BaranggayID, Name: b.Name}
	})

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(provinces) > 0 {
			if err := tx.CreateInBatches(provinces, seedBatchSize).Error; err != nil {
				return fmt.Errorf("seed provinces: %w", err)
			}
		}
		if len(municipalities) > 0 {
			if err := tx.CreateInBatches(municipalities, seedBatchSize).Error; err != nil {
				return fmt.Errorf("seed municipalities: %w", err)
			}
		}
		if len(barangays) > 0 {
			if err := tx.CreateInBatches(barangays, seedBatchSize).Error; err != nil {
				return fmt.Errorf("seed barangays: %w", err)
			}
		}
		return nil
	})
}
