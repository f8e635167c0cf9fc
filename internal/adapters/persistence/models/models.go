package models

import (
	"time"

	"gorm.io/gorm"

	"clinic-console/internal/core/domain"
)

// ============================================================
// Administrative divisions (province → municipality → barangay)
// ============================================================

// Province represents provinces table
type Province struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;size:10;not null" json:"code"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Province) TableName() string {
	return "provinces"
}

// ToRegion converts the row to the shape the backend stores
func (p *Province) ToRegion() domain.AdminRegion {
	return domain.AdminRegion{ProvinceID: p.Code, Name: p.Name}
}

// Municipality represents municipalities table
type Municipality struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProvinceCode string    `gorm:"index;size:10;not null" json:"province_code"`
	Code         string    `gorm:"uniqueIndex;size:10;not null" json:"code"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Municipality) TableName() string {
	return "municipalities"
}

// ToRegion converts the row to the shape the backend stores
func (m *Municipality) ToRegion() domain.AdminRegion {
	return domain.AdminRegion{ProvinceID: m.ProvinceCode, MunicipalityID: m.Code, Name: m.Name}
}

// Barangay represents barangays table
type Barangay struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProvinceCode     string    `gorm:"size:10;not null" json:"province_code"`
	MunicipalityCode string    `gorm:"index;size:10;not null" json:"municipality_code"`
	Code             string    `gorm:"uniqueIndex;size:12;not null" json:"code"`
	Name             string    `gorm:"size:120;not null" json:"name"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Barangay) TableName() string {
	return "barangays"
}

// ToRegion converts the row to the shape the backend stores
func (b *Barangay) ToRegion() domain.AdminRegion {
	return domain.AdminRegion{
		ProvinceID:     b.ProvinceCode,
		MunicipalityID: b.MunicipalityCode,
		BaranggayID:    b.Code,
		Name:           b.Name,
	}
}

// AutoMigrate runs auto migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Province{},
		&Municipality{},
		&Barangay{},
	)
}
