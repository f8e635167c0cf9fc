// Package address implements the province → municipality → barangay
// selector used by patient and store address forms.
package address

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"clinic-console/internal/core/domain"
)

//go:embed data/divisions.json
var embeddedDivisions []byte

// Directory answers synchronous lookups over the administrative divisions.
// An unknown parent yields an empty result, never an error.
type Directory interface {
	Provinces() []domain.AdminRegion
	Municipalities(provinceID string) []domain.AdminRegion
	Barangays(provinceID, municipalityID string) []domain.AdminRegion
	// Knows reports whether any province, municipality or barangay carries id
	Knows(id string) bool
}

// Dataset is the flat division reference data
type Dataset struct {
	Provinces      []domain.AdminRegion `json:"provinces"`
	Municipalities []domain.AdminRegion `json:"municipalities"`
	Barangays      []domain.AdminRegion `json:"baranggays"`
}

// EmbeddedDataset returns the division data shipped with the binary
func EmbeddedDataset() (Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(embeddedDivisions, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode embedded divisions: %w", err)
	}
	return ds, nil
}

// LoadDataset reads a division file in the embedded layout. A JSON export of
// the full PSGC tables (provinces, municipalities and baranggays keyed by
// provinceId, municipalityId and baranggayId) loads as is.
func LoadDataset(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read divisions file: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode divisions file %s: %w", path, err)
	}
	if len(ds.Provinces) == 0 {
		return Dataset{}, fmt.Errorf("divisions file %s has no provinces", path)
	}
	return ds, nil
}

type municipalityKey struct {
	province     string
	municipality string
}

// Index is an in-memory Directory
type Index struct {
	provinces      []domain.AdminRegion
	municipalities map[string][]domain.AdminRegion
	barangays      map[municipalityKey][]domain.AdminRegion
	ids            map[string]struct{}
}

// NewIndex groups a dataset by parent and sorts each group by name
func NewIndex(ds Dataset) *Index {
	idx := &Index{
		provinces:      append([]domain.AdminRegion(nil), ds.Provinces...),
		municipalities: make(map[string][]domain.AdminRegion),
		barangays:      make(map[municipalityKey][]domain.AdminRegion),
		ids:            make(map[string]struct{}),
	}
	for _, p := range ds.Provinces {
		idx.ids[p.ProvinceID] = struct{}{}
	}
	for _, m := range ds.Municipalities {
		idx.municipalities[m.ProvinceID] = append(idx.municipalities[m.ProvinceID], m)
		idx.ids[m.MunicipalityID] = struct{}{}
	}
	for _, b := range ds.Barangays {
		k := municipalityKey{b.ProvinceID, b.MunicipalityID}
		idx.barangays[k] = append(idx.barangays[k], b)
		idx.ids[b.BaranggayID] = struct{}{}
	}

	sortByName(idx.provinces)
	for _, ms := range idx.municipalities {
		sortByName(ms)
	}
	for _, bs := range idx.barangays {
		sortByName(bs)
	}
	return idx
}

// Provinces implements Directory
func (i *Index) Provinces() []domain.AdminRegion {
	return append([]domain.AdminRegion(nil), i.provinces...)
}

// Municipalities implements Directory
func (i *Index) Municipalities(provinceID string) []domain.AdminRegion {
	return append([]domain.AdminRegion(nil), i.municipalities[provinceID]...)
}

// Barangays implements Directory
func (i *Index) Barangays(provinceID, municipalityID string) []domain.AdminRegion {
	return append([]domain.AdminRegion(nil), i.barangays[municipalityKey{provinceID, municipalityID}]...)
}

// Knows implements Directory
func (i *Index) Knows(id string) bool {
	_, ok := i.ids[id]
	return ok
}

func sortByName(rs []domain.AdminRegion) {
	sort.SliceStable(rs, func(a, b int) bool { return rs[a].Name < rs[b].Name })
}
