package address

import (
	"errors"

	"github.com/samber/lo"

	"clinic-console/internal/core/domain"
)

var (
	ErrNoProvince     = errors.New("select a province first")
	ErrNoMunicipality = errors.New("select a municipality first")
)

// State of the selector
type State int

const (
	NoProvince State = iota
	ProvinceSelected
	MunicipalitySelected
	BarangaySelected
)

// Level names the select that triggered a cascade
type Level string

const (
	LevelNone         Level = ""
	LevelProvince     Level = "province"
	LevelMunicipality Level = "municipality"
)

// Selector holds one address selection and the option sets that depend on it.
// Selecting a level always clears every level below it, even when the same
// value is selected again.
type Selector struct {
	dir Directory

	province     *domain.AdminRegion
	municipality *domain.AdminRegion
	barangay     *domain.AdminRegion

	municipalityOptions []domain.AdminRegion
	barangayOptions     []domain.AdminRegion
}

// NewSelector returns a selector in the NoProvince state
func NewSelector(dir Directory) *Selector {
	return &Selector{dir: dir}
}

// State reports the deepest selected level
func (s *Selector) State() State {
	switch {
	case s.barangay != nil:
		return BarangaySelected
	case s.municipality != nil:
		return MunicipalitySelected
	case s.province != nil:
		return ProvinceSelected
	default:
		return NoProvince
	}
}

func (s *Selector) Province() *domain.AdminRegion     { return s.province }
func (s *Selector) Municipality() *domain.AdminRegion { return s.municipality }
func (s *Selector) Barangay() *domain.AdminRegion     { return s.barangay }

// ProvinceOptions lists every province. A selected province the directory
// does not list is included so it still renders as selected.
func (s *Selector) ProvinceOptions() []domain.AdminRegion {
	return withSelected(s.dir.Provinces(), s.province, byProvinceID)
}

// MunicipalityOptions lists municipalities of the selected province
func (s *Selector) MunicipalityOptions() []domain.AdminRegion {
	return withSelected(s.municipalityOptions, s.municipality, byMunicipalityID)
}

// BarangayOptions lists barangays of the selected municipality
func (s *Selector) BarangayOptions() []domain.AdminRegion {
	return withSelected(s.barangayOptions, s.barangay, byBarangayID)
}

// SelectProvince sets the province, recomputes municipality options and
// clears municipality and barangay
func (s *Selector) SelectProvince(p domain.AdminRegion) {
	s.province = &p
	s.municipalityOptions = s.dir.Municipalities(p.ProvinceID)
	s.municipality = nil
	s.barangay = nil
	s.barangayOptions = nil
}

// SelectMunicipality sets the municipality, recomputes barangay options and
// clears barangay
func (s *Selector) SelectMunicipality(m domain.AdminRegion) error {
	if s.province == nil {
		return ErrNoProvince
	}
	if m.ProvinceID == "" {
		m.ProvinceID = s.province.ProvinceID
	}
	s.municipality = &m
	s.barangayOptions = s.dir.Barangays(s.province.ProvinceID, m.MunicipalityID)
	s.barangay = nil
	return nil
}

// SelectBarangay sets the barangay
func (s *Selector) SelectBarangay(b domain.AdminRegion) error {
	if s.municipality == nil {
		return ErrNoMunicipality
	}
	s.barangay = &b
	return nil
}

// Hydrate restores a persisted selection. Stored names are trusted and no
// level is cleared, but the child option sets are computed.
func (s *Selector) Hydrate(province, municipality, barangay *domain.AdminRegion) {
	s.province = clone(province)
	s.municipality = clone(municipality)
	s.barangay = clone(barangay)
	s.municipalityOptions = nil
	s.barangayOptions = nil

	if s.province != nil {
		s.municipalityOptions = s.dir.Municipalities(s.province.ProvinceID)
	}
	if s.municipality != nil {
		provinceID := s.municipality.ProvinceID
		if provinceID == "" && s.province != nil {
			provinceID = s.province.ProvinceID
		}
		s.barangayOptions = s.dir.Barangays(provinceID, s.municipality.MunicipalityID)
	}
}

// Pick is a submitted selection: the ids of the three selects and the names
// the form rendered for them.
type Pick struct {
	ProvinceID     string
	MunicipalityID string
	BarangayID     string

	Province     string
	Municipality string
	Barangay     string
}

// Replay rebuilds the selection from a submitted pick. cascade names the
// select the user just changed; that level is selected through its transition
// so the levels below it are cleared. An id the directory lists under another
// parent is dropped. An id the directory does not list at all is kept under
// its submitted name, so records outside the dataset survive an edit.
func (s *Selector) Replay(pk Pick, cascade Level) {
	switch cascade {
	case LevelProvince:
		s.Hydrate(nil, nil, nil)
		if p, ok := s.resolve(s.ProvinceOptions(), pk.ProvinceID, pk.Province, byProvinceID, provinceOf); ok {
			s.SelectProvince(p)
		}
	case LevelMunicipality:
		s.restore(Pick{ProvinceID: pk.ProvinceID, Province: pk.Province})
		if s.province == nil {
			return
		}
		if m, ok := s.resolve(s.municipalityOptions, pk.MunicipalityID, pk.Municipality, byMunicipalityID, s.municipalityOf); ok {
			_ = s.SelectMunicipality(m)
		}
	default:
		s.restore(pk)
	}
}

// IDs returns the selected ids, empty for unselected levels
func (s *Selector) IDs() (provinceID, municipalityID, barangayID string) {
	if s.province != nil {
		provinceID = s.province.ProvinceID
	}
	if s.municipality != nil {
		municipalityID = s.municipality.MunicipalityID
	}
	if s.barangay != nil {
		barangayID = s.barangay.BaranggayID
	}
	return
}

func (s *Selector) restore(pk Pick) {
	s.Hydrate(nil, nil, nil)

	p, ok := s.resolve(s.ProvinceOptions(), pk.ProvinceID, pk.Province, byProvinceID, provinceOf)
	if !ok {
		return
	}
	s.province = &p
	s.municipalityOptions = s.dir.Municipalities(p.ProvinceID)

	m, ok := s.resolve(s.municipalityOptions, pk.MunicipalityID, pk.Municipality, byMunicipalityID, s.municipalityOf)
	if !ok {
		return
	}
	s.municipality = &m
	s.barangayOptions = s.dir.Barangays(p.ProvinceID, m.MunicipalityID)

	if b, ok := s.resolve(s.barangayOptions, pk.BarangayID, pk.Barangay, byBarangayID, s.barangayOf); ok {
		s.barangay = &b
	}
}

// resolve finds id among options, or builds a region for an id the directory
// does not know at all
func (s *Selector) resolve(options []domain.AdminRegion, id, name string, key func(domain.AdminRegion) string, build func(string) domain.AdminRegion) (domain.AdminRegion, bool) {
	if r, ok := findBy(options, id, key); ok {
		return r, true
	}
	if id == "" || s.dir.Knows(id) {
		return domain.AdminRegion{}, false
	}
	r := build(id)
	r.Name = lo.Ternary(name != "", name, id)
	return r, true
}

func provinceOf(id string) domain.AdminRegion {
	return domain.AdminRegion{ProvinceID: id}
}

func (s *Selector) municipalityOf(id string) domain.AdminRegion {
	return domain.AdminRegion{ProvinceID: s.province.ProvinceID, MunicipalityID: id}
}

func (s *Selector) barangayOf(id string) domain.AdminRegion {
	return domain.AdminRegion{ProvinceID: s.province.ProvinceID, MunicipalityID: s.municipality.MunicipalityID, BaranggayID: id}
}

func byProvinceID(r domain.AdminRegion) string     { return r.ProvinceID }
func byMunicipalityID(r domain.AdminRegion) string { return r.MunicipalityID }
func byBarangayID(r domain.AdminRegion) string     { return r.BaranggayID }

func findBy(options []domain.AdminRegion, id string, key func(domain.AdminRegion) string) (domain.AdminRegion, bool) {
	if id == "" {
		return domain.AdminRegion{}, false
	}
	return lo.Find(options, func(r domain.AdminRegion) bool { return key(r) == id })
}

// withSelected returns options with sel in place of its directory entry, or
// appended when the directory does not list it
func withSelected(options []domain.AdminRegion, sel *domain.AdminRegion, key func(domain.AdminRegion) string) []domain.AdminRegion {
	if sel == nil || key(*sel) == "" {
		return options
	}
	_, i, ok := lo.FindIndexOf(options, func(r domain.AdminRegion) bool { return key(r) == key(*sel) })
	if !ok {
		return append(append([]domain.AdminRegion(nil), options...), *sel)
	}
	out := append([]domain.AdminRegion(nil), options...)
	out[i] = *sel
	return out
}

func clone(r *domain.AdminRegion) *domain.AdminRegion {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
