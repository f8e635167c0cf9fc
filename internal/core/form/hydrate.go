package form

import (
	"bytes"
	"encoding/json"
	"fmt"

	"clinic-console/internal/core/domain"
)

// Address record keys
const (
	sourceProvince     = "stateOrProvince"
	sourceMunicipality = "cityOrTown"
	sourceBarangay     = "baranggay"
)

// Record is one backend record, decoded key by key
type Record map[string]json.RawMessage

// DecodeRecord decodes a JSON object
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// String returns a scalar value as text, "" for null or missing keys
func (r Record) String(key string) string {
	return scalar(r[key])
}

// Strings returns an array value as text. Object elements yield their pluck key.
func (r Record) Strings(key, pluck string) []string {
	var elems []json.RawMessage
	if err := json.Unmarshal(r[key], &elems); err != nil {
		return nil
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if pluck != "" && bytes.HasPrefix(bytes.TrimSpace(e), []byte("{")) {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(e, &obj); err == nil {
				e = obj[pluck]
			}
		}
		if v := scalar(e); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Region decodes an embedded administrative region, nil when absent
func (r Record) Region(key string) *domain.AdminRegion {
	raw, ok := r[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	var region domain.AdminRegion
	if err := json.Unmarshal(raw, &region); err != nil {
		return nil
	}
	return &region
}

// Hydrate applies a fetched record to the form and enables it. Password
// fields are never hydrated.
func (s *State) Hydrate(rec Record) {
	for _, f := range s.Fields {
		key := f.Source
		if key == "" {
			key = f.Name
		}

		switch f.Kind {
		case KindPassword:
		case KindAddress:
			p, m, b := rec.Region(sourceProvince), rec.Region(sourceMunicipality), rec.Region(sourceBarangay)
			if s.Address != nil {
				s.Address.Hydrate(p, m, b)
			}
			s.Values.Set(KeyProvince, regionID(p, func(r *domain.AdminRegion) string { return r.ProvinceID }))
			s.Values.Set(KeyMunicipality, regionID(m, func(r *domain.AdminRegion) string { return r.MunicipalityID }))
			s.Values.Set(KeyBarangay, regionID(b, func(r *domain.AdminRegion) string { return r.BaranggayID }))
		case KindFile:
			s.Assets[f.Name] = &Asset{Filename: rec.String(key)}
		case KindMultiSelect:
			s.SetAll(f.Name, rec.Strings(key, f.Pluck))
		case KindDate:
			v := rec.String(key)
			if len(v) > len("2006-01-02") {
				v = v[:len("2006-01-02")]
			}
			s.Set(f.Name, v)
		default:
			s.Set(f.Name, rec.String(key))
		}
	}
	s.MarkHydrated()
}

func regionID(r *domain.AdminRegion, id func(*domain.AdminRegion) string) string {
	if r == nil {
		return ""
	}
	return id(r)
}

func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}
