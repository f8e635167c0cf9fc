package handlers

import (
	"github.com/samber/lo"

	"clinic-console/internal/adapters/http/views"
	"clinic-console/internal/core/address"
	"clinic-console/internal/core/domain"
	"clinic-console/internal/core/form"
)

// PreviewPath is the route previews are served from
const PreviewPath = "/previews/"

func fieldView(st *form.State, f form.Field) views.Field {
	v := views.Field{
		Name:     f.Name,
		Label:    f.Label,
		Kind:     string(f.Kind),
		Required: f.Required,
		Value:    st.Get(f.Name),
		Error:    st.Error(f.Name),
		Accept:   f.Accept,
	}

	switch f.Kind {
	case form.KindSelect, form.KindMultiSelect:
		// selections are only resolved against a loaded set
		set := st.Options(f.Options)
		selected, err := set.Resolve(st.All(f.Name))
		if err != nil {
			return v
		}
		v.Options = lo.Map(set.Options, func(o form.Option, _ int) views.Option {
			return views.Option{Value: o.Value, Label: o.Label, Selected: lo.Contains(selected, o)}
		})
	case form.KindFile:
		a := st.Asset(f.Name)
		av := &views.Asset{Field: f.Name, Filename: a.Filename, PreviewID: a.PreviewID}
		if a.PreviewID != "" {
			av.PreviewURL = PreviewPath + a.PreviewID
		}
		if a.IsLocal() {
			av.Local = true
			av.LocalName = a.Local.Filename
		}
		v.Asset = av
	case form.KindAddress:
		if st.Address != nil {
			v.Address = addressView(st)
		}
	}
	return v
}

func addressView(st *form.State) *views.Address {
	sel := st.Address
	province, municipality, barangay := sel.IDs()
	return &views.Address{
		Province: views.Region{
			Name:     form.KeyProvince,
			Label:    "Province",
			Cascade:  string(address.LevelProvince),
			Error:    st.Error(form.KeyProvince),
			Selected: regionName(sel.Province()),
			Options:  regionOptions(sel.ProvinceOptions(), province, func(r domain.AdminRegion) string { return r.ProvinceID }),
		},
		Municipality: views.Region{
			Name:     form.KeyMunicipality,
			Label:    "Municipality",
			Cascade:  string(address.LevelMunicipality),
			Disabled: sel.State() < address.ProvinceSelected,
			Error:    st.Error(form.KeyMunicipality),
			Selected: regionName(sel.Municipality()),
			Options:  regionOptions(sel.MunicipalityOptions(), municipality, func(r domain.AdminRegion) string { return r.MunicipalityID }),
		},
		Barangay: views.Region{
			Name:     form.KeyBarangay,
			Label:    "Barangay",
			Disabled: sel.State() < address.MunicipalitySelected,
			Error:    st.Error(form.KeyBarangay),
			Selected: regionName(sel.Barangay()),
			Options:  regionOptions(sel.BarangayOptions(), barangay, func(r domain.AdminRegion) string { return r.BaranggayID }),
		},
	}
}

func regionName(r *domain.AdminRegion) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func regionOptions(regions []domain.AdminRegion, selected string, id func(domain.AdminRegion) string) []views.Option {
	return lo.Map(regions, func(r domain.AdminRegion, _ int) views.Option {
		return views.Option{Value: id(r), Label: r.Name, Selected: id(r) == selected}
	})
}
