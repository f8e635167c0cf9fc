package form

import (
	"strconv"

	"github.com/samber/lo"

	"clinic-console/internal/core/domain"
)

// Option is one choice of a select field
type Option struct {
	Value string
	Label string
}

// OptionSet is a possibly not yet loaded list of options. Selected values
// must not be resolved against a set that has not loaded, or the field would
// silently render empty.
type OptionSet struct {
	Loaded  bool
	Options []Option
}

// Loaded returns a loaded option set
func Loaded(options []Option) OptionSet {
	return OptionSet{Loaded: true, Options: options}
}

// Resolve returns the options whose value is in values, in option order
func (o OptionSet) Resolve(values []string) ([]Option, error) {
	if !o.Loaded {
		return nil, domain.ErrOptionsNotLoaded
	}
	return lo.Filter(o.Options, func(opt Option, _ int) bool {
		return lo.Contains(values, opt.Value)
	}), nil
}

// Label returns the label of value, or value itself when unknown
func (o OptionSet) Label(value string) string {
	if opt, ok := lo.Find(o.Options, func(opt Option) bool { return opt.Value == value }); ok {
		return opt.Label
	}
	return value
}

// ServiceCategoryOptions is the static category enumeration as options
func ServiceCategoryOptions() OptionSet {
	return Loaded(lo.Map(domain.ServiceCategories, func(c domain.ServiceCategory, _ int) Option {
		return Option{Value: strconv.Itoa(c.ID), Label: c.Name}
	}))
}

// FileTypeOptions is the static file type table as options
func FileTypeOptions() OptionSet {
	return Loaded(lo.Map(domain.FileTypes, func(ft domain.FileType, _ int) Option {
		return Option{Value: strconv.Itoa(ft.ID), Label: ft.Name + " (" + ft.Ext + ")"}
	}))
}
