// Package form holds the state of one create or edit form: field values,
// per-field validation errors, dependent option sets, binary assets and the
// payload sent to the backend on submit.
package form

import (
	"net/url"
	"strings"

	"github.com/samber/lo"

	"clinic-console/internal/core/address"
	"clinic-console/internal/core/domain"
)

// Mode is supplied by the route
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Kind selects how a field is rendered and encoded
type Kind string

const (
	KindText        Kind = "text"
	KindEmail       Kind = "email"
	KindPassword    Kind = "password"
	KindDate        Kind = "date"
	KindNumber      Kind = "number"
	KindTextarea    Kind = "textarea"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindFile        Kind = "file"
	KindAddress     Kind = "address"
)

// Address payload keys
const (
	KeyProvince     = "province"
	KeyMunicipality = "municipality"
	KeyBarangay     = "baranggay"
)

// Field declares one form input
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool

	// Options names the option set of select fields
	Options string
	// AssetDir is the FILE_UPLOADS_URL subdirectory persisted files live in
	AssetDir string
	Accept   string

	// OmitEmpty leaves the field out of edit payloads when it has no value
	OmitEmpty bool
	// Numeric encodes JSON values as numbers when they parse as integers
	Numeric bool
	// IndexedKey is a fmt pattern for multipart keys of multi-valued fields,
	// e.g. "roles[%d][id]". Without it the key is repeated.
	IndexedKey string

	// Source is the record key the field hydrates from, Name when empty
	Source string
	// Pluck picks one key out of object elements of multi-valued fields
	Pluck string
}

// IsAsset reports whether the field carries a binary file
func (f Field) IsAsset() bool { return f.Kind == KindFile }

// IsMulti reports whether the field holds several values
func (f Field) IsMulti() bool { return f.Kind == KindMultiSelect }

// State is one form instance
type State struct {
	Mode   Mode
	Fields []Field
	Values url.Values
	Errors map[string]string
	Assets map[string]*Asset

	// Scope owns the previews created while this form is open
	Scope string

	// Address is set for forms with a KindAddress field
	Address *address.Selector

	options  map[string]OptionSet
	hydrated bool
}

// New returns an empty form. Create forms are usable immediately; edit forms
// stay disabled until MarkHydrated.
func New(mode Mode, fields []Field) *State {
	s := &State{
		Mode:    mode,
		Fields:  fields,
		Values:  url.Values{},
		Errors:  make(map[string]string),
		Assets:  make(map[string]*Asset),
		options: make(map[string]OptionSet),
	}
	for _, f := range fields {
		if f.IsAsset() {
			s.Assets[f.Name] = &Asset{}
		}
	}
	s.hydrated = mode == ModeCreate
	return s
}

// Field returns the declaration of name
func (s *State) Field(name string) (Field, bool) {
	return lo.Find(s.Fields, func(f Field) bool { return f.Name == name })
}

// Disabled is true while an edit form waits for its record
func (s *State) Disabled() bool { return !s.hydrated }

// MarkHydrated enables the form once its record has been applied
func (s *State) MarkHydrated() { s.hydrated = true }

// Get returns the first value of a field
func (s *State) Get(name string) string { return s.Values.Get(name) }

// All returns every value of a field
func (s *State) All(name string) []string { return s.Values[name] }

// Set replaces a field value
func (s *State) Set(name, value string) { s.Values.Set(name, value) }

// SetAll replaces the values of a multi-valued field
func (s *State) SetAll(name string, values []string) {
	s.Values[name] = append([]string(nil), values...)
}

// Bind copies the submitted values of declared non-asset fields. Address
// values come from the selector when one is attached, so replay it first.
func (s *State) Bind(submitted url.Values) {
	for _, f := range s.Fields {
		switch {
		case f.IsAsset():
		case f.Kind == KindAddress:
			p, m, b := submitted.Get(KeyProvince), submitted.Get(KeyMunicipality), submitted.Get(KeyBarangay)
			if s.Address != nil {
				p, m, b = s.Address.IDs()
			}
			s.Values.Set(KeyProvince, p)
			s.Values.Set(KeyMunicipality, m)
			s.Values.Set(KeyBarangay, b)
		case f.IsMulti():
			s.SetAll(f.Name, lo.Filter(submitted[f.Name], func(v string, _ int) bool { return v != "" }))
		case f.Kind == KindPassword:
			s.Values.Set(f.Name, submitted.Get(f.Name))
		default:
			s.Values.Set(f.Name, strings.TrimSpace(submitted.Get(f.Name)))
		}
	}
}

// ApplyValidationErrors sets the error slot of every declared field named in
// errs. Undeclared names and slots of fields not named are left untouched.
// It returns the messages that matched no declared field.
func (s *State) ApplyValidationErrors(errs map[string]string) map[string]string {
	unmatched := make(map[string]string)
	for name, msg := range errs {
		if s.declares(name) {
			s.Errors[name] = msg
		} else {
			unmatched[name] = msg
		}
	}
	return unmatched
}

// SetError sets one error slot
func (s *State) SetError(name, msg string) {
	if s.declares(name) {
		s.Errors[name] = msg
	}
}

// Error returns the error of a field, or ""
func (s *State) Error(name string) string { return s.Errors[name] }

// HasErrors reports whether any slot is populated
func (s *State) HasErrors() bool { return len(s.Errors) > 0 }

// ClearErrors empties every slot
func (s *State) ClearErrors() { s.Errors = make(map[string]string) }

// SetOptions stores a loaded option set
func (s *State) SetOptions(name string, set OptionSet) { s.options[name] = set }

// Options returns the option set of name; unloaded sets report Loaded=false
func (s *State) Options(name string) OptionSet { return s.options[name] }

// Selected resolves the values of a select field against its option set
func (s *State) Selected(name string) ([]Option, error) {
	f, ok := s.Field(name)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	return s.options[f.Options].Resolve(s.Values[name])
}

// Asset returns the asset slot of a file field
func (s *State) Asset(name string) *Asset { return s.Assets[name] }

// HasAssetFields reports whether the form must be sent as multipart
func (s *State) HasAssetFields() bool {
	return lo.SomeBy(s.Fields, func(f Field) bool { return f.IsAsset() })
}

func (s *State) declares(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
		if f.Kind == KindAddress && (name == KeyProvince || name == KeyMunicipality || name == KeyBarangay) {
			return true
		}
	}
	return false
}
