package form

import (
	"fmt"
	"net/url"
	"strconv"
)

// LocalFile is a file chosen in this form session
type LocalFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Asset is the state of a photo or logo field. Filename is the persisted
// backend reference; Local is set once the user picks a new file. PreviewID
// addresses whichever of the two is displayed.
type Asset struct {
	Filename  string
	Local     *LocalFile
	PreviewID string
}

// IsLocal reports whether the asset must be uploaded on submit
func (a *Asset) IsLocal() bool { return a != nil && a.Local != nil }

// Choose replaces the asset with a newly picked file
func (a *Asset) Choose(f *LocalFile, previewID string) {
	a.Local = f
	a.PreviewID = previewID
}

// FilePart is one binary part of a multipart payload
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Payload is the request body of a submit
type Payload struct {
	Multipart bool
	// JSON is the body of non-multipart payloads
	JSON map[string]any
	// Fields and Files make up multipart payloads
	Fields url.Values
	Files  []FilePart
}

// Payload packages the form for the backend. Forms that declare an asset field
// are always multipart; only local assets become file parts.
func (s *State) Payload() Payload {
	if s.HasAssetFields() {
		return s.multipart()
	}
	return Payload{JSON: s.json()}
}

func (s *State) multipart() Payload {
	p := Payload{Multipart: true, Fields: url.Values{}}
	for _, f := range s.Fields {
		switch {
		case f.IsAsset():
			a := s.Assets[f.Name]
			if !a.IsLocal() {
				continue
			}
			p.Files = append(p.Files, FilePart{
				Field:       f.Name,
				Filename:    a.Local.Filename,
				ContentType: a.Local.ContentType,
				Data:        a.Local.Data,
			})
		case f.Kind == KindAddress:
			for _, k := range []string{KeyProvince, KeyMunicipality, KeyBarangay} {
				p.Fields.Set(k, s.Values.Get(k))
			}
		case f.IsMulti():
			for i, v := range s.Values[f.Name] {
				if f.IndexedKey != "" {
					p.Fields.Set(fmt.Sprintf(f.IndexedKey, i), v)
				} else {
					p.Fields.Add(f.Name, v)
				}
			}
		default:
			v := s.Values.Get(f.Name)
			if s.omit(f, v) {
				continue
			}
			p.Fields.Set(f.Name, v)
		}
	}
	return p
}

func (s *State) json() map[string]any {
	body := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		switch {
		case f.Kind == KindAddress:
			for _, k := range []string{KeyProvince, KeyMunicipality, KeyBarangay} {
				body[k] = s.Values.Get(k)
			}
		case f.IsMulti():
			vs := s.Values[f.Name]
			if f.Numeric {
				body[f.Name] = numbers(vs)
			} else {
				body[f.Name] = append([]string{}, vs...)
			}
		default:
			v := s.Values.Get(f.Name)
			if s.omit(f, v) {
				continue
			}
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && f.Numeric {
				body[f.Name] = n
			} else {
				body[f.Name] = v
			}
		}
	}
	return body
}

func (s *State) omit(f Field, v string) bool {
	return v == "" && f.OmitEmpty && s.Mode == ModeEdit
}

func numbers(vs []string) []any {
	out := make([]any, 0, len(vs))
	for _, v := range vs {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			out = append(out, n)
		} else {
			out = append(out, v)
		}
	}
	return out
}
