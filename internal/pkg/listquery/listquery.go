// Package listquery keeps list-page state in the URL query string.
//
// A Query is the only durable description of what a list page shows: the
// page, the page size, the committed search fields and the repeated filter
// keys. Every mutation returns a new Query; callers navigate to its URL.
package listquery

import (
	"net/url"
	"strconv"
	"strings"

	"clinic-console/internal/pkg/pagination"
)

// Reserved query keys
const (
	KeyPage   = "page"
	KeyLimit  = "limit"
	KeyNotice = "notice"
	KeyError  = "error"
)

// Spec declares which query keys a list page owns
type Spec struct {
	Search  []string
	Filters []string
}

// Flash carries one-shot messages passed through the query string after a redirect
type Flash struct {
	Notice string
	Error  string
}

// Query is an immutable view over list query values
type Query struct {
	spec   Spec
	values url.Values
}

// Parse copies values into a Query. Flash keys are split off and are never
// re-emitted by Encode.
func Parse(values url.Values, spec Spec) (Query, Flash) {
	q := Query{spec: spec, values: url.Values{}}
	var flash Flash
	for k, vs := range values {
		switch k {
		case KeyNotice:
			flash.Notice = first(vs)
		case KeyError:
			flash.Error = first(vs)
		default:
			q.values[k] = append([]string(nil), vs...)
		}
	}
	return q, flash
}

// ParseRaw parses a raw query string, ignoring malformed pairs
func ParseRaw(raw string, spec Spec) (Query, Flash) {
	values, _ := url.ParseQuery(raw)
	return Parse(values, spec)
}

// IsZero reports whether q was never parsed
func (q Query) IsZero() bool { return q.values == nil }

// Spec returns the key declaration the query was parsed with
func (q Query) Spec() Spec { return q.spec }

// Normalize fills missing page and limit with their defaults
func (q Query) Normalize() Query {
	n := q.clone()
	if n.values.Get(KeyPage) == "" {
		n.values.Set(KeyPage, "1")
	}
	if n.values.Get(KeyLimit) == "" {
		n.values.Set(KeyLimit, strconv.Itoa(pagination.DefaultLimit))
	}
	return n
}

// Params returns the sanitized page and limit
func (q Query) Params() pagination.Params {
	return pagination.ParseParams(q.values.Get(KeyPage), q.values.Get(KeyLimit))
}

// Page returns the sanitized current page
func (q Query) Page() int { return q.Params().Page }

// Search returns the committed value of a search key
func (q Query) Search(key string) string { return q.values.Get(key) }

// HasSearch reports whether any search key is committed
func (q Query) HasSearch() bool {
	for _, k := range q.spec.Search {
		if q.values.Get(k) != "" {
			return true
		}
	}
	return false
}

// Filter returns the repeated values of a filter key
func (q Query) Filter(key string) []string {
	return append([]string(nil), q.values[key]...)
}

// HasFilters reports whether any filter key is set
func (q Query) HasFilters() bool {
	for _, k := range q.spec.Filters {
		if len(q.values[k]) > 0 {
			return true
		}
	}
	return false
}

// WithSearch commits a search draft. Non-empty values are set, empty values
// remove the key, keys outside the draft are left alone and page resets to 1.
// Keys that are not declared search keys are ignored.
func (q Query) WithSearch(draft map[string]string) Query {
	n := q.clone()
	for _, k := range q.spec.Search {
		v, ok := draft[k]
		if !ok {
			continue
		}
		if v == "" {
			n.values.Del(k)
		} else {
			n.values.Set(k, v)
		}
	}
	n.values.Set(KeyPage, "1")
	return n
}

// ClearSearch removes every search key and resets page to 1
func (q Query) ClearSearch() Query {
	n := q.clone()
	for _, k := range q.spec.Search {
		n.values.Del(k)
	}
	n.values.Set(KeyPage, "1")
	return n
}

// WithFilters commits filter selections as repeated keys and resets page to 1.
// A key mapped to no values is removed.
func (q Query) WithFilters(selected map[string][]string) Query {
	n := q.clone()
	for _, k := range q.spec.Filters {
		vs, ok := selected[k]
		if !ok {
			continue
		}
		n.values.Del(k)
		for _, v := range vs {
			if v != "" {
				n.values.Add(k, v)
			}
		}
	}
	n.values.Set(KeyPage, "1")
	return n
}

// ClearFilters removes every filter key and resets page to 1
func (q Query) ClearFilters() Query {
	n := q.clone()
	for _, k := range q.spec.Filters {
		n.values.Del(k)
	}
	n.values.Set(KeyPage, "1")
	return n
}

// GoToPage changes only the page
func (q Query) GoToPage(page int) Query {
	n := q.clone()
	n.values.Set(KeyPage, strconv.Itoa(page))
	return n
}

// BackendValues returns the values forwarded to a list endpoint: page, limit,
// non-empty search values and repeated filter values. Unknown keys are dropped.
func (q Query) BackendValues() url.Values {
	p := q.Params()
	out := url.Values{}
	out.Set(KeyPage, strconv.Itoa(p.Page))
	out.Set(KeyLimit, strconv.Itoa(p.Limit))
	for _, k := range q.spec.Search {
		if v := q.values.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	for _, k := range q.spec.Filters {
		for _, v := range q.values[k] {
			out.Add(k, v)
		}
	}
	return out
}

// Values returns a copy of the underlying values
func (q Query) Values() url.Values { return q.clone().values }

// Encode renders the query string sorted by key
func (q Query) Encode() string { return q.values.Encode() }

// URL joins path and the encoded query
func (q Query) URL(path string) string {
	enc := q.Encode()
	if enc == "" {
		return path
	}
	return path + "?" + enc
}

// WithFlash appends a one-shot flash to a navigation target
func WithFlash(target string, flash Flash) string {
	extra := url.Values{}
	if flash.Notice != "" {
		extra.Set(KeyNotice, flash.Notice)
	}
	if flash.Error != "" {
		extra.Set(KeyError, flash.Error)
	}
	if len(extra) == 0 {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + extra.Encode()
}

func (q Query) clone() Query {
	values := make(url.Values, len(q.values))
	for k, vs := range q.values {
		values[k] = append([]string(nil), vs...)
	}
	return Query{spec: q.spec, values: values}
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
