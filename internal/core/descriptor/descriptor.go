// Package descriptor declares what each console entity looks like: its
// backend endpoint, list columns, query keys and form fields.
package descriptor

import (
	"net/url"
	"strings"

	"github.com/samber/lo"

	"clinic-console/internal/core/form"
	"clinic-console/internal/pkg/listquery"
)

// Option set names shared by list filters and form selects
const (
	OptionRoleKeys          = "roleKeys"
	OptionRoleIDs           = "roleIds"
	OptionServiceCategories = "serviceCategories"
	OptionFileTypes         = "fileTypes"
)

// Column is one table column
type Column[T any] struct {
	Header string
	Cell   func(T) string
}

// SearchField is one committed search input
type SearchField struct {
	Key   string
	Label string
}

// Filter is one multi-valued filter; Options names its option set
type Filter struct {
	Key     string
	Label   string
	Options string
}

// List describes one list page
type List[T any] struct {
	Entity string
	Title  string
	// Path is the console route of the list
	Path string
	// CreatePath is the create form route; edit forms live at EditBase/:id
	CreatePath string
	EditBase   string

	Endpoint string
	ListKey  string

	Search  []SearchField
	Filters []Filter
	Columns []Column[T]
	ID      func(T) string
}

// Spec returns the query keys the list owns
func (l List[T]) Spec() listquery.Spec {
	return listquery.Spec{
		Search:  lo.Map(l.Search, func(s SearchField, _ int) string { return s.Key }),
		Filters: lo.Map(l.Filters, func(f Filter, _ int) string { return f.Key }),
	}
}

// Landing is the list URL navigation links point at
func (l List[T]) Landing() string {
	v := url.Values{}
	v.Set(listquery.KeyPage, "1")
	v.Set(listquery.KeyLimit, "10")
	return l.Path + "?" + v.Encode()
}

// Resource is the backend path of one record
func (l List[T]) Resource(id string) string {
	return l.Endpoint + "/" + url.PathEscape(id)
}

// EditPath is the console route of one record's edit form
func (l List[T]) EditPath(id string) string {
	return l.EditBase + "/" + url.PathEscape(id)
}

// Headers returns the column headers
func (l List[T]) Headers() []string {
	return lo.Map(l.Columns, func(c Column[T], _ int) string { return c.Header })
}

// Cells renders one row
func (l List[T]) Cells(row T) []string {
	return lo.Map(l.Columns, func(c Column[T], _ int) string { return c.Cell(row) })
}

// OptionSets lists the option set names the filters depend on
func (l List[T]) OptionSets() []string {
	return lo.Uniq(lo.FilterMap(l.Filters, func(f Filter, _ int) (string, bool) {
		return f.Options, f.Options != ""
	}))
}

// Form describes one create or edit form
type Form struct {
	Entity string
	Title  string
	Fields []form.Field

	// CreatePath and EditBase are console routes; either may be empty
	CreatePath string
	EditBase   string
	// Back is where cancel and success navigate to
	Back string

	// CreateEndpoint receives POST. Resource is the GET target and, unless
	// Update is set, the PATCH target. Forms without ItemKey load nothing.
	CreateEndpoint string
	Resource       func(id string) string
	Update         func(id string) string
	ItemKey        string

	// Success renders the notice after a successful submit
	Success func(values url.Values, mode form.Mode) string
	// Next overrides Back after a successful create, e.g. to continue with a
	// second step. created is the response data.
	Next func(created form.Record) string

	// Invalid is the notice of a 400 that carries no message of its own
	Invalid string
	// UnauthorizedField turns a 401 into an error on that field instead of
	// ending the session
	UnauthorizedField   string
	UnauthorizedMessage string
}

// MsgCheckForm is the default notice of a rejected submit
const MsgCheckForm = "Check your form for errors."

// UpdatePath is the PATCH target of one record
func (f Form) UpdatePath(id string) string {
	if f.Update != nil {
		return f.Update(id)
	}
	return f.Resource(id)
}

// InvalidNotice returns the notice of a 400 without message
func (f Form) InvalidNotice() string {
	if f.Invalid != "" {
		return f.Invalid
	}
	return MsgCheckForm
}

// Loads reports whether edit mode fetches a record before enabling the form
func (f Form) Loads() bool {
	return f.ItemKey != "" && f.Resource != nil
}

// OptionSets lists the option set names the fields depend on
func (f Form) OptionSets() []string {
	return lo.Uniq(lo.FilterMap(f.Fields, func(fd form.Field, _ int) (string, bool) {
		return fd.Options, fd.Options != ""
	}))
}

// HasAddress reports whether the form embeds the cascading address selector
func (f Form) HasAddress() bool {
	return lo.SomeBy(f.Fields, func(fd form.Field) bool { return fd.Kind == form.KindAddress })
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(lo.Compact(parts), sep)
}
