package views

import (
	"clinic-console/internal/core/domain"
	"clinic-console/internal/pkg/pagination"
)

// Page is the part every view shares with the layout
type Page struct {
	Title  string
	User   *domain.User
	Notice string
	Error  string
	Nav    []NavItem
}

// NavItem is one navigation link
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// Option is one choice of a select, checkbox group or filter
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Field is one rendered form input
type Field struct {
	Name     string
	Label    string
	Kind     string
	Required bool
	Value    string
	Error    string
	Accept   string
	Options  []Option
	Asset    *Asset
	Address  *Address
}

// Asset is the preview state of a file input
type Asset struct {
	Field      string
	Filename   string
	PreviewID  string
	PreviewURL string
	Local      bool
	LocalName  string
}

// Address is the cascading province, municipality and barangay selects
type Address struct {
	Province     Region
	Municipality Region
	Barangay     Region
}

// Region is one select of the address cascade. Cascade names the level the
// Update button resubmits. Selected is the name of the chosen option.
type Region struct {
	Name     string
	Label    string
	Cascade  string
	Disabled bool
	Error    string
	Selected string
	Options  []Option
}

// Form is a create or edit page
type Form struct {
	Page
	Action    string
	Back      string
	Scope     string
	Multipart bool
	Disabled  bool
	Fields    []Field
}

// Login is the login page
type Login struct {
	Page
	Fields []Field
}

// Home is the dashboard landing page
type Home struct {
	Page
	Sections []NavItem
}

// Error is the error page
type Error struct {
	Page
	Status  int
	Message string
}

// SearchInput is one search field of a list page
type SearchInput struct {
	Key   string
	Label string
	Value string
}

// FilterGroup is one filter of a list page
type FilterGroup struct {
	Key     string
	Label   string
	Options []Option
}

// Row is one table row
type Row struct {
	ID            string
	Cells         []string
	EditPath      string
	DeletePath    string
	PendingDelete bool
}

// List is a list page
type List struct {
	Page
	Path       string
	Self       string
	CreatePath string
	ExportURL  string
	Query      string

	Search     []SearchInput
	HasSearch  bool
	Filters    []FilterGroup
	HasFilters bool

	Headers    []string
	Rows       []Row
	Pagination *pagination.Control
}
