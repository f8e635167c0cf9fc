package pagination

import (
	"fmt"
	"strconv"
)

// DefaultLimit is the default number of rows per page
const DefaultLimit = 10

// MaxLimit is the maximum number of rows per page
const MaxLimit = 1000

// WindowSize is the number of page buttons shown, starting at the current page
const WindowSize = 4

// Params represents pagination parameters
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Meta is the pagination block returned with every list page
type Meta struct {
	Page               int   `json:"page"`
	Limit              int   `json:"limit"`
	Total              int64 `json:"total"`
	TotalNumberOfPages int   `json:"totalNumberOfPages"`
}

// Default is the pagination shown before the first fetch completes
var Default = Meta{Page: 1, Limit: DefaultLimit}

// ParseParams reads page and limit from raw query values
func ParseParams(page, limit string) Params {
	p, _ := strconv.Atoi(page)
	l, _ := strconv.Atoi(limit)

	if p < 1 {
		p = 1
	}
	if l < 1 {
		l = DefaultLimit
	}
	if l > MaxLimit {
		l = MaxLimit
	}

	return Params{Page: p, Limit: l}
}

// Window returns the current page plus up to WindowSize-1 following pages,
// clipped to the total number of pages. There is no backward window.
func Window(meta Meta) []int {
	if meta.TotalNumberOfPages < 1 || meta.Page < 1 || meta.Page > meta.TotalNumberOfPages {
		return nil
	}
	last := meta.Page + WindowSize - 1
	if last > meta.TotalNumberOfPages {
		last = meta.TotalNumberOfPages
	}
	pages := make([]int, 0, last-meta.Page+1)
	for p := meta.Page; p <= last; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Link is one page control
type Link struct {
	Page     int
	Href     string
	Current  bool
	Disabled bool
}

// Control is the rendered pagination bar
type Control struct {
	Label string
	Total int64
	Pages []Link
	Prev  Link
	Next  Link
}

// NewControl builds the pagination bar for meta. href maps a page number to
// its navigation target. Only valid pages ever get an enabled link.
func NewControl(meta Meta, href func(page int) string) Control {
	ctl := Control{
		Label: Label(meta),
		Total: meta.Total,
		Prev:  Link{Disabled: true},
		Next:  Link{Disabled: true},
	}

	window := Window(meta)
	if len(window) > 1 {
		for _, p := range window {
			ctl.Pages = append(ctl.Pages, Link{Page: p, Href: href(p), Current: p == meta.Page})
		}
	}

	if meta.Page > 1 && meta.Page <= meta.TotalNumberOfPages {
		ctl.Prev = Link{Page: meta.Page - 1, Href: href(meta.Page - 1)}
	}
	if meta.Page >= 1 && meta.Page < meta.TotalNumberOfPages {
		ctl.Next = Link{Page: meta.Page + 1, Href: href(meta.Page + 1)}
	}

	return ctl
}

// Label renders "page/total pages"
func Label(meta Meta) string {
	return fmt.Sprintf("%d/%d pages", meta.Page, meta.TotalNumberOfPages)
}
