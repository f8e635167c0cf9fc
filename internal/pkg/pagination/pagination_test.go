package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func href(p int) string { return fmt.Sprintf("?page=%d", p) }

func TestWindow(t *testing.T) {
	tests := []struct {
		name string
		meta Meta
		want []int
	}{
		{"first page of five", Meta{Page: 1, TotalNumberOfPages: 5}, []int{1, 2, 3, 4}},
		{"clipped at the end", Meta{Page: 4, TotalNumberOfPages: 5}, []int{4, 5}},
		{"last page", Meta{Page: 5, TotalNumberOfPages: 5}, []int{5}},
		{"no pages", Meta{Page: 1, TotalNumberOfPages: 0}, nil},
		{"page beyond total", Meta{Page: 9, TotalNumberOfPages: 5}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Window(tt.meta))
		})
	}
}

func TestNewControl_FirstPage(t *testing.T) {
	ctl := NewControl(Meta{Page: 1, Limit: 10, Total: 50, TotalNumberOfPages: 5}, href)

	assert.Equal(t, "1/5 pages", ctl.Label)
	assert.EqualValues(t, 50, ctl.Total)
	assert.True(t, ctl.Prev.Disabled)
	assert.False(t, ctl.Next.Disabled)
	assert.Equal(t, "?page=2", ctl.Next.Href)

	pages := make([]int, 0, len(ctl.Pages))
	for _, l := range ctl.Pages {
		pages = append(pages, l.Page)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, pages)
	assert.True(t, ctl.Pages[0].Current)
}

func TestNewControl_LastPage(t *testing.T) {
	ctl := NewControl(Meta{Page: 5, Limit: 10, Total: 50, TotalNumberOfPages: 5}, href)

	assert.False(t, ctl.Prev.Disabled)
	assert.Equal(t, 4, ctl.Prev.Page)
	assert.True(t, ctl.Next.Disabled)
	assert.Empty(t, ctl.Pages, "a single-page window renders no buttons")
}

func TestNewControl_NeverLinksInvalidPages(t *testing.T) {
	for _, meta := range []Meta{
		{Page: 1, TotalNumberOfPages: 1},
		{Page: 1, TotalNumberOfPages: 0},
		{Page: 7, TotalNumberOfPages: 3},
	} {
		ctl := NewControl(meta, href)
		for _, l := range append(ctl.Pages, ctl.Prev, ctl.Next) {
			if l.Disabled {
				continue
			}
			assert.GreaterOrEqual(t, l.Page, 1)
			assert.LessOrEqual(t, l.Page, meta.TotalNumberOfPages)
		}
	}
}

func TestParseParams(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, ParseParams("", ""))
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, ParseParams("-3", "abc"))
	assert.Equal(t, Params{Page: 3, Limit: 25}, ParseParams("3", "25"))
	assert.Equal(t, Params{Page: 2, Limit: MaxLimit}, ParseParams("2", "50000"))
}
