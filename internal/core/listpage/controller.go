// Package listpage drives one paginated, searchable, filterable list view.
package listpage

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"clinic-console/internal/core/domain"
	"clinic-console/internal/core/form"
	"clinic-console/internal/pkg/apierror"
	"clinic-console/internal/pkg/listquery"
	"clinic-console/internal/pkg/pagination"
)

// Page is one fetched page of rows
type Page[T any] struct {
	Rows []T             `json:"rows"`
	Meta pagination.Meta `json:"pagination"`
}

// Fetcher loads one page for the given backend query values
type Fetcher[T any] func(ctx context.Context, values url.Values) (Page[T], error)

// Deleter deletes one row by id
type Deleter func(ctx context.Context, id string) error

// OptionsLoader loads the option sets filters depend on
type OptionsLoader func(ctx context.Context) (map[string]form.OptionSet, error)

// MsgDeleted is the notice shown after a confirmed delete
const MsgDeleted = "Successfully deleted."

// View is the renderable state. While a fetch is outstanding it is a
// skeleton and carries no rows. Only a caller reading View concurrently with
// Load sees the skeleton; the page handlers render after Load returns.
type View[T any] struct {
	Skeleton      bool
	Rows          []T
	Meta          pagination.Meta
	Query         listquery.Query
	Notice        string
	NoticeIsError bool
	PendingDelete string
	Options       map[string]form.OptionSet
}

// Controller owns the fetched rows of one list. It is safe for concurrent use;
// of several overlapping loads only the most recent one is applied.
type Controller[T any] struct {
	fetch       Fetcher[T]
	del         Deleter
	loadOptions OptionsLoader

	mu            sync.Mutex
	generation    uint64
	loading       bool
	query         listquery.Query
	rows          []T
	meta          pagination.Meta
	options       map[string]form.OptionSet
	optionsLoaded bool
	notice        string
	noticeIsError bool
	pendingDelete string
}

// New returns a controller. del may be nil for lists without delete.
func New[T any](fetch Fetcher[T], del Deleter) *Controller[T] {
	return &Controller[T]{
		fetch:   fetch,
		del:     del,
		meta:    pagination.Default,
		options: make(map[string]form.OptionSet),
	}
}

// SetOptionsLoader gates the first fetch on loading filter options
func (c *Controller[T]) SetOptionsLoader(fn OptionsLoader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadOptions = fn
	c.optionsLoaded = fn == nil
}

// LoadOptions loads filter options once
func (c *Controller[T]) LoadOptions(ctx context.Context) error {
	c.mu.Lock()
	fn, done := c.loadOptions, c.optionsLoaded
	c.mu.Unlock()
	if fn == nil || done {
		return nil
	}

	sets, err := fn(ctx)
	if err != nil {
		return fmt.Errorf("load filter options: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range sets {
		c.options[k] = v
	}
	c.optionsLoaded = true
	return nil
}

// Restore seeds the rows shown when the next fetch fails
func (c *Controller[T]) Restore(p Page[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = p.Rows
	c.meta = p.Meta
}

// Begin starts a load for q and returns its generation
func (c *Controller[T]) Begin(q listquery.Query) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.loading = true
	c.query = q
	return c.generation
}

// Complete applies the outcome of load gen. Outcomes of superseded loads are
// discarded with ErrStaleResponse. A failed load keeps the previous rows.
func (c *Controller[T]) Complete(gen uint64, p Page[T], err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return domain.ErrStaleResponse
	}
	c.loading = false

	if err != nil {
		c.dispatchLocked(err)
		return err
	}
	c.rows = p.Rows
	c.meta = p.Meta
	return nil
}

// Load fetches one page for q
func (c *Controller[T]) Load(ctx context.Context, q listquery.Query) error {
	if err := c.LoadOptions(ctx); err != nil {
		c.mu.Lock()
		c.dispatchLocked(err)
		c.mu.Unlock()
		return err
	}

	gen := c.Begin(q)
	p, err := c.fetch(ctx, q.BackendValues())
	return c.Complete(gen, p, err)
}

// Page returns the rows currently shown
func (c *Controller[T]) Page() Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Page[T]{Rows: c.rows, Meta: c.meta}
}

// View returns the renderable state
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View[T]{
		Skeleton:      c.loading,
		Meta:          c.meta,
		Query:         c.query,
		Notice:        c.notice,
		NoticeIsError: c.noticeIsError,
		PendingDelete: c.pendingDelete,
		Options:       c.options,
	}
	if !c.loading {
		v.Rows = c.rows
	}
	return v
}

// RequestDelete arms the inline confirmation for id
func (c *Controller[T]) RequestDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = id
}

// CancelDelete disarms the confirmation without any backend call
func (c *Controller[T]) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = ""
}

// ConfirmDelete deletes the armed row and reloads the last loaded query as
// is, trusting the backend to recompute pagination. Without a loaded query
// the caller is expected to navigate back to the list instead.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id, q := c.pendingDelete, c.query
	c.pendingDelete = ""
	c.mu.Unlock()

	if id == "" || c.del == nil {
		return domain.ErrNoPendingDelete
	}

	if err := c.del(ctx, id); err != nil {
		c.mu.Lock()
		c.dispatchLocked(err)
		c.mu.Unlock()
		return err
	}

	if !q.IsZero() {
		if err := c.Load(ctx, q); err != nil {
			return err
		}
	}
	c.setNotice(MsgDeleted, false)
	return nil
}

func (c *Controller[T]) setNotice(msg string, isErr bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = msg
	c.noticeIsError = isErr
}

func (c *Controller[T]) dispatchLocked(err error) {
	apierror.Dispatch(err, apierror.Handlers{
		OnBadRequest: func(_ map[string]string, msg string) {
			if msg == "" {
				msg = apierror.MsgGeneric
			}
			c.notice, c.noticeIsError = msg, true
		},
		OnUnauthorized: func() {
			c.notice, c.noticeIsError = "", false
		},
		Notify: func(msg string) {
			c.notice, c.noticeIsError = msg, true
		},
	})
}
