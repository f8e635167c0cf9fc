package listpage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-console/internal/core/domain"
	"clinic-console/internal/core/form"
	"clinic-console/internal/pkg/apierror"
	"clinic-console/internal/pkg/listquery"
	"clinic-console/internal/pkg/pagination"
)

var patientSpec = listquery.Spec{Search: []string{"firstName", "lastName", "controlNo"}}

type fakeBackend struct {
	total     int
	requests  []url.Values
	deletes   []string
	fetchErr  error
	deleteErr error
}

func (f *fakeBackend) fetch(_ context.Context, v url.Values) (Page[string], error) {
	f.requests = append(f.requests, v)
	if f.fetchErr != nil {
		return Page[string]{}, f.fetchErr
	}
	q, _ := listquery.Parse(v, patientSpec)
	p := q.Params()
	rows := make([]string, 0, p.Limit)
	for i := (p.Page-1)*p.Limit + 1; i <= p.Page*p.Limit && i <= f.total; i++ {
		rows = append(rows, fmt.Sprintf("patient-%d", i))
	}
	pages := (f.total + p.Limit - 1) / p.Limit
	return Page[string]{Rows: rows, Meta: pagination.Meta{Page: p.Page, Limit: p.Limit, Total: int64(f.total), TotalNumberOfPages: pages}}, nil
}

func (f *fakeBackend) delete(_ context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.total--
	return nil
}

func query(t *testing.T, raw string) listquery.Query {
	t.Helper()
	q, _ := listquery.ParseRaw(raw, patientSpec)
	return q
}

func TestLoad_FirstPageOfFifty(t *testing.T) {
	be := &fakeBackend{total: 50}
	c := New[string](be.fetch, be.delete)

	require.NoError(t, c.Load(context.Background(), query(t, "page=1&limit=10")))

	v := c.View()
	assert.False(t, v.Skeleton)
	assert.Len(t, v.Rows, 10)
	ctl := pagination.NewControl(v.Meta, func(p int) string { return v.Query.GoToPage(p).Encode() })
	assert.Equal(t, "1/5 pages", ctl.Label)
	assert.True(t, ctl.Prev.Disabled)
	assert.False(t, ctl.Next.Disabled)
	assert.Len(t, ctl.Pages, 4)
	assert.Equal(t, url.Values{"page": {"1"}, "limit": {"10"}}, be.requests[0])
}

func TestView_SkeletonWhileLoading(t *testing.T) {
	be := &fakeBackend{total: 50}
	c := New[string](be.fetch, be.delete)
	require.NoError(t, c.Load(context.Background(), query(t, "page=1&limit=10")))

	c.Begin(query(t, "page=2&limit=10"))

	v := c.View()
	assert.True(t, v.Skeleton)
	assert.Empty(t, v.Rows)
}

func TestComplete_DiscardsStaleResponse(t *testing.T) {
	c := New[string](nil, nil)

	first := c.Begin(query(t, "page=1&limit=10"))
	second := c.Begin(query(t, "page=2&limit=10"))

	err := c.Complete(first, Page[string]{Rows: []string{"stale"}}, nil)
	assert.ErrorIs(t, err, domain.ErrStaleResponse)
	assert.True(t, c.View().Skeleton)

	require.NoError(t, c.Complete(second, Page[string]{Rows: []string{"fresh"}}, nil))
	assert.Equal(t, []string{"fresh"}, c.View().Rows)
}

func TestLoad_FailureKeepsPreviousRows(t *testing.T) {
	be := &fakeBackend{total: 50}
	c := New[string](be.fetch, be.delete)
	require.NoError(t, c.Load(context.Background(), query(t, "page=1&limit=10")))

	be.fetchErr = &apierror.NetworkError{Method: "GET", URL: "/patient", Err: errors.New("refused")}
	err := c.Load(context.Background(), query(t, "page=2&limit=10"))

	require.Error(t, err)
	v := c.View()
	assert.Len(t, v.Rows, 10)
	assert.Equal(t, "patient-1", v.Rows[0])
	assert.Equal(t, apierror.MsgDisconnected, v.Notice)
	assert.True(t, v.NoticeIsError)
}

func TestRestore_SeedsRowsForFailure(t *testing.T) {
	be := &fakeBackend{fetchErr: apierror.FromResponse(500, nil)}
	c := New[string](be.fetch, be.delete)
	c.Restore(Page[string]{Rows: []string{"cached"}, Meta: pagination.Meta{Page: 1, TotalNumberOfPages: 1}})

	_ = c.Load(context.Background(), query(t, "page=1&limit=10"))

	assert.Equal(t, []string{"cached"}, c.View().Rows)
	assert.Equal(t, apierror.MsgGeneric, c.View().Notice)
}

func TestOptionsGate(t *testing.T) {
	be := &fakeBackend{total: 3}
	c := New[string](be.fetch, nil)
	loads := 0
	c.SetOptionsLoader(func(context.Context) (map[string]form.OptionSet, error) {
		loads++
		return map[string]form.OptionSet{"role": form.Loaded([]form.Option{{Value: "admin", Label: "Admin"}})}, nil
	})

	require.NoError(t, c.Load(context.Background(), query(t, "page=1&limit=10")))
	require.NoError(t, c.Load(context.Background(), query(t, "page=1&limit=10")))

	assert.Equal(t, 1, loads)
	assert.True(t, c.View().Options["role"].Loaded)
}

func TestOptionsGate_FailureBlocksFetch(t *testing.T) {
	be := &fakeBackend{total: 3}
	c := New[string](be.fetch, nil)
	c.SetOptionsLoader(func(context.Context) (map[string]form.OptionSet, error) {
		return nil, apierror.FromResponse(503, nil)
	})

	err := c.Load(context.Background(), query(t, "page=1&limit=10"))

	assert.Error(t, err)
	assert.Empty(t, be.requests)
}

func TestDeleteGate_CancelMakesNoCalls(t *testing.T) {
	be := &fakeBackend{total: 50}
	c := New[string](be.fetch, be.delete)
	require.NoError(t, c.Load(context.Background(), query(t, "page=1&limit=10")))

	c.RequestDelete("7")
	assert.Equal(t, "7", c.View().PendingDelete)
	c.CancelDelete()

	assert.Empty(t, be.deletes)
	assert.Len(t, be.requests, 1)
	assert.ErrorIs(t, c.ConfirmDelete(context.Background()), domain.ErrNoPendingDelete)
	assert.Empty(t, be.deletes)
}

func TestDeleteGate_ConfirmDeletesAndReloadsSameQuery(t *testing.T) {
	be := &fakeBackend{total: 11}
	c := New[string](be.fetch, be.delete)
	require.NoError(t, c.Load(context.Background(), query(t, "page=2&limit=10&lastName=Doe")))

	c.RequestDelete("11")
	require.NoError(t, c.ConfirmDelete(context.Background()))

	assert.Equal(t, []string{"11"}, be.deletes)
	require.Len(t, be.requests, 2)
	assert.Equal(t, be.requests[0], be.requests[1])
	v := c.View()
	assert.Empty(t, v.Rows, "page 2 of a now single-page result is shown as the backend returns it")
	assert.Equal(t, MsgDeleted, v.Notice)
	assert.False(t, v.NoticeIsError)
}

func TestDeleteGate_FailureKeepsRows(t *testing.T) {
	be := &fakeBackend{total: 5, deleteErr: apierror.FromResponse(403, nil)}
	c := New[string](be.fetch, be.delete)
	require.NoError(t, c.Load(context.Background(), query(t, "page=1&limit=10")))

	c.RequestDelete("1")
	err := c.ConfirmDelete(context.Background())

	require.Error(t, err)
	assert.Len(t, c.View().Rows, 5)
	assert.Equal(t, apierror.MsgGeneric, c.View().Notice)
	assert.Len(t, be.requests, 1)
}
