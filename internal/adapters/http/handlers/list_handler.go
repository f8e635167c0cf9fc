package handlers

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"clinic-console/internal/adapters/cache"
	"clinic-console/internal/adapters/http/middleware"
	"clinic-console/internal/adapters/http/views"
	"clinic-console/internal/core/descriptor"
	"clinic-console/internal/core/form"
	"clinic-console/internal/core/listpage"
	"clinic-console/internal/pkg/apierror"
	"clinic-console/internal/pkg/export"
	"clinic-console/internal/pkg/listquery"
	"clinic-console/internal/pkg/pagination"
)

// ListHandler serves one list page with its search, filter, delete and
// export actions. Every action ends in a single redirect to the list URL.
type ListHandler[T any] struct {
	deps *Deps
	list descriptor.List[T]
}

// NewListHandler creates a list handler for one entity
func NewListHandler[T any](deps *Deps, list descriptor.List[T]) *ListHandler[T] {
	return &ListHandler[T]{deps: deps, list: list}
}

// Path is the route of the list page
func (h *ListHandler[T]) Path() string { return h.list.Path }

// Index renders one page of rows for the query string
func (h *ListHandler[T]) Index(c *fiber.Ctx) error {
	values, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	q, flash := listquery.Parse(values, h.list.Spec())
	if values.Get(listquery.KeyPage) == "" || values.Get(listquery.KeyLimit) == "" {
		return c.Redirect(listquery.WithFlash(q.Normalize().URL(h.list.Path), flash), fiber.StatusFound)
	}

	ctx := c.Context()
	sess := middleware.CurrentSession(c)
	ctl := h.controller(sess)
	h.restore(ctx, sess, ctl)

	if err := ctl.Load(ctx, q); err != nil {
		if isUnauthorized(err) {
			return h.deps.expire(c)
		}
		h.deps.Logger.Warn("list fetch failed",
			zap.String("entity", h.list.Entity),
			zap.Error(err),
		)
	} else {
		h.snapshot(ctx, sess, ctl.Page())
	}

	return h.render(c, q, ctl.View(), flash)
}

// Search commits the search draft and resets to the first page
func (h *ListHandler[T]) Search(c *fiber.Ctx) error {
	values, q, err := h.posted(c)
	if err != nil {
		return err
	}
	draft := make(map[string]string, len(h.list.Search))
	for _, s := range h.list.Search {
		if vs, ok := values[s.Key]; ok && len(vs) > 0 {
			draft[s.Key] = strings.TrimSpace(vs[0])
		}
	}
	return c.Redirect(q.WithSearch(draft).URL(h.list.Path), fiber.StatusSeeOther)
}

// ClearSearch removes every search key
func (h *ListHandler[T]) ClearSearch(c *fiber.Ctx) error {
	_, q, err := h.posted(c)
	if err != nil {
		return err
	}
	return c.Redirect(q.ClearSearch().URL(h.list.Path), fiber.StatusSeeOther)
}

// Filter commits the checked filter values. An unchecked group removes its key.
func (h *ListHandler[T]) Filter(c *fiber.Ctx) error {
	values, q, err := h.posted(c)
	if err != nil {
		return err
	}
	selected := make(map[string][]string, len(h.list.Filters))
	for _, f := range h.list.Filters {
		selected[f.Key] = values[f.Key]
	}
	return c.Redirect(q.WithFilters(selected).URL(h.list.Path), fiber.StatusSeeOther)
}

// ClearFilters removes every filter key
func (h *ListHandler[T]) ClearFilters(c *fiber.Ctx) error {
	_, q, err := h.posted(c)
	if err != nil {
		return err
	}
	return c.Redirect(q.ClearFilters().URL(h.list.Path), fiber.StatusSeeOther)
}

// Delete removes one row once the inline prompt was answered with yes. Any
// other answer returns to the list without a backend call.
func (h *ListHandler[T]) Delete(c *fiber.Ctx) error {
	values, q, err := h.posted(c)
	if err != nil {
		return err
	}
	back := q.URL(h.list.Path)

	ctx := c.Context()
	sess := middleware.CurrentSession(c)
	ctl := h.controller(sess)
	ctl.RequestDelete(c.Params("id"))
	if values.Get("confirm") != "yes" {
		ctl.CancelDelete()
		return c.Redirect(back, fiber.StatusSeeOther)
	}

	if err := ctl.ConfirmDelete(ctx); err != nil {
		if isUnauthorized(err) {
			return h.deps.expire(c)
		}
		h.deps.Logger.Warn("delete failed",
			zap.String("entity", h.list.Entity),
			zap.String("id", c.Params("id")),
			zap.Error(err),
		)
		msg := ctl.View().Notice
		if msg == "" {
			msg = failureNotice(err)
		}
		return c.Redirect(listquery.WithFlash(back, listquery.Flash{Error: msg}), fiber.StatusSeeOther)
	}

	if err := h.deps.Snapshots.Delete(ctx, cache.Key(sess.Owner, h.list.Entity)); err != nil {
		h.deps.Logger.Warn("drop list snapshot failed", zap.Error(err))
	}
	return c.Redirect(listquery.WithFlash(back, listquery.Flash{Notice: ctl.View().Notice}), fiber.StatusSeeOther)
}

// Export downloads the page the query string points at as a workbook
func (h *ListHandler[T]) Export(c *fiber.Ctx) error {
	q, _ := listquery.ParseRaw(string(c.Request().URI().QueryString()), h.list.Spec())
	q = q.Normalize()

	var rows []T
	sess := middleware.CurrentSession(c)
	if _, err := sess.Backend.List(c.Context(), h.list.Endpoint, h.list.ListKey, q.BackendValues(), &rows); err != nil {
		if isUnauthorized(err) {
			return h.deps.expire(c)
		}
		return c.Redirect(listquery.WithFlash(q.URL(h.list.Path), listquery.Flash{Error: failureNotice(err)}), fiber.StatusSeeOther)
	}

	data, err := export.XLSX(h.list.Title, h.list.Headers(), lo.Map(rows, func(row T, _ int) []string {
		return h.list.Cells(row)
	}))
	if err != nil {
		return err
	}

	c.Attachment(h.list.Entity + ".xlsx")
	c.Set(fiber.HeaderContentType, export.ContentTypeXLSX)
	return c.Send(data)
}

func (h *ListHandler[T]) controller(sess *middleware.Session) *listpage.Controller[T] {
	ctl := listpage.New[T](
		func(ctx context.Context, values url.Values) (listpage.Page[T], error) {
			var rows []T
			meta, err := sess.Backend.List(ctx, h.list.Endpoint, h.list.ListKey, values, &rows)
			return listpage.Page[T]{Rows: rows, Meta: meta}, err
		},
		func(ctx context.Context, id string) error {
			return sess.Backend.Delete(ctx, h.list.Resource(id))
		},
	)
	if sets := h.list.OptionSets(); len(sets) > 0 {
		ctl.SetOptionsLoader(func(ctx context.Context) (map[string]form.OptionSet, error) {
			return h.deps.loadOptions(ctx, sess, sets)
		})
	}
	return ctl
}

// restore seeds the rows of the last successful fetch
func (h *ListHandler[T]) restore(ctx context.Context, sess *middleware.Session, ctl *listpage.Controller[T]) {
	data, err := h.deps.Snapshots.Load(ctx, cache.Key(sess.Owner, h.list.Entity))
	if err != nil {
		return
	}
	var p listpage.Page[T]
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	ctl.Restore(p)
}

func (h *ListHandler[T]) snapshot(ctx context.Context, sess *middleware.Session, p listpage.Page[T]) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := h.deps.Snapshots.Save(ctx, cache.Key(sess.Owner, h.list.Entity), data); err != nil {
		h.deps.Logger.Warn("save list snapshot failed", zap.Error(err))
	}
}

// posted reads a list action body and the query it was submitted from
func (h *ListHandler[T]) posted(c *fiber.Ctx) (url.Values, listquery.Query, error) {
	values, _, err := submitted(c)
	if err != nil {
		return nil, listquery.Query{}, fiber.ErrBadRequest
	}
	q, _ := listquery.ParseRaw(values.Get("_query"), h.list.Spec())
	return values, q.Normalize(), nil
}

func (h *ListHandler[T]) render(c *fiber.Ctx, q listquery.Query, v listpage.View[T], flash listquery.Flash) error {
	page := newPage(c, h.list.Title, flash)
	if v.Notice != "" {
		if v.NoticeIsError {
			page.Error = v.Notice
		} else {
			page.Notice = v.Notice
		}
	}

	view := views.List{
		Page:       page,
		Path:       h.list.Path,
		Self:       q.URL(h.list.Path),
		CreatePath: h.list.CreatePath,
		ExportURL:  q.URL(h.list.Path + "/export"),
		Query:      q.Encode(),
		HasSearch:  q.HasSearch(),
		HasFilters: q.HasFilters(),
		Headers:    h.list.Headers(),
	}

	for _, s := range h.list.Search {
		view.Search = append(view.Search, views.SearchInput{Key: s.Key, Label: s.Label, Value: q.Search(s.Key)})
	}
	for _, f := range h.list.Filters {
		selected := q.Filter(f.Key)
		group := views.FilterGroup{Key: f.Key, Label: f.Label}
		for _, o := range v.Options[f.Options].Options {
			group.Options = append(group.Options, views.Option{Value: o.Value, Label: o.Label, Selected: lo.Contains(selected, o.Value)})
		}
		view.Filters = append(view.Filters, group)
	}

	for _, row := range v.Rows {
		id := h.list.ID(row)
		view.Rows = append(view.Rows, views.Row{
			ID:            id,
			Cells:         h.list.Cells(row),
			EditPath:      h.list.EditPath(id),
			DeletePath:    h.list.Path + "/" + url.PathEscape(id) + "/delete",
			PendingDelete: id == v.PendingDelete,
		})
	}

	ctl := pagination.NewControl(v.Meta, func(p int) string { return q.GoToPage(p).URL(h.list.Path) })
	view.Pagination = &ctl

	return render(c, fiber.StatusOK, "list", view)
}

func isUnauthorized(err error) bool {
	return apierror.Classify(err).Kind == apierror.KindUnauthorized
}
