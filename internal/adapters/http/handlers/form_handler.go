package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"clinic-console/internal/adapters/http/middleware"
	"clinic-console/internal/adapters/http/views"
	"clinic-console/internal/core/address"
	"clinic-console/internal/core/descriptor"
	"clinic-console/internal/core/domain"
	"clinic-console/internal/core/form"
	"clinic-console/internal/pkg/apierror"
	"clinic-console/internal/pkg/listquery"
)

// Hidden inputs that carry form state across a re-render
const (
	inputScope   = "_scope"
	inputCascade = "_cascade"
	inputRegion  = "_region."
	assetPrefix  = "_asset."
)

// MsgFileTooLarge is the field error of an upload over the preview limit
const MsgFileTooLarge = "File is too large."

// RecordID picks the record a form edits out of the request
type RecordID func(c *fiber.Ctx) string

// ParamID reads the :id route parameter
func ParamID(c *fiber.Ctx) string { return c.Params("id") }

// CurrentUserID edits the signed-in user
func CurrentUserID(c *fiber.Ctx) string {
	if s := middleware.CurrentSession(c); s != nil && s.User != nil {
		return domain.FormatID(s.User.ID)
	}
	return ""
}

// NoID is used by forms over a single record, such as the store
func NoID(*fiber.Ctx) string { return "" }

// FormHandler serves the create and edit pages of one form
type FormHandler struct {
	deps *Deps
	form descriptor.Form
	id   RecordID
}

// NewFormHandler creates a form handler. id resolves the edited record.
func NewFormHandler(deps *Deps, f descriptor.Form, id RecordID) *FormHandler {
	return &FormHandler{deps: deps, form: f, id: id}
}

// New renders an empty create form
func (h *FormHandler) New(c *fiber.Ctx) error {
	return h.show(c, form.ModeCreate)
}

// Edit renders the edit form once its record is loaded. Until then, or when
// loading fails, the form is rendered disabled.
func (h *FormHandler) Edit(c *fiber.Ctx) error {
	return h.show(c, form.ModeEdit)
}

// Create submits a create form
func (h *FormHandler) Create(c *fiber.Ctx) error {
	return h.submit(c, form.ModeCreate)
}

// Update submits an edit form
func (h *FormHandler) Update(c *fiber.Ctx) error {
	return h.submit(c, form.ModeEdit)
}

func (h *FormHandler) show(c *fiber.Ctx, mode form.Mode) error {
	ctx := c.Context()
	sess := middleware.CurrentSession(c)
	_, flash := listquery.ParseRaw(string(c.Request().URI().QueryString()), listquery.Spec{})
	page := newPage(c, h.form.Title, flash)

	st := h.open(mode)
	st.Scope = h.deps.Previews.NewScope(sess.Owner)

	if err := h.options(ctx, sess, st); err != nil {
		if isUnauthorized(err) {
			return h.deps.expire(c)
		}
		page.Error = failureNotice(err)
	}

	if mode == form.ModeEdit {
		if !h.form.Loads() {
			st.MarkHydrated()
		} else if err := h.hydrate(ctx, sess, st, h.id(c)); err != nil {
			switch {
			case isUnauthorized(err):
				return h.deps.expire(c)
			case errors.Is(err, domain.ErrNotFound):
				return fiber.ErrNotFound
			}
			h.deps.Logger.Warn("load form record failed",
				zap.String("form", h.form.Entity),
				zap.Error(err),
			)
			page.Error = failureNotice(err)
		}
	}

	return h.render(c, fiber.StatusOK, page, st, h.action(c, mode))
}

func (h *FormHandler) submit(c *fiber.Ctx, mode form.Mode) error {
	values, mf, err := submitted(c)
	if err != nil {
		return fiber.ErrBadRequest
	}

	ctx := c.Context()
	sess := middleware.CurrentSession(c)
	page := newPage(c, h.form.Title, listquery.Flash{})

	st := h.open(mode)
	st.Scope = values.Get(inputScope)
	if st.Scope == "" || !h.deps.Previews.Open(st.Scope, sess.Owner) {
		st.Scope = h.deps.Previews.NewScope(sess.Owner)
	}
	// the submitted values stand in for the record
	st.MarkHydrated()

	if err := h.options(ctx, sess, st); err != nil {
		if isUnauthorized(err) {
			return h.deps.expire(c)
		}
		page.Error = failureNotice(err)
	}

	cascade := address.Level(values.Get(inputCascade))
	if st.Address != nil {
		st.Address.Replay(address.Pick{
			ProvinceID:     values.Get(form.KeyProvince),
			MunicipalityID: values.Get(form.KeyMunicipality),
			BarangayID:     values.Get(form.KeyBarangay),
			Province:       values.Get(inputRegion + form.KeyProvince),
			Municipality:   values.Get(inputRegion + form.KeyMunicipality),
			Barangay:       values.Get(inputRegion + form.KeyBarangay),
		}, cascade)
	}
	st.Bind(values)
	h.restoreAssets(st, values, mf)

	action := h.action(c, mode)
	if cascade != address.LevelNone {
		return h.render(c, fiber.StatusOK, page, st, action)
	}
	if st.HasErrors() {
		return h.render(c, fiber.StatusUnprocessableEntity, page, st, action)
	}

	method, target := http.MethodPost, h.form.CreateEndpoint
	if mode == form.ModeEdit {
		method, target = http.MethodPatch, h.form.UpdatePath(h.id(c))
	}

	data, err := sess.Backend.Send(ctx, method, target, st.Payload())
	if err != nil {
		return h.rejected(c, err, page, st, action)
	}

	st.ClearErrors()
	h.deps.Previews.ReleaseScope(st.Scope)

	next := h.form.Back
	if mode == form.ModeCreate && h.form.Next != nil {
		if rec, err := form.DecodeRecord(data); err == nil {
			if n := h.form.Next(rec); n != "" {
				next = n
			}
		}
	}
	return c.Redirect(listquery.WithFlash(next, listquery.Flash{Notice: h.form.Success(st.Values, mode)}), fiber.StatusSeeOther)
}

// rejected maps a failed submit onto the form and re-renders it
func (h *FormHandler) rejected(c *fiber.Ctx, err error, page views.Page, st *form.State, action string) error {
	status := fiber.StatusBadGateway
	expired := false

	apierror.Dispatch(err, apierror.Handlers{
		OnBadRequest: func(validationErrors map[string]string, message string) {
			status = fiber.StatusUnprocessableEntity
			unmatched := st.ApplyValidationErrors(validationErrors)
			switch {
			case message != "":
				page.Error = message
			case len(unmatched) > 0:
				page.Error = apierror.Summary(unmatched)
			default:
				page.Error = h.form.InvalidNotice()
			}
		},
		OnUnauthorized: func() {
			if h.form.UnauthorizedField == "" {
				expired = true
				return
			}
			status = fiber.StatusUnprocessableEntity
			st.SetError(h.form.UnauthorizedField, h.form.UnauthorizedMessage)
			page.Error = h.form.InvalidNotice()
		},
		OnNonHTTP: func(err error) {
			page.Error = failureNotice(err)
		},
		Notify: func(message string) {
			page.Error = message
		},
	})
	if expired {
		return h.deps.expire(c)
	}

	h.deps.Logger.Info("submit rejected",
		zap.String("form", h.form.Entity),
		zap.Int("status", apierror.Classify(err).Status),
		zap.Error(err),
	)
	return h.render(c, status, page, st, action)
}

func (h *FormHandler) open(mode form.Mode) *form.State {
	st := form.New(mode, h.form.Fields)
	if h.form.HasAddress() {
		st.Address = address.NewSelector(h.deps.Directory)
	}
	return st
}

func (h *FormHandler) options(ctx context.Context, sess *middleware.Session, st *form.State) error {
	names := h.form.OptionSets()
	if len(names) == 0 {
		return nil
	}
	sets, err := h.deps.loadOptions(ctx, sess, names)
	if err != nil {
		return err
	}
	for name, set := range sets {
		st.SetOptions(name, set)
	}
	return nil
}

// hydrate fetches the record and turns its persisted files into previews
func (h *FormHandler) hydrate(ctx context.Context, sess *middleware.Session, st *form.State, id string) error {
	var raw json.RawMessage
	if err := sess.Backend.Get(ctx, h.form.Resource(id), h.form.ItemKey, &raw); err != nil {
		return err
	}
	rec, err := form.DecodeRecord(raw)
	if err != nil {
		return err
	}
	st.Hydrate(rec)

	for _, f := range st.Fields {
		a := st.Asset(f.Name)
		if !f.IsAsset() || a.Filename == "" {
			continue
		}
		data, ctype, err := h.deps.Client.FetchAsset(ctx, f.AssetDir, a.Filename)
		if err != nil {
			h.deps.Logger.Warn("fetch asset failed",
				zap.String("dir", f.AssetDir),
				zap.String("filename", a.Filename),
				zap.Error(err),
			)
			continue
		}
		if a.PreviewID, err = h.deps.Previews.Acquire(st.Scope, data, ctype); err != nil {
			h.deps.Logger.Warn("preview asset failed", zap.String("filename", a.Filename), zap.Error(err))
		}
	}
	return nil
}

// restoreAssets rebuilds the asset slots from the hidden inputs and applies
// newly uploaded files. A new file releases the preview it replaces.
func (h *FormHandler) restoreAssets(st *form.State, values url.Values, mf *multipart.Form) {
	for _, f := range st.Fields {
		if !f.IsAsset() {
			continue
		}
		a := st.Asset(f.Name)
		key := assetPrefix + f.Name + "."
		a.Filename = values.Get(key + "filename")

		if id := values.Get(key + "preview"); id != "" {
			if item, err := h.deps.Previews.Get(id); err == nil && item.Scope == st.Scope {
				a.PreviewID = id
				if values.Get(key+"local") != "" {
					a.Local = &form.LocalFile{Filename: values.Get(key + "localname"), ContentType: item.ContentType, Data: item.Data}
				}
			}
		}

		if mf == nil || len(mf.File[f.Name]) == 0 || mf.File[f.Name][0].Size == 0 {
			continue
		}
		local, err := readUpload(mf.File[f.Name][0])
		if err != nil {
			h.deps.Logger.Warn("read upload failed", zap.String("field", f.Name), zap.Error(err))
			continue
		}
		id, err := h.deps.Previews.Acquire(st.Scope, local.Data, local.ContentType)
		if err != nil {
			if errors.Is(err, domain.ErrPreviewTooLarge) {
				st.SetError(f.Name, MsgFileTooLarge)
			}
			continue
		}
		if a.PreviewID != "" {
			h.deps.Previews.Release(a.PreviewID)
		}
		a.Choose(local, id)
	}
}

func readUpload(fh *multipart.FileHeader) (*form.LocalFile, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	ctype := fh.Header.Get(fiber.HeaderContentType)
	if ctype == "" || ctype == fiber.MIMEOctetStream {
		ctype = http.DetectContentType(data)
	}
	return &form.LocalFile{Filename: fh.Filename, ContentType: ctype, Data: data}, nil
}

func (h *FormHandler) action(c *fiber.Ctx, mode form.Mode) string {
	if mode == form.ModeCreate {
		return h.form.CreatePath
	}
	if id := c.Params("id"); id != "" {
		return h.form.EditBase + "/" + url.PathEscape(id)
	}
	return h.form.EditBase
}

func (h *FormHandler) render(c *fiber.Ctx, status int, page views.Page, st *form.State, action string) error {
	view := views.Form{
		Page:      page,
		Action:    action,
		Back:      h.form.Back,
		Scope:     st.Scope,
		Multipart: st.HasAssetFields(),
		Disabled:  st.Disabled(),
		Fields:    lo.Map(st.Fields, func(f form.Field, _ int) views.Field { return fieldView(st, f) }),
	}
	return render(c, status, "form", view)
}
