package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"clinic-console/internal/adapters/cache"
	"clinic-console/internal/adapters/http/middleware"
	"clinic-console/internal/adapters/http/views"
	"clinic-console/internal/core/descriptor"
	"clinic-console/internal/core/form"
	"clinic-console/internal/pkg/apierror"
	"clinic-console/internal/pkg/listquery"
)

// Login notices
const (
	MsgLoginFailed      = "Unable to login."
	MsgWrongCredentials = "Email or Password is incorrect."
	MsgLoggedOut        = "You have been logged out."
)

var loginFields = []form.Field{
	{Name: "email", Label: "Email", Kind: form.KindEmail, Required: true},
	{Name: "password", Label: "Password", Kind: form.KindPassword, Required: true},
}

// snapshotEntities are the list snapshots dropped on logout
var snapshotEntities = []string{
	descriptor.Patients.Entity,
	descriptor.SystemUsers.Entity,
	descriptor.Roles.Entity,
	descriptor.Services.Entity,
	descriptor.DocumentTypes.Entity,
}

// AuthHandler handles login and logout
type AuthHandler struct {
	deps *Deps
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(deps *Deps) *AuthHandler {
	return &AuthHandler{deps: deps}
}

// ShowLogin renders the login form
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	_, flash := listquery.ParseRaw(string(c.Request().URI().QueryString()), listquery.Spec{})
	return h.render(c, fiber.StatusOK, newPage(c, "Login", flash), form.New(form.ModeCreate, loginFields))
}

// Login exchanges the credentials for a backend token and stores it sealed in
// the session cookie
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	values, _, err := submitted(c)
	if err != nil {
		return fiber.ErrBadRequest
	}

	st := form.New(form.ModeCreate, loginFields)
	st.Bind(values)

	page := newPage(c, "Login", listquery.Flash{})
	token, err := h.deps.Client.Login(c.Context(), st.Get("email"), st.Get("password"))
	if err != nil {
		status := fiber.StatusUnprocessableEntity
		apierror.Dispatch(err, apierror.Handlers{
			OnBadRequest: func(validationErrors map[string]string, _ string) {
				st.ApplyValidationErrors(validationErrors)
				page.Error = MsgLoginFailed
			},
			OnUnauthorized: func() {
				st.SetError("email", MsgWrongCredentials)
				page.Error = MsgLoginFailed
			},
			OnNonHTTP: func(err error) {
				status = fiber.StatusBadGateway
				page.Error = failureNotice(err)
			},
			Notify: func(message string) {
				status = fiber.StatusBadGateway
				page.Error = message
			},
		})
		h.deps.Logger.Info("login failed", zap.String("email", st.Get("email")), zap.Error(err))
		return h.render(c, status, page, st)
	}

	if err := h.deps.Cookies.Set(c, token); err != nil {
		return err
	}
	return c.Redirect(DashboardPath, fiber.StatusSeeOther)
}

// Logout releases everything the session holds and clears the cookie
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token, err := h.deps.Cookies.Token(c); err == nil {
		owner := middleware.OwnerOf(token)
		released := h.deps.Previews.ReleaseOwner(owner)
		h.dropSnapshots(c.Context(), owner)
		h.deps.Logger.Debug("session closed", zap.Int("previews_released", released))
	}
	h.deps.Cookies.Clear(c)
	return c.Redirect(listquery.WithFlash(middleware.LoginPath, listquery.Flash{Notice: MsgLoggedOut}), fiber.StatusSeeOther)
}

func (h *AuthHandler) dropSnapshots(ctx context.Context, owner string) {
	keys := lo.Map(snapshotEntities, func(entity string, _ int) string { return cache.Key(owner, entity) })
	if err := h.deps.Snapshots.Delete(ctx, keys...); err != nil {
		h.deps.Logger.Warn("drop list snapshots failed", zap.Error(err))
	}
}

func (h *AuthHandler) render(c *fiber.Ctx, status int, page views.Page, st *form.State) error {
	view := views.Login{
		Page:   page,
		Fields: lo.Map(st.Fields, func(f form.Field, _ int) views.Field { return fieldView(st, f) }),
	}
	return render(c, status, "login", view)
}
