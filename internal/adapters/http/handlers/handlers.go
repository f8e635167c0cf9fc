package handlers

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"clinic-console/internal/adapters/backend"
	"clinic-console/internal/adapters/cache"
	"clinic-console/internal/adapters/http/middleware"
	"clinic-console/internal/adapters/http/views"
	"clinic-console/internal/config"
	"clinic-console/internal/core/address"
	"clinic-console/internal/core/descriptor"
	"clinic-console/internal/core/domain"
	"clinic-console/internal/core/form"
	"clinic-console/internal/core/preview"
	"clinic-console/internal/pkg/apierror"
	"clinic-console/internal/pkg/listquery"
)

// Deps are the collaborators shared by every handler
type Deps struct {
	Config    *config.Config
	Client    *backend.Client
	Cookies   *middleware.SessionCookies
	Previews  *preview.Store
	Snapshots cache.SnapshotStore
	Directory address.Directory
	Logger    *zap.Logger
}

// rolesQuery fetches every role for filter and form options
var rolesQuery = url.Values{"page": {"1"}, "limit": {"1000"}}

// newPage builds the layout part of a view
func newPage(c *fiber.Ctx, title string, flash listquery.Flash) views.Page {
	p := views.Page{Title: title, Notice: flash.Notice, Error: flash.Error}
	if s := middleware.CurrentSession(c); s != nil {
		p.User = s.User
		p.Nav = navigation(c.Path())
	}
	return p
}

// render writes a page inside the layout
func render(c *fiber.Ctx, status int, name string, data any) error {
	return c.Status(status).Render(name, data, views.Layout)
}

// expire ends the session after the backend rejected its token
func (d *Deps) expire(c *fiber.Ctx) error {
	if s := middleware.CurrentSession(c); s != nil {
		d.Previews.ReleaseOwner(s.Owner)
	}
	d.Cookies.Clear(c)
	return c.Redirect(listquery.WithFlash(middleware.LoginPath, listquery.Flash{Error: middleware.MsgSessionExpired}), fiber.StatusSeeOther)
}

// loadOptions loads the named option sets. Roles are fetched once no matter
// how many sets need them.
func (d *Deps) loadOptions(ctx context.Context, sess *middleware.Session, names []string) (map[string]form.OptionSet, error) {
	sets := make(map[string]form.OptionSet, len(names))

	var roles []domain.Role
	rolesLoaded := false
	for _, name := range names {
		switch name {
		case descriptor.OptionServiceCategories:
			sets[name] = form.ServiceCategoryOptions()
		case descriptor.OptionFileTypes:
			sets[name] = form.FileTypeOptions()
		case descriptor.OptionRoleKeys, descriptor.OptionRoleIDs:
			if !rolesLoaded {
				if _, err := sess.Backend.List(ctx, descriptor.Roles.Endpoint, descriptor.Roles.ListKey, rolesQuery, &roles); err != nil {
					return nil, err
				}
				rolesLoaded = true
			}
			sets[name] = roleOptions(roles, name == descriptor.OptionRoleKeys)
		default:
			return nil, domain.ErrUnknownEntity
		}
	}
	return sets, nil
}

func roleOptions(roles []domain.Role, byKey bool) form.OptionSet {
	opts := make([]form.Option, 0, len(roles))
	for _, r := range roles {
		v := domain.FormatID(r.ID)
		if byKey {
			v = r.Key
		}
		opts = append(opts, form.Option{Value: v, Label: r.Name})
	}
	return form.Loaded(opts)
}

// submitted returns the posted values and, for multipart bodies, the files
func submitted(c *fiber.Ctx) (url.Values, *multipart.Form, error) {
	mediaType, _, _ := mime.ParseMediaType(string(c.Request().Header.ContentType()))
	if mediaType == fiber.MIMEMultipartForm {
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		return url.Values(mf.Value), mf, nil
	}
	values, err := url.ParseQuery(string(c.Body()))
	return values, nil, err
}

// failureNotice is the notice of a failure that carries no field errors
func failureNotice(err error) string {
	var appErr *apierror.ApplicationError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	switch apierror.Classify(err).Kind {
	case apierror.KindNetwork:
		return apierror.MsgDisconnected
	default:
		return apierror.MsgGeneric
	}
}

// localTarget accepts only same-origin paths
func localTarget(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	return target
}
