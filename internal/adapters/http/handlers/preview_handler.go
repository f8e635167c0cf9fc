package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"clinic-console/internal/adapters/http/middleware"
)

// PreviewHandler serves asset previews to the session that owns them
type PreviewHandler struct {
	deps *Deps
}

// NewPreviewHandler creates a new preview handler
func NewPreviewHandler(deps *Deps) *PreviewHandler {
	return &PreviewHandler{deps: deps}
}

// Show writes the preview bytes. Previews of other sessions are not found.
func (h *PreviewHandler) Show(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	item, err := h.deps.Previews.Get(c.Params("id"))
	if err != nil || !h.deps.Previews.Open(item.Scope, sess.Owner) {
		return fiber.ErrNotFound
	}

	c.Set(fiber.HeaderContentType, item.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	return c.Send(item.Data)
}

// ReleaseScope drops every preview of a form that was cancelled and returns
// to the form's back target
func (h *PreviewHandler) ReleaseScope(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	scope := c.Params("scope")
	if h.deps.Previews.Open(scope, sess.Owner) {
		n := h.deps.Previews.ReleaseScope(scope)
		h.deps.Logger.Debug("preview scope released", zap.String("scope", scope), zap.Int("previews", n))
	}

	values, _, err := submitted(c)
	if err != nil {
		return fiber.ErrBadRequest
	}
	return c.Redirect(localTarget(values.Get("next"), DashboardPath), fiber.StatusSeeOther)
}
