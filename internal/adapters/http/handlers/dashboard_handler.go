package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"clinic-console/internal/adapters/http/views"
	"clinic-console/internal/core/descriptor"
	"clinic-console/internal/pkg/listquery"
)

// DashboardPath is the landing page after login
const DashboardPath = "/dashboard"

type section struct {
	label string
	href  string
	// prefix marks the link active for every page below it
	prefix string
}

var sections = []section{
	{label: "Patients", href: descriptor.Patients.Landing(), prefix: "/dashboard/patients"},
	{label: "System Users", href: descriptor.SystemUsers.Landing(), prefix: "/dashboard/users/system-users"},
	{label: "Roles", href: descriptor.Roles.Landing(), prefix: "/dashboard/users/roles"},
	{label: "Services", href: descriptor.Services.Landing(), prefix: "/dashboard/services"},
	{label: "Document Types", href: descriptor.DocumentTypes.Landing(), prefix: "/dashboard/settings/document-types"},
	{label: "Health Service Details", href: descriptor.StoreSettings.EditBase, prefix: descriptor.StoreSettings.EditBase},
	{label: "Profile", href: descriptor.Profile.EditBase, prefix: descriptor.Profile.EditBase},
}

func navigation(path string) []views.NavItem {
	items := []views.NavItem{{Label: "Dashboard", Href: DashboardPath, Active: path == DashboardPath}}
	for _, s := range sections {
		items = append(items, views.NavItem{Label: s.label, Href: s.href, Active: strings.HasPrefix(path, s.prefix)})
	}
	return items
}

// DashboardHandler serves the console home page
type DashboardHandler struct {
	deps *Deps
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(deps *Deps) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

// Home lists the console sections
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	_, flash := listquery.ParseRaw(string(c.Request().URI().QueryString()), listquery.Spec{})
	page := newPage(c, "Dashboard", flash)
	return render(c, fiber.StatusOK, "home", views.Home{Page: page, Sections: navigation(c.Path())[1:]})
}
