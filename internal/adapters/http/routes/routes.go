package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"clinic-console/internal/adapters/http/handlers"
	"clinic-console/internal/adapters/http/middleware"
	"clinic-console/internal/adapters/http/views"
	"clinic-console/internal/core/descriptor"
)

// NewApp builds the Fiber app with its middlewares and routes
func NewApp(deps *handlers.Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Clinic Console",
		Views:        views.NewEngine(),
		ErrorHandler: middleware.ErrorHandler(deps.Logger),
		// room for one maximal preview plus the other fields
		BodyLimit: int(deps.Config.Preview.MaxBytes) + 1<<20,
	})

	middleware.Setup(app, deps.Config)
	Setup(app, deps)
	return app
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps *handlers.Deps) {
	healthHandler := handlers.NewHealthHandler(deps)
	authHandler := handlers.NewAuthHandler(deps)
	dashboardHandler := handlers.NewDashboardHandler(deps)
	previewHandler := handlers.NewPreviewHandler(deps)

	// ============================================================
	// Public
	// ============================================================
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(handlers.DashboardPath, fiber.StatusFound)
	})

	app.Get(middleware.LoginPath, middleware.GuestOnly(deps.Cookies), authHandler.ShowLogin)
	app.Post(middleware.LoginPath, middleware.AuthRateLimiter(), authHandler.Login)
	app.Post("/logout", authHandler.Logout)

	// ============================================================
	// Session required
	// ============================================================
	auth := middleware.AuthMiddleware(deps.Cookies, deps.Client, deps.Logger)

	previews := app.Group("/previews", auth)
	previews.Get("/:id", previewHandler.Show)
	previews.Post("/scopes/:scope/release", previewHandler.ReleaseScope)

	dashboard := app.Group(handlers.DashboardPath, auth)
	dashboard.Get("/", dashboardHandler.Home)

	// Lists come first so their static paths win over the :id edit routes
	registerList(dashboard, handlers.NewListHandler(deps, descriptor.Patients))
	registerList(dashboard, handlers.NewListHandler(deps, descriptor.SystemUsers))
	registerList(dashboard, handlers.NewListHandler(deps, descriptor.Roles))
	registerList(dashboard, handlers.NewListHandler(deps, descriptor.Services))
	registerList(dashboard, handlers.NewListHandler(deps, descriptor.DocumentTypes))

	registerForm(dashboard, deps, descriptor.PatientDemographics)
	registerForm(dashboard, deps, descriptor.PatientAdditionalData)
	registerForm(dashboard, deps, descriptor.SystemUser)
	registerForm(dashboard, deps, descriptor.Role)
	registerForm(dashboard, deps, descriptor.Service)
	registerForm(dashboard, deps, descriptor.DocumentType)

	// Forms over a single record
	registerSingleton(dashboard, handlers.NewFormHandler(deps, descriptor.Profile, handlers.CurrentUserID), descriptor.Profile)
	registerSingleton(dashboard, handlers.NewFormHandler(deps, descriptor.Password, handlers.NoID), descriptor.Password)
	registerSingleton(dashboard, handlers.NewFormHandler(deps, descriptor.StoreSettings, handlers.NoID), descriptor.StoreSettings)
}

// registerList mounts a list page and its actions. Paths are absolute console
// paths below the dashboard group.
func registerList[T any](r fiber.Router, h *handlers.ListHandler[T]) {
	path := relative(h.Path())
	r.Get(path, h.Index)
	r.Get(path+"/export", h.Export)
	r.Post(path+"/search", h.Search)
	r.Post(path+"/search/clear", h.ClearSearch)
	r.Post(path+"/filter", h.Filter)
	r.Post(path+"/filter/clear", h.ClearFilters)
	r.Post(path+"/:id/delete", h.Delete)
}

// registerForm mounts the create route, when the form has one, before the
// edit route so a static create path is never taken for an id
func registerForm(r fiber.Router, deps *handlers.Deps, f descriptor.Form) {
	h := handlers.NewFormHandler(deps, f, handlers.ParamID)
	if f.CreatePath != "" {
		r.Get(relative(f.CreatePath), h.New)
		r.Post(relative(f.CreatePath), h.Create)
	}
	r.Get(relative(f.EditBase)+"/:id", h.Edit)
	r.Post(relative(f.EditBase)+"/:id", h.Update)
}

func registerSingleton(r fiber.Router, h *handlers.FormHandler, f descriptor.Form) {
	r.Get(relative(f.EditBase), h.Edit)
	r.Post(relative(f.EditBase), h.Update)
}

func relative(path string) string {
	return strings.TrimPrefix(path, handlers.DashboardPath)
}
