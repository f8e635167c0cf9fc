// Package views holds the console's html templates.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html layouts/*.html partials/*.html
var FS embed.FS

// Layout wraps every page
const Layout = "layouts/main"

// NewEngine returns the template engine over the embedded templates
func NewEngine() *html.Engine {
	return html.NewFileSystem(http.FS(FS), ".html")
}
