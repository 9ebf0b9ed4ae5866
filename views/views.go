// Package views renders the site's HTML pages. Pages are html/template files
// embedded in the binary and exposed as templ components.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

// page template names
const (
	pageBlogList       = "blog_list.html"
	pagePost           = "post.html"
	pageNotFound       = "not_found.html"
	pageServerError    = "server_error.html"
	pageAdminLogin     = "admin_login.html"
	pageAdminAnalytics = "admin_analytics.html"
)

var pages = []string{
	pageBlogList,
	pagePost,
	pageNotFound,
	pageServerError,
	pageAdminLogin,
	pageAdminAnalytics,
}

// view is the root value every template executes against.
type view struct {
	Layout
	Chrome Chrome
	Body   any
}

// Engine holds the parsed page templates together with the chrome and author
// roster they render.
type Engine struct {
	chrome    Chrome
	templates map[string]*template.Template
}

// NewEngine parses the embedded templates. Each page is parsed together with
// the layout so that the layout wraps every page.
func NewEngine(chrome Chrome, roster Roster) (*Engine, error) {
	funcs := templateFuncs(roster)
	e := &Engine{
		chrome:    chrome,
		templates: make(map[string]*template.Template, len(pages)),
	}
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", page, err)
		}
		e.templates[page] = t
	}
	return e, nil
}

// Chrome returns the page furniture the engine renders.
func (e *Engine) Chrome() Chrome {
	return e.chrome
}

func (e *Engine) component(name string, layout Layout, body any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := e.templates[name]
		if !ok {
			return fmt.Errorf("views: template %q not found", name)
		}
		// Render into a buffer so a failing template never leaves a
		// half-written page behind.
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, "layout.html", view{Layout: layout, Chrome: e.chrome, Body: body}); err != nil {
			return fmt.Errorf("views: render %s: %w", name, err)
		}
		_, err := buf.WriteTo(w)
		return err
	})
}

// BlogList renders the paginated blog index.
func (e *Engine) BlogList(layout Layout, data ListPage) templ.Component {
	return e.component(pageBlogList, layout, data)
}

// Post renders a single post.
func (e *Engine) Post(layout Layout, data PostPage) templ.Component {
	return e.component(pagePost, layout, data)
}

// NotFound renders the 404 page.
func (e *Engine) NotFound(layout Layout) templ.Component {
	return e.component(pageNotFound, layout, ErrorPage{Message: "The page you are looking for does not exist."})
}

// ServerError renders the 500 page.
func (e *Engine) ServerError(layout Layout) templ.Component {
	return e.component(pageServerError, layout, ErrorPage{Message: "Something went wrong. Please try again later."})
}

// AdminLogin renders the admin login form.
func (e *Engine) AdminLogin(layout Layout, data LoginPage) templ.Component {
	return e.component(pageAdminLogin, layout, data)
}

// AdminAnalytics renders the analytics dashboard.
func (e *Engine) AdminAnalytics(layout Layout, data DashboardPage) templ.Component {
	return e.component(pageAdminAnalytics, layout, data)
}
