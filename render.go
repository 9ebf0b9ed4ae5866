package blogfront

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/leadcontact/blogfront/seo"
	"github.com/leadcontact/blogfront/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderBytes renders cmp into memory, for the page cache.
func renderBytes(c echo.Context, cmp templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// layout builds the page shell for the current request.
func (a *App) layout(c echo.Context, meta seo.Meta) views.Layout {
	return views.Layout{
		SiteName: a.Config.Name,
		Meta:     meta,
		Header:   views.NewHeaderState(c.Request().URL.Path, c.QueryParam("menu")),
		Analytics: views.Analytics{
			GoogleID:   a.Config.GAMeasurementID,
			Scripts:    validScripts(a.Config.AnalyticsScripts),
			FirstParty: a.analytics != nil,
		},
	}
}
