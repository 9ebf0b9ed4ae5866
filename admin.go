package blogfront

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leadcontact/blogfront/analytics"
	"github.com/leadcontact/blogfront/seo"
	"github.com/leadcontact/blogfront/views"
)

// adminLayout is the page shell for admin pages. Admin pages are never
// indexed and never tracked.
func (a *App) adminLayout(c echo.Context, title string) views.Layout {
	l := a.layout(c, seo.Simple(a.site, title+" | "+a.Config.Name))
	l.Analytics = views.Analytics{}
	return l
}

func (a *App) handleAdmin(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/analytics")
	}
	return Render(c, a.Views.AdminLogin(a.adminLayout(c, "Admin"), views.LoginPage{CSRF: CsrfToken(c)}))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		a.Log.Warn().Str("ip", ip).Msg("admin login rate limited")
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.AdminLogin(
			a.adminLayout(c, "Admin"),
			views.LoginPage{CSRF: CsrfToken(c), Locked: true},
		))
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/analytics")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(
		a.adminLayout(c, "Admin"),
		views.LoginPage{CSRF: CsrfToken(c), ShowError: true},
	))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (a *App) handleAdminAnalytics(c echo.Context) error {
	data := views.DashboardPage{
		CSRF:    CsrfToken(c),
		Periods: analytics.Periods,
		Enabled: a.analytics != nil,
	}
	if a.analytics != nil {
		snap, err := a.analytics.Snapshot(c.Request().Context(), c.QueryParam("period"))
		if err != nil {
			return err
		}
		data.Period = snap.Period.Name
		data.Stats = snap.Stats
		data.Bots = snap.Bots
		data.Realtime = snap.Realtime
	}
	return Render(c, a.Views.AdminAnalytics(a.adminLayout(c, "Analytics"), data))
}
