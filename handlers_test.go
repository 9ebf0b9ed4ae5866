package blogfront

import (
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPassword = "correct horse"
	testSecret   = "0123456789abcdef0123456789abcdef"
	videoSlug    = "how-to-find-email-on-linkedin-just-1-minute-with-leadcontact"
	browserUA    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/120.0 Safari/537.36"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, cfg SiteConfig, opts ...Option) *App {
	t.Helper()
	if cfg.URL == "" {
		cfg.URL = "https://example.com"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = t.TempDir()
	}
	cfg.AuthorSeed = 1
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	app, err := New(cfg, zerolog.Nop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func adminConfig() SiteConfig {
	return SiteConfig{AdminPassword: testPassword, SessionSecret: testSecret}
}

func do(app *App, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(app *App, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return do(app, httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRootRedirectsToBlog(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	rec := get(app, "/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog", rec.Header().Get(echo.HeaderLocation))
}

func TestTrailingSlashRedirect(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	rec := get(app, "/blog/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog", rec.Header().Get(echo.HeaderLocation))
}

func TestBlogList(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	rec := get(app, "/blog")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-src https://www.youtube.com")

	doc := document(t, rec)
	assert.Equal(t, 3, doc.Find("#recent article.card").Length())
	assert.Equal(t, 9, doc.Find("#all .grid article.card").Length())
	assert.Equal(t, 2, doc.Find(".pagination .page-btn").Length())
	assert.True(t, doc.Find(".pagination .prev").HasClass("page-nav--disabled"))
	assert.False(t, doc.Find(".pagination .next").HasClass("page-nav--disabled"))
	assert.Equal(t, "All", strings.TrimSpace(doc.Find("#all > .tags-bar a.tag-pill--active").Text()))
	assert.True(t, doc.Find(".nav-item--active").Length() > 0)

	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://example.com/blog", canonical)
}

func TestBlogListTagFilter(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	doc := document(t, get(app, "/blog?tag=Email"))

	assert.Equal(t, 6, doc.Find("#all .grid article.card").Length())
	assert.Equal(t, "Email", strings.TrimSpace(doc.Find("#all > .tags-bar a.tag-pill--active").Text()))
	assert.Equal(t, 1, doc.Find(".pagination .page-btn").Length())
	assert.True(t, doc.Find(".pagination .next").HasClass("page-nav--disabled"))
}

func TestBlogListSecondPage(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	doc := document(t, get(app, "/blog?page=2"))

	assert.Equal(t, 3, doc.Find("#all .grid article.card").Length())
	assert.True(t, doc.Find(".pagination .next").HasClass("page-nav--disabled"))
	href, _ := doc.Find(".pagination .prev").Attr("href")
	assert.Equal(t, "/blog?page=1", href)
	assert.Equal(t, "2", strings.TrimSpace(doc.Find(".page-btn--active").Text()))
}

func TestBlogListOutOfRangeAndInvalidPage(t *testing.T) {
	app := newTestApp(t, SiteConfig{})

	rec := get(app, "/blog?page=5")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	assert.Equal(t, "No posts found.", strings.TrimSpace(doc.Find("#all p.empty").Text()))

	doc = document(t, get(app, "/blog?page=abc"))
	assert.Equal(t, "1", strings.TrimSpace(doc.Find(".page-btn--active").Text()))

	doc = document(t, get(app, "/blog?tag=Unknown"))
	assert.Equal(t, "No posts found.", strings.TrimSpace(doc.Find("#all p.empty").Text()))
}

func TestBlogListHugePage(t *testing.T) {
	app := newTestApp(t, SiteConfig{})

	for _, page := range []string{"1152921504606846977", "9223372036854775807"} {
		rec := get(app, "/blog?page="+page)
		require.Equal(t, http.StatusOK, rec.Code, page)
		doc := document(t, rec)
		assert.Equal(t, "No posts found.", strings.TrimSpace(doc.Find("#all p.empty").Text()), page)
		href, _ := doc.Find(".pagination .next").Attr("href")
		assert.Equal(t, "/blog?page=2", href, page)
	}
}

func TestBlogListMenuOpen(t *testing.T) {
	app := newTestApp(t, SiteConfig{})

	doc := document(t, get(app, "/blog"))
	_, hidden := doc.Find("#mobile-drawer").Attr("hidden")
	assert.True(t, hidden)

	doc = document(t, get(app, "/blog?menu=open"))
	_, hidden = doc.Find("#mobile-drawer").Attr("hidden")
	assert.False(t, hidden)
}

func TestBlogListPageCache(t *testing.T) {
	app := newTestApp(t, SiteConfig{})

	first := get(app, "/blog?tag=Email").Body.String()
	assert.Equal(t, 1, app.pages.Len())
	assert.Equal(t, first, get(app, "/blog?tag=Email").Body.String())
	assert.Equal(t, 1, app.pages.Len())

	get(app, "/blog?page=9")
	get(app, "/blog?tag=crm")
	assert.Equal(t, 1, app.pages.Len())

	get(app, "/blog?menu=open")
	assert.Equal(t, 2, app.pages.Len())
}

func TestPostPage(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	post, err := app.Posts.Get(videoSlug)
	require.NoError(t, err)

	rec := get(app, "/blog/"+videoSlug)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)

	assert.Equal(t, post.Title+" | LeadContact Blog", doc.Find("title").Text())
	assert.Equal(t, 3, doc.Find(`script[type="application/ld+json"]`).Length())
	src, _ := doc.Find("iframe").Attr("src")
	assert.Equal(t, post.Video, src)
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://example.com/blog/"+videoSlug, canonical)
}

func TestPostNotFound(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	rec := get(app, "/blog/no-such-post")
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc := document(t, rec)
	assert.Equal(t, "404", doc.Find("main h1").Text())
	robots, _ := doc.Find(`meta[name="robots"]`).Attr("content")
	assert.Equal(t, "noindex", robots)
}

func TestServerErrorPage(t *testing.T) {
	app := newTestApp(t, SiteConfig{}, WithCustomRoutes(func(a *App) {
		a.Echo.GET("/boom", func(c echo.Context) error { return errors.New("boom") })
	}))
	rec := get(app, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "500", document(t, rec).Find("main h1").Text())
}

func TestSitemaps(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	posts := app.Posts.Posts()

	for _, path := range []string{"/sitemap.xml", "/blog/sitemap.xml"} {
		rec := get(app, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get(echo.HeaderContentType))

		var set sitemapURLSet
		require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &set))
		require.Len(t, set.URLs, len(posts)+1)
		assert.Equal(t, sitemapURL{Loc: "https://example.com/blog", ChangeFreq: "daily", Priority: "0.8"}, set.URLs[0])
		assert.Equal(t, sitemapURL{
			Loc:        "https://example.com/blog/" + posts[0].Slug,
			LastMod:    posts[0].Date,
			ChangeFreq: "monthly",
			Priority:   "0.7",
		}, set.URLs[1])
	}
}

func TestRobots(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	rec := get(app, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "User-agent: *\nAllow: /\nDisallow: /admin/\n")
	assert.Contains(t, body, "Host: https://example.com\n")
	assert.Contains(t, body, "Sitemap: https://example.com/sitemap.xml\n")
	assert.Contains(t, body, "Sitemap: https://example.com/blog/sitemap.xml\n")
}

func TestFeed(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	rec := get(app, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get(echo.HeaderContentType))

	var feed rssXML
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &feed))
	assert.Equal(t, "2.0", feed.Version)
	assert.Equal(t, "LeadContact Blog", feed.Channel.Title)
	require.Len(t, feed.Channel.Items, app.Posts.Len())
	assert.Equal(t, "https://example.com/blog/"+videoSlug, feed.Channel.Items[0].GUID)
	assert.NotEmpty(t, feed.Channel.Items[0].PubDate)
}

func TestAssets(t *testing.T) {
	static := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(static, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "assets", "note.txt"), []byte("hello"), 0o644))
	app := newTestApp(t, SiteConfig{StaticDir: static})

	rec := get(app, "/public/track.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))

	rec = get(app, "/assets/note.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	rec = get(app, "/_img?src=/assets/missing.png&w=640")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDisabledByDefault(t *testing.T) {
	app := newTestApp(t, SiteConfig{})
	assert.Equal(t, http.StatusNotFound, get(app, "/admin").Code)
	assert.Equal(t, http.StatusNotFound, get(app, "/admin/analytics").Code)
}

// loginForm fetches the login page and returns its CSRF token and cookie.
func loginForm(t *testing.T, app *App) (string, *http.Cookie) {
	t.Helper()
	rec := get(app, "/admin")
	require.Equal(t, http.StatusOK, rec.Code)
	token, ok := document(t, rec).Find(`input[name="_csrf"]`).Attr("value")
	require.True(t, ok)
	cookie := cookieNamed(rec, "_csrf")
	require.NotNil(t, cookie)
	return token, cookie
}

func postLogin(app *App, token, password string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	form := url.Values{"password": {password}}
	if token != "" {
		form.Set("_csrf", token)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return do(app, req, cookies...)
}

func login(t *testing.T, app *App) *http.Cookie {
	t.Helper()
	token, csrf := loginForm(t, app)
	rec := postLogin(app, token, testPassword, csrf)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/analytics", rec.Header().Get(echo.HeaderLocation))
	sess := cookieNamed(rec, sessionName)
	require.NotNil(t, sess)
	return sess
}

func TestAdminLoginFlow(t *testing.T) {
	app := newTestApp(t, adminConfig())

	rec := get(app, "/admin/analytics")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get(echo.HeaderLocation))

	token, csrf := loginForm(t, app)
	rec = postLogin(app, token, "wrong", csrf)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid password.", document(t, rec).Find(".alert").Text())

	sess := login(t, app)

	rec = get(app, "/admin/analytics", sess)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, document(t, rec).Find("p.empty").Text(), "analytics is disabled")

	rec = get(app, "/admin", sess)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/analytics", rec.Header().Get(echo.HeaderLocation))
}

func TestAdminLoginRequiresCSRF(t *testing.T) {
	app := newTestApp(t, adminConfig())
	rec := postLogin(app, "", testPassword)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminLoginRateLimited(t *testing.T) {
	app := newTestApp(t, adminConfig())
	token, csrf := loginForm(t, app)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusUnauthorized, postLogin(app, token, "wrong", csrf).Code)
	}
	rec := postLogin(app, token, testPassword, csrf)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, document(t, rec).Find(".alert").Text(), "Too many attempts")
}

func TestAdminLogout(t *testing.T) {
	app := newTestApp(t, adminConfig())
	sess := login(t, app)

	rec := get(app, "/admin/analytics", sess)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := document(t, rec).Find(`form[action="/admin/logout"] input[name="_csrf"]`).Attr("value")
	csrf := cookieNamed(rec, "_csrf")
	require.NotNil(t, csrf)

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", strings.NewReader(url.Values{"_csrf": {token}}.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = do(app, req, sess, csrf)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	cleared := cookieNamed(rec, sessionName)
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)
}

func TestFirstPartyAnalytics(t *testing.T) {
	cfg := adminConfig()
	cfg.AnalyticsDatabasePath = filepath.Join(t.TempDir(), "analytics.db")
	app := newTestApp(t, cfg)

	doc := document(t, get(app, "/blog"))
	assert.Equal(t, 1, doc.Find(`script[src="/public/track.js"]`).Length())

	req := httptest.NewRequest(http.MethodPost, "/api/track", strings.NewReader(`{"path":"/blog"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", browserUA)
	assert.Equal(t, http.StatusNoContent, do(app, req).Code)

	sess := login(t, app)
	rec := get(app, "/admin/analytics?period=today", sess)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = document(t, rec)
	assert.Equal(t, "1", doc.Find(".stats-totals div").First().Find("dd").Text())
	assert.Equal(t, 0, doc.Find(`script[src="/public/track.js"]`).Length())

	rec = get(app, "/admin/analytics/api/stats?period=today", sess)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_views":1`)
}

func TestAnalyticsStatsHiddenWithoutAdmin(t *testing.T) {
	app := newTestApp(t, SiteConfig{AnalyticsDatabasePath: filepath.Join(t.TempDir(), "analytics.db")})
	assert.Equal(t, http.StatusNotFound, get(app, "/admin/analytics/api/stats").Code)
}

func TestContentSecurityPolicy(t *testing.T) {
	app := newTestApp(t, SiteConfig{
		GAMeasurementID:  "G-TEST",
		AnalyticsScripts: []string{"https://cdn.example.net/a.js", "http://insecure.example/x.js"},
	})
	rec := get(app, "/blog")
	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self' https://www.googletagmanager.com https://cdn.example.net;")
	assert.NotContains(t, csp, "insecure.example")

	doc := document(t, rec)
	assert.Equal(t, 1, doc.Find(`script[src="https://cdn.example.net/a.js"]`).Length())
	assert.Equal(t, 0, doc.Find(`script[src="http://insecure.example/x.js"]`).Length())
	id, _ := doc.Find(`script[src="/public/gtag.js"]`).Attr("data-measurement-id")
	assert.Equal(t, "G-TEST", id)
}
