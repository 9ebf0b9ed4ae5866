package blogfront

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/leadcontact/blogfront/content"
	"github.com/leadcontact/blogfront/listing"
	"github.com/leadcontact/blogfront/seo"
	"github.com/leadcontact/blogfront/views"
)

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blog")
}

func (a *App) handleBlogList(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts := a.Posts.Posts()
	res := a.Listing.ListQuery(posts, tag, c.QueryParam("page"))

	key, cacheable := listCacheKey(res, c.QueryParam("menu") == "open")
	if cacheable {
		if body, ok := a.pages.Get(key); ok {
			return c.HTMLBlob(http.StatusOK, body)
		}
	}

	page := a.Views.BlogList(a.layout(c, seo.Listing(a.site, posts)), views.ListPage{
		Result: res,
		Recent: a.Posts.Recent(recentCount),
		Tags:   content.AllowedTags(),
	})
	if !cacheable {
		return Render(c, page)
	}
	body, err := renderBytes(c, page)
	if err != nil {
		return err
	}
	a.pages.Put(key, body)
	return c.HTMLBlob(http.StatusOK, body)
}

// listCacheKey keys a listing page by its query. Only the unfiltered listing
// and allow-listed tags within range are cached, which bounds the key space.
func listCacheKey(res listing.Result, menuOpen bool) (string, bool) {
	if res.Tag != "" && !content.IsAllowedTag(res.Tag) {
		return "", false
	}
	if res.Page > max(1, res.TotalPages) {
		return "", false
	}
	q := url.Values{}
	q.Set("tag", res.Tag)
	q.Set("page", strconv.Itoa(res.Page))
	if menuOpen {
		q.Set("menu", "open")
	}
	return "/blog?" + q.Encode(), true
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Posts.Get(c.Param("slug"))
	if errors.Is(err, content.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(a.layout(c, seo.Post(a.site, post)), views.PostPage{Post: post}))
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Posts.Posts())
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Posts.Posts())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		meta := seo.Simple(a.site, "Page not found | "+a.Config.Name)
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.layout(c, meta)))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("uri", c.Request().RequestURI).
			Msg("server error")
		meta := seo.Simple(a.site, "Something went wrong | "+a.Config.Name)
		_ = RenderStatus(c, code, a.Views.ServerError(a.layout(c, meta)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
