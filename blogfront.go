// Package blogfront serves the LeadContact blog: a paginated, tag-filtered
// listing, post pages with full SEO metadata, sitemaps, an RSS feed, and an
// optional first-party analytics dashboard.
//
// Posts come from a read-only JSON dataset loaded at startup. The page chrome
// (header, footer, call to action) comes from a YAML file.
package blogfront

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/leadcontact/blogfront/analytics"
	"github.com/leadcontact/blogfront/content"
	"github.com/leadcontact/blogfront/images"
	"github.com/leadcontact/blogfront/listing"
	"github.com/leadcontact/blogfront/seo"
	"github.com/leadcontact/blogfront/views"
)

// recentCount is how many posts the listing shows above the grid.
const recentCount = 3

// App is the central blogfront application. It wires together the dataset,
// views, handlers, middleware and the optional analytics store.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Log     zerolog.Logger
	Posts   *content.Dataset
	Views   *views.Engine
	Listing listing.Engine

	site           seo.Site
	resizer        *images.Resizer
	pages          *PageCache
	loginLimiter   *LoginLimiter
	analyticsStore *analytics.Store
	analytics      *analytics.Handler
	stopCleanup    func()
	customRoutes   []func(*App)
	now            func() time.Time
}

// New loads the dataset and chrome, then builds a ready-to-serve App. The
// returned App can be used as an http.Handler through its Echo field before
// Start is called.
func New(cfg SiteConfig, log zerolog.Logger, opts ...Option) (*App, error) {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Log:    log,
		now:    time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	if err := a.load(); err != nil {
		return nil, err
	}
	if err := a.setupAnalytics(); err != nil {
		return nil, err
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a, nil
}

func (a *App) load() error {
	var err error
	if a.Config.PostsPath != "" {
		a.Posts, err = content.LoadFile(a.Config.PostsPath)
	} else {
		a.Posts, err = content.Default()
	}
	if err != nil {
		return fmt.Errorf("blogfront: load posts: %w", err)
	}

	chrome := views.DefaultChrome()
	if a.Config.ChromePath != "" {
		if chrome, err = views.LoadChrome(a.Config.ChromePath); err != nil {
			return fmt.Errorf("blogfront: load chrome: %w", err)
		}
	}

	seed := a.Config.AuthorSeed
	if seed == 0 {
		seed = rand.Uint64()
	}
	roster := views.NewRoster(rand.New(rand.NewPCG(seed, seed)))

	if a.Views, err = views.NewEngine(chrome, roster); err != nil {
		return fmt.Errorf("blogfront: views: %w", err)
	}

	a.site = seo.Site{
		Name:               a.Config.Name,
		URL:                a.Config.URL,
		Description:        a.Config.Description,
		ArticleDescription: a.Config.ArticleDescription,
		Verification:       a.Config.Verification,
	}
	a.resizer = images.NewResizer(os.DirFS(a.Config.StaticDir))
	a.pages = NewPageCache(a.Config.PageCacheTTL, a.now)
	if a.Config.AdminEnabled() {
		a.loginLimiter = NewLoginLimiter(5, time.Minute, a.now)
	}

	a.Log.Info().
		Int("posts", a.Posts.Len()).
		Uint64("author_seed", seed).
		Msg("dataset loaded")
	return nil
}

func (a *App) setupAnalytics() error {
	if !a.Config.AnalyticsEnabled() {
		return nil
	}
	store, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
	if err != nil {
		return fmt.Errorf("blogfront: init analytics: %w", err)
	}
	salt, err := analytics.LoadSalt(context.Background(), store)
	if err != nil {
		store.Close()
		return fmt.Errorf("blogfront: init analytics salt: %w", err)
	}
	a.analyticsStore = store
	a.analytics = analytics.NewHandler(store, salt, a.Log.With().Str("component", "analytics").Logger())
	a.stopCleanup = store.StartCleanupScheduler(a.Config.AnalyticsRetention, 24*time.Hour, a.Log)
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Assets shipped with the binary.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/public/*", echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS)))))

	// Site-owned static files. The static dir is the web root for /assets.
	e.Static("/assets", filepath.Join(a.Config.StaticDir, "assets"))
	e.GET(images.Path, a.resizer.Handle)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/blog/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", handleRootRedirect)
	e.GET("/blog", a.handleBlogList)
	e.GET("/blog/:slug", a.handlePost)

	if a.Config.AdminEnabled() {
		e.GET("/admin", a.handleAdmin)
		e.POST("/admin/login", a.handleAdminLogin)
		e.POST("/admin/logout", handleAdminLogout)
		e.GET("/admin/analytics", a.handleAdminAnalytics, requireAdmin)
	}

	if a.analytics != nil {
		auth := requireAdmin
		if !a.Config.AdminEnabled() {
			// Without a session store nobody can authenticate.
			auth = func(echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error { return echo.ErrNotFound }
			}
		}
		a.analytics.RegisterRoutes(e, auth)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", a.Config.Addr).Msg("listening")
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Log.Info().Msg("shutting down")
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("blogfront: shutdown: %w", err)
	}
	return nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.analyticsStore != nil {
		return a.analyticsStore.Close()
	}
	return nil
}
