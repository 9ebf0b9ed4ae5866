package blogfront

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SiteConfig holds all configuration for a blogfront site.
type SiteConfig struct {
	Name               string // Site name (default "LeadContact Blog")
	URL                string // Canonical URL (default "https://leadcontact.ai")
	Description        string // Listing page description
	ArticleDescription string // Fallback description for posts without one
	Verification       string // google-site-verification token

	Addr       string // Listen address (default ":3000")
	PostsPath  string // Posts JSON; empty uses the embedded dataset
	ChromePath string // Header/footer YAML; empty uses the embedded chrome
	StaticDir  string // Site-owned static files served at /assets (default "public")

	GAMeasurementID       string   // Google Analytics 4 measurement ID
	AnalyticsScripts      []string // Extra third-party script URLs
	AnalyticsDatabasePath string   // First-party analytics SQLite path; empty disables it
	AnalyticsRetention    int      // Days of analytics to keep (default 365)

	AdminPassword string // Admin is enabled only when both are set
	SessionSecret string
	CookieSecure  bool // Set true for HTTPS

	AuthorSeed   uint64        // Seed for the card author roster; 0 picks one at startup
	PageCacheTTL time.Duration // Rendered listing page TTL (default 5min)

	LogLevel  string // zerolog level (default "info")
	LogFormat string // "json" (default) or "console"
}

const (
	defaultName               = "LeadContact Blog"
	defaultURL                = "https://leadcontact.ai"
	defaultDescription        = "LeadContact Blog shares curated insights on email finding, data enrichment and growth workflows."
	defaultArticleDescription = "Read this article on the LeadContact Blog."
)

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.URL == "" {
		c.URL = defaultURL
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Description == "" {
		c.Description = defaultDescription
	}
	if c.ArticleDescription == "" {
		c.ArticleDescription = defaultArticleDescription
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.AnalyticsRetention == 0 {
		c.AnalyticsRetention = 365
	}
	if c.PageCacheTTL == 0 {
		c.PageCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// AdminEnabled reports whether the admin area should be mounted.
func (c SiteConfig) AdminEnabled() bool {
	return c.AdminPassword != "" && c.SessionSecret != ""
}

// AnalyticsEnabled reports whether first-party analytics is on.
func (c SiteConfig) AnalyticsEnabled() bool {
	return c.AnalyticsDatabasePath != ""
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("blogfront: load %s: %w", f, err)
		}
	}
	return nil
}

// ConfigFromEnv builds a SiteConfig from environment variables. Call
// LoadDotEnv first to pick up a .env file.
func ConfigFromEnv() (SiteConfig, error) {
	cfg := SiteConfig{
		Name:                  os.Getenv("SITE_NAME"),
		URL:                   EnvOr("SITE_URL", os.Getenv("NEXT_PUBLIC_SITE_URL")),
		Description:           os.Getenv("BLOG_DESCRIPTION"),
		ArticleDescription:    os.Getenv("ARTICLE_DESCRIPTION"),
		Verification:          os.Getenv("GOOGLE_SITE_VERIFICATION"),
		Addr:                  os.Getenv("ADDR"),
		PostsPath:             os.Getenv("POSTS_PATH"),
		ChromePath:            os.Getenv("CHROME_PATH"),
		StaticDir:             os.Getenv("STATIC_DIR"),
		GAMeasurementID:       os.Getenv("GA_MEASUREMENT_ID"),
		AnalyticsScripts:      splitList(os.Getenv("ANALYTICS_SCRIPTS")),
		AnalyticsDatabasePath: os.Getenv("ANALYTICS_DATABASE_PATH"),
		AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:         os.Getenv("ADMIN_SESSION_SECRET"),
		LogLevel:              os.Getenv("LOG_LEVEL"),
		LogFormat:             os.Getenv("LOG_FORMAT"),
	}

	var err error
	if cfg.CookieSecure, err = envBool("COOKIE_SECURE"); err != nil {
		return SiteConfig{}, err
	}
	if v := os.Getenv("AUTHOR_SEED"); v != "" {
		if cfg.AuthorSeed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return SiteConfig{}, fmt.Errorf("blogfront: AUTHOR_SEED: %w", err)
		}
	}
	if v := os.Getenv("ANALYTICS_RETENTION_DAYS"); v != "" {
		if cfg.AnalyticsRetention, err = strconv.Atoi(v); err != nil || cfg.AnalyticsRetention < 1 {
			return SiteConfig{}, fmt.Errorf("blogfront: ANALYTICS_RETENTION_DAYS must be a positive integer")
		}
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the directory served at /assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
