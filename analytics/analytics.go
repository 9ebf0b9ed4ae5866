// Package analytics provides first-party, privacy-first page view and click
// tracking for the blog.
package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PageView is the event name the tracker sends once per page load.
const PageView = "pageview"

// Event is a single tracked page view or click.
type Event struct {
	ID         int64     `json:"-"`
	Name       string    `json:"name"`       // PageView or a data-ws-track value
	VisitorID  string    `json:"visitor_id"` // salted hash of IP and user agent
	SessionID  string    `json:"session_id"` // visitor ID scoped to the day
	IPHash     string    `json:"-"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	Device     string    `json:"device"` // Desktop, Mobile, Tablet
	Path       string    `json:"path"`
	Referrer   string    `json:"referrer"`
	ScreenSize string    `json:"screen_size"` // e.g. "1920x1080"
	Timestamp  time.Time `json:"timestamp"`
}

// BotVisit is a request recorded from a crawler.
type BotVisit struct {
	ID        int64     `json:"-"`
	BotName   string    `json:"bot_name"`
	IPHash    string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats holds aggregated analytics for a period.
type Stats struct {
	Period         string            `json:"period"`
	UniqueVisitors int               `json:"unique_visitors"`
	TotalViews     int               `json:"total_views"`
	TotalEvents    int               `json:"total_events"`
	TopPages       []PageStat        `json:"top_pages"`
	TopEvents      []DimensionStat   `json:"top_events"`
	LatestPages    []LatestPageVisit `json:"latest_pages"`
	BrowserStats   []DimensionStat   `json:"browsers"`
	OSStats        []DimensionStat   `json:"os"`
	DeviceStats    []DimensionStat   `json:"devices"`
	ReferrerStats  []DimensionStat   `json:"referrers"`
	DailyViews     []DailyView       `json:"daily_views"`
}

// BotStats holds aggregated crawler traffic for a period.
type BotStats struct {
	Period      string          `json:"period"`
	TotalVisits int             `json:"total_visits"`
	TopBots     []DimensionStat `json:"top_bots"`
	TopPages    []PageStat      `json:"top_pages"`
	DailyVisits []DailyView     `json:"daily_visits"`
}

// PageStat counts views of one path.
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// LatestPageVisit is one recent page view.
type LatestPageVisit struct {
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
	Browser   string `json:"browser"`
}

// DimensionStat counts one value of a dimension such as browser or event name.
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView counts views in one time bucket.
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

const saltKey = "hash_salt"

// LoadSalt returns the per-installation salt used for hashing, generating and
// persisting one on first use.
func LoadSalt(ctx context.Context, store *Store) (string, error) {
	s, err := store.GetSetting(ctx, saltKey)
	if err != nil {
		return "", fmt.Errorf("read hash salt: %w", err)
	}
	if s != "" {
		return s, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	s = hex.EncodeToString(b)
	if err := store.SetSetting(ctx, saltKey, s); err != nil {
		return "", fmt.Errorf("store hash salt: %w", err)
	}
	return s, nil
}

func shortHash(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])[:16]
}

// HashIP returns a salted hash of an IP address.
func HashIP(salt, ip string) string {
	return shortHash(salt, ip)
}

// VisitorID returns a salted visitor ID derived from IP and user agent.
func VisitorID(salt, ip, userAgent string) string {
	return shortHash(salt, ip, userAgent)
}

// SessionID scopes a visitor ID to the UTC day of t.
func SessionID(visitorID string, t time.Time) string {
	return shortHash(visitorID, t.UTC().Format("2006-01-02"))
}

var eventNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// ValidEventName reports whether name can be stored as an event name.
func ValidEventName(name string) bool {
	return eventNameRe.MatchString(name)
}

// ParseUserAgent extracts browser, OS and device class from a User-Agent.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// More specific browsers first: Edge and Opera UAs also contain "chrome".
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr/"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return browser, os, device
}

// knownBots maps user agent fragments to display names, most specific first.
var knownBots = []struct{ pattern, name string }{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"duckduckbot", "DuckDuckBot"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"ahrefsbot", "Ahrefs"},
	{"semrushbot", "SEMrush"},
	{"mj12bot", "Majestic"},
	{"dotbot", "Moz"},
	{"gptbot", "GPTBot"},
	{"slurp", "Yahoo Slurp"},
	{"crawler", "Generic Crawler"},
	{"spider", "Generic Spider"},
}

var botFragments = []string{"bot", "crawl", "spider", "slurp", "scrape", "facebookexternalhit", "yandex", "baidu"}

// IsBot reports whether the User-Agent is likely a crawler. An empty User-Agent
// counts as a bot.
func IsBot(ua string) bool {
	ua = strings.ToLower(strings.TrimSpace(ua))
	if ua == "" {
		return true
	}
	for _, f := range botFragments {
		if strings.Contains(ua, f) {
			return true
		}
	}
	return false
}

// BotName returns a display name for a crawler User-Agent.
func BotName(ua string) string {
	ua = strings.ToLower(ua)
	for _, b := range knownBots {
		if strings.Contains(ua, b.pattern) {
			return b.name
		}
	}
	if strings.Contains(ua, "bot") {
		return "Other Bot"
	}
	return "Unknown"
}

var searchEngines = []struct{ fragment, name string }{
	{"google.", "Google"},
	{"bing.", "Bing"},
	{"duckduckgo.", "DuckDuckGo"},
	{"yahoo.", "Yahoo"},
	{"linkedin.", "LinkedIn"},
	{"github.", "GitHub"},
}

var referrerDomainRe = regexp.MustCompile(`^https?://(?:www\.)?([^/:?#]+)`)

// CleanReferrer reduces a referrer URL to a source name or bare domain.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}
	lower := strings.ToLower(ref)
	for _, s := range searchEngines {
		if strings.Contains(lower, s.fragment) {
			return s.name
		}
	}
	if m := referrerDomainRe.FindStringSubmatch(lower); len(m) > 1 {
		return m[1]
	}
	return "Other"
}
