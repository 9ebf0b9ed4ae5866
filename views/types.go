package views

import (
	"strings"

	"github.com/leadcontact/blogfront/analytics"
	"github.com/leadcontact/blogfront/content"
	"github.com/leadcontact/blogfront/listing"
	"github.com/leadcontact/blogfront/seo"
)

// HeaderState is the server-side state of the site header. Scroll shadow and
// compact mode are applied by header.js in the browser.
type HeaderState struct {
	Path       string
	BlogActive bool // current path is under /blog
	MenuOpen   bool // mobile drawer opened through ?menu=open
}

// NewHeaderState derives the header state for a request path and the value of
// its menu query parameter.
func NewHeaderState(path, menu string) HeaderState {
	return HeaderState{
		Path:       path,
		BlogActive: path == "/blog" || strings.HasPrefix(path, "/blog/"),
		MenuOpen:   menu == "open",
	}
}

// MenuURL returns the no-JS link that toggles the mobile drawer.
func (h HeaderState) MenuURL() string {
	if h.MenuOpen {
		return h.Path
	}
	return h.Path + "?menu=open"
}

// Analytics controls which tracking scripts the layout emits.
type Analytics struct {
	GoogleID   string   // GA4 measurement ID
	Scripts    []string // extra third-party script URLs
	FirstParty bool     // load /public/track.js
}

// Layout carries everything the shared page shell needs.
type Layout struct {
	SiteName  string
	Meta      seo.Meta
	Header    HeaderState
	Analytics Analytics
}

// ListPage is the data for the blog index.
type ListPage struct {
	Result listing.Result
	Recent []content.Post
	Tags   []string
}

// PostPage is the data for a single post.
type PostPage struct {
	Post content.Post
}

// ErrorPage is the data for the 404 and 500 pages.
type ErrorPage struct {
	Message string
}

// LoginPage is the data for the admin login form.
type LoginPage struct {
	CSRF      string
	ShowError bool
	Locked    bool
}

// DashboardPage is the data for the analytics dashboard.
type DashboardPage struct {
	CSRF     string
	Period   string
	Periods  []string
	Stats    *analytics.Stats
	Bots     *analytics.BotStats
	Realtime int
	Enabled  bool
}
