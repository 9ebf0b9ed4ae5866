package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// TrackPath is the public collection endpoint used by track.js.
const TrackPath = "/api/track"

// Handler serves the collection endpoint and the stats API.
type Handler struct {
	store   *Store
	salt    string
	limiter *rateLimiter
	log     zerolog.Logger
	now     func() time.Time
}

// NewHandler creates a Handler. Collection is limited to 60 requests per IP
// per minute.
func NewHandler(store *Store, salt string, log zerolog.Logger) *Handler {
	return &Handler{
		store:   store,
		salt:    salt,
		limiter: newRateLimiter(60, time.Minute),
		log:     log,
		now:     time.Now,
	}
}

// TrackRequest is the body track.js posts.
type TrackRequest struct {
	Event      string `json:"event"`
	Path       string `json:"path"`
	Referrer   string `json:"referrer"`
	ScreenSize string `json:"screen_size"`
}

// Input validation limits for the collect endpoint.
const (
	maxPathLen       = 2048
	maxReferrerLen   = 2048
	maxScreenSizeLen = 32
	maxUserAgentLen  = 512
)

var errInvalidRequest = errors.New("invalid request")

func validateTrackRequest(req *TrackRequest) error {
	if req.Event == "" {
		req.Event = PageView
	}
	switch {
	case !ValidEventName(req.Event):
		return fmt.Errorf("%w: event name %q", errInvalidRequest, req.Event)
	case req.Path == "" || !strings.HasPrefix(req.Path, "/"):
		return fmt.Errorf("%w: path must be site-relative", errInvalidRequest)
	case len(req.Path) > maxPathLen:
		return fmt.Errorf("%w: path exceeds %d bytes", errInvalidRequest, maxPathLen)
	case len(req.Referrer) > maxReferrerLen:
		return fmt.Errorf("%w: referrer exceeds %d bytes", errInvalidRequest, maxReferrerLen)
	case len(req.ScreenSize) > maxScreenSizeLen:
		return fmt.Errorf("%w: screen_size exceeds %d bytes", errInvalidRequest, maxScreenSizeLen)
	}
	return nil
}

// Track records a page view or click event.
func (h *Handler) Track(c echo.Context) error {
	ip := c.RealIP()
	if !h.limiter.allow(ip) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var req TrackRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	if err := validateTrackRequest(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	ctx := c.Request().Context()
	now := h.now().UTC()
	ua := c.Request().UserAgent()
	if len(ua) > maxUserAgentLen {
		ua = ua[:maxUserAgentLen]
	}

	if IsBot(ua) {
		if req.Event == PageView {
			bv := &BotVisit{
				BotName:   BotName(ua),
				IPHash:    HashIP(h.salt, ip),
				UserAgent: ua,
				Path:      req.Path,
				Timestamp: now,
			}
			if err := h.store.SaveBotVisit(ctx, bv); err != nil {
				h.log.Error().Err(err).Msg("save bot visit")
			}
		}
		return c.NoContent(http.StatusNoContent)
	}

	visitorID := VisitorID(h.salt, ip, ua)
	browser, os, device := ParseUserAgent(ua)
	ev := &Event{
		Name:       req.Event,
		VisitorID:  visitorID,
		SessionID:  SessionID(visitorID, now),
		IPHash:     HashIP(h.salt, ip),
		Browser:    browser,
		OS:         os,
		Device:     device,
		Path:       req.Path,
		Referrer:   CleanReferrer(req.Referrer),
		ScreenSize: req.ScreenSize,
		Timestamp:  now,
	}
	if err := h.store.SaveEvent(ctx, ev); err != nil {
		h.log.Error().Err(err).Str("event", ev.Name).Msg("save event")
	}
	return c.NoContent(http.StatusNoContent)
}

// Period is a named reporting window.
type Period struct {
	Name   string `json:"name"`
	Days   int    `json:"days"`
	Bucket Bucket `json:"-"`
}

// Periods lists the period names the dashboard offers.
var Periods = []string{"today", "week", "month", "year"}

// ParsePeriod maps a period name to its window. Unknown names mean "week".
func ParsePeriod(name string) Period {
	switch name {
	case "today":
		return Period{Name: name, Days: 1, Bucket: BucketHour}
	case "month":
		return Period{Name: name, Days: 30, Bucket: BucketDay}
	case "year":
		return Period{Name: name, Days: 365, Bucket: BucketMonth}
	default:
		return Period{Name: "week", Days: 7, Bucket: BucketDay}
	}
}

// Range returns the [from, to) window for p ending at now. Hourly periods
// cover the last 24 hours; others cover whole UTC days.
func (p Period) Range(now time.Time) (from, to time.Time) {
	now = now.UTC()
	if p.Bucket == BucketHour {
		return now.Truncate(time.Hour).Add(-23 * time.Hour), now.Add(time.Second)
	}
	from = now.AddDate(0, 0, -p.Days).Truncate(24 * time.Hour)
	to = now.Add(24 * time.Hour).Truncate(24 * time.Hour)
	return from, to
}

// fillHourly returns all 24 hourly slots starting at from, zero-filled.
func fillHourly(sparse []DailyView, from time.Time) []DailyView {
	byLabel := make(map[string]int, len(sparse))
	for _, v := range sparse {
		byLabel[v.Date] = v.Views
	}
	out := make([]DailyView, 24)
	for i := range out {
		label := fmt.Sprintf("%02d:00", from.Add(time.Duration(i)*time.Hour).Hour())
		out[i] = DailyView{Date: label, Views: byLabel[label]}
	}
	return out
}

// Snapshot is everything the dashboard shows for one period.
type Snapshot struct {
	Period   Period    `json:"period"`
	Stats    *Stats    `json:"stats"`
	Bots     *BotStats `json:"bots"`
	Realtime int       `json:"realtime_visitors"`
}

// Snapshot loads visitor and crawler stats for the named period.
func (h *Handler) Snapshot(ctx context.Context, periodName string) (*Snapshot, error) {
	p := ParsePeriod(periodName)
	now := h.now()
	from, to := p.Range(now)

	stats, err := h.store.GetStats(ctx, from, to, p.Bucket)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	bots, err := h.store.GetBotStats(ctx, from, to, p.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bot stats: %w", err)
	}
	if p.Bucket == BucketHour {
		stats.DailyViews = fillHourly(stats.DailyViews, from)
		bots.DailyVisits = fillHourly(bots.DailyVisits, from)
	}
	realtime, err := h.store.RealtimeVisitors(ctx, now)
	if err != nil {
		h.log.Warn().Err(err).Msg("realtime visitors")
	}
	return &Snapshot{Period: p, Stats: stats, Bots: bots, Realtime: realtime}, nil
}

// GetStats returns the snapshot for ?period= as JSON.
func (h *Handler) GetStats(c echo.Context) error {
	snap, err := h.Snapshot(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		h.log.Error().Err(err).Msg("get stats")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, snap)
}

// RegisterRoutes mounts the public collector on e and the stats API under
// /admin/analytics/api behind auth.
func (h *Handler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.POST(TrackPath, h.Track)

	admin := e.Group("/admin/analytics/api", auth)
	admin.GET("/stats", h.GetStats)
}
