package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func event(name, visitor, path, browser string, ts time.Time) *Event {
	return &Event{
		Name:      name,
		VisitorID: visitor,
		SessionID: SessionID(visitor, ts),
		IPHash:    "ip",
		Browser:   browser,
		OS:        "macOS",
		Device:    "Desktop",
		Path:      path,
		Referrer:  "Direct",
		Timestamp: ts,
	}
}

func TestSettingsAndSalt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.GetSetting(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetSetting(ctx, "k", "1"))
	require.NoError(t, s.SetSetting(ctx, "k", "2"))
	v, err = s.GetSetting(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	salt, err := LoadSalt(ctx, s)
	require.NoError(t, err)
	assert.Len(t, salt, 64)
	again, err := LoadSalt(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, salt, again)

	ver, err := s.GetSetting(ctx, "schema_version")
	require.NoError(t, err)
	assert.Equal(t, "1", ver)
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, e := range []*Event{
		event(PageView, "v1", "/blog", "Chrome", day),
		event(PageView, "v1", "/blog/a", "Chrome", day.Add(time.Minute)),
		event(PageView, "v2", "/blog", "Firefox", day.Add(-24*time.Hour)),
		event("BlogReadMoreButtonClick", "v1", "/blog", "Chrome", day.Add(2*time.Minute)),
		event("BlogReadMoreButtonClick", "v2", "/blog", "Firefox", day.Add(3*time.Minute)),
		event("BlogFooterInstallPlugin", "v2", "/blog/a", "Firefox", day.Add(4*time.Minute)),
		event(PageView, "v3", "/blog", "Safari", day.AddDate(0, 0, -30)), // outside window
	} {
		require.NoError(t, s.SaveEvent(ctx, e))
		assert.NotZero(t, e.ID)
	}

	from := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	stats, err := s.GetStats(ctx, from, to, BucketDay)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-03 to 2025-03-11", stats.Period)
	assert.Equal(t, 3, stats.TotalViews)
	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 2, stats.UniqueVisitors)
	assert.Equal(t, []PageStat{{Path: "/blog", Views: 2}, {Path: "/blog/a", Views: 1}}, stats.TopPages)
	assert.Equal(t, []DimensionStat{{Name: "BlogReadMoreButtonClick", Count: 2}, {Name: "BlogFooterInstallPlugin", Count: 1}}, stats.TopEvents)
	assert.Equal(t, []DimensionStat{{Name: "Chrome", Count: 2}, {Name: "Firefox", Count: 1}}, stats.BrowserStats)
	assert.Equal(t, []DailyView{{Date: "2025-03-09", Views: 1}, {Date: "2025-03-10", Views: 2}}, stats.DailyViews)
	require.Len(t, stats.LatestPages, 3)
	assert.Equal(t, "/blog/a", stats.LatestPages[0].Path)
	assert.Equal(t, "2025-03-10 12:01:00", stats.LatestPages[0].Timestamp)
}

func TestGetStatsEmpty(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	stats, err := s.GetStats(context.Background(), now.Add(-time.Hour), now, BucketHour)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalViews)
	assert.NotNil(t, stats.TopPages)
	assert.NotNil(t, stats.DailyViews)
}

func TestBotStatsAndCleanup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveBotVisit(ctx, &BotVisit{BotName: "Googlebot", IPHash: "x", UserAgent: "Googlebot", Path: "/blog", Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, s.SaveBotVisit(ctx, &BotVisit{BotName: "Googlebot", IPHash: "x", UserAgent: "Googlebot", Path: "/blog/a", Timestamp: now.Add(-2 * time.Hour)}))
	require.NoError(t, s.SaveBotVisit(ctx, &BotVisit{BotName: "Bingbot", IPHash: "y", UserAgent: "bingbot", Path: "/blog", Timestamp: now.AddDate(-2, 0, 0)}))
	require.NoError(t, s.SaveEvent(ctx, event(PageView, "old", "/blog", "Chrome", now.AddDate(-2, 0, 0))))

	bots, err := s.GetBotStats(ctx, now.AddDate(-3, 0, 0), now, BucketMonth)
	require.NoError(t, err)
	assert.Equal(t, 3, bots.TotalVisits)
	assert.Equal(t, DimensionStat{Name: "Googlebot", Count: 2}, bots.TopBots[0])

	require.NoError(t, s.Cleanup(ctx, now, 365))

	bots, err = s.GetBotStats(ctx, now.AddDate(-3, 0, 0), now, BucketMonth)
	require.NoError(t, err)
	assert.Equal(t, 2, bots.TotalVisits)
	assert.Equal(t, []DailyView{{Date: "2025-05", Views: 2}}, bots.DailyVisits)

	stats, err := s.GetStats(ctx, now.AddDate(-3, 0, 0), now, BucketDay)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalViews)
}

func TestRealtimeVisitors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveEvent(ctx, event(PageView, "a", "/blog", "Chrome", now.Add(-time.Minute))))
	require.NoError(t, s.SaveEvent(ctx, event(PageView, "a", "/blog/x", "Chrome", now.Add(-2*time.Minute))))
	require.NoError(t, s.SaveEvent(ctx, event(PageView, "b", "/blog", "Chrome", now.Add(-10*time.Minute))))

	n, err := s.RealtimeVisitors(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCleanupScheduler(t *testing.T) {
	s := newTestStore(t)
	stop := s.StartCleanupScheduler(365, time.Hour, testLogger())
	stop()
	stop()
}
