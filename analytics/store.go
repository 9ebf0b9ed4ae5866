package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Bucket is the granularity of a time series.
type Bucket int

const (
	BucketDay Bucket = iota
	BucketHour
	BucketMonth
)

func (b Bucket) format() string {
	switch b {
	case BucketHour:
		return "%H:00"
	case BucketMonth:
		return "%Y-%m"
	default:
		return "%Y-%m-%d"
	}
}

const topLimit = 10

// Store persists events in SQLite. Timestamps are stored as unix seconds.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			visitor_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			screen_size TEXT NOT NULL DEFAULT '',
			ts INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bot_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			ts INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
		CREATE INDEX IF NOT EXISTS idx_events_name ON events(name, ts);
		CREATE INDEX IF NOT EXISTS idx_events_visitor ON events(visitor_id);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_ts ON bot_visits(ts);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

func (s *Store) migrate(ctx context.Context) error {
	verStr, err := s.GetSetting(ctx, "schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	return s.SetSetting(ctx, "schema_version", strconv.Itoa(currentSchemaVersion))
}

// GetSetting returns a setting value, or "" when unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// SaveEvent stores a page view or click.
func (s *Store) SaveEvent(ctx context.Context, e *Event) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (name, visitor_id, session_id, ip_hash, browser, os, device, path, referrer, screen_size, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.VisitorID, e.SessionID, e.IPHash, e.Browser, e.OS, e.Device,
		e.Path, e.Referrer, e.ScreenSize, e.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

// SaveBotVisit stores a crawler request.
func (s *Store) SaveBotVisit(ctx context.Context, bv *BotVisit) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bot_visits (bot_name, ip_hash, user_agent, path, ts) VALUES (?, ?, ?, ?, ?)`,
		bv.BotName, bv.IPHash, bv.UserAgent, bv.Path, bv.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("insert bot visit: %w", err)
	}
	bv.ID, _ = res.LastInsertId()
	return nil
}

func periodLabel(from, to time.Time) string {
	return from.Format("2006-01-02") + " to " + to.Format("2006-01-02")
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// pairs runs a query returning (text, count) rows.
func (s *Store) pairs(ctx context.Context, query string, args ...any) ([]DimensionStat, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DimensionStat{}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func toPages(d []DimensionStat) []PageStat {
	out := make([]PageStat, len(d))
	for i, v := range d {
		out[i] = PageStat{Path: v.Name, Views: v.Count}
	}
	return out
}

func toSeries(d []DimensionStat) []DailyView {
	out := make([]DailyView, len(d))
	for i, v := range d {
		out[i] = DailyView{Date: v.Name, Views: v.Count}
	}
	return out
}

// dimension columns the stats queries may group by.
var dimensions = map[string]string{
	"browser":  "browser",
	"os":       "os",
	"device":   "device",
	"referrer": "referrer",
}

func dimensionQuery(column string) string {
	return `SELECT ` + dimensions[column] + `, COUNT(*) AS n FROM events
		WHERE name = '` + PageView + `' AND ts >= ? AND ts < ?
		GROUP BY 1 ORDER BY n DESC, 1 LIMIT ` + strconv.Itoa(topLimit)
}

// GetStats returns aggregated statistics for [from, to).
func (s *Store) GetStats(ctx context.Context, from, to time.Time, bucket Bucket) (*Stats, error) {
	f, t := from.Unix(), to.Unix()
	stats := &Stats{
		Period:        periodLabel(from, to),
		TopPages:      []PageStat{},
		TopEvents:     []DimensionStat{},
		LatestPages:   []LatestPageVisit{},
		BrowserStats:  []DimensionStat{},
		OSStats:       []DimensionStat{},
		DeviceStats:   []DimensionStat{},
		ReferrerStats: []DimensionStat{},
		DailyViews:    []DailyView{},
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	run := func(label string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", label, err)
				}
				mu.Unlock()
			}
		}()
	}
	// Each task writes a distinct field, so no locking is needed for stats.
	run("count views", func() (err error) {
		stats.TotalViews, err = s.count(ctx, `SELECT COUNT(*) FROM events WHERE name = ? AND ts >= ? AND ts < ?`, PageView, f, t)
		return err
	})
	run("count unique visitors", func() (err error) {
		stats.UniqueVisitors, err = s.count(ctx, `SELECT COUNT(DISTINCT visitor_id) FROM events WHERE ts >= ? AND ts < ?`, f, t)
		return err
	})
	run("count events", func() (err error) {
		stats.TotalEvents, err = s.count(ctx, `SELECT COUNT(*) FROM events WHERE name != ? AND ts >= ? AND ts < ?`, PageView, f, t)
		return err
	})
	run("top pages", func() error {
		d, err := s.pairs(ctx, `SELECT path, COUNT(*) AS n FROM events WHERE name = ? AND ts >= ? AND ts < ?
			GROUP BY path ORDER BY n DESC, path LIMIT ?`, PageView, f, t, topLimit)
		stats.TopPages = toPages(d)
		return err
	})
	run("top events", func() (err error) {
		stats.TopEvents, err = s.pairs(ctx, `SELECT name, COUNT(*) AS n FROM events WHERE name != ? AND ts >= ? AND ts < ?
			GROUP BY name ORDER BY n DESC, name LIMIT ?`, PageView, f, t, topLimit)
		return err
	})
	run("latest pages", func() (err error) {
		stats.LatestPages, err = s.latestPages(ctx, f, t)
		return err
	})
	run("browser stats", func() (err error) {
		stats.BrowserStats, err = s.pairs(ctx, dimensionQuery("browser"), f, t)
		return err
	})
	run("os stats", func() (err error) {
		stats.OSStats, err = s.pairs(ctx, dimensionQuery("os"), f, t)
		return err
	})
	run("device stats", func() (err error) {
		stats.DeviceStats, err = s.pairs(ctx, dimensionQuery("device"), f, t)
		return err
	})
	run("referrer stats", func() (err error) {
		stats.ReferrerStats, err = s.pairs(ctx, dimensionQuery("referrer"), f, t)
		return err
	})
	run("views series", func() error {
		d, err := s.pairs(ctx, `SELECT strftime(?, ts, 'unixepoch') AS bucket, COUNT(*) FROM events
			WHERE name = ? AND ts >= ? AND ts < ? GROUP BY bucket ORDER BY MIN(ts)`, bucket.format(), PageView, f, t)
		stats.DailyViews = toSeries(d)
		return err
	})
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return stats, nil
}

func (s *Store) latestPages(ctx context.Context, from, to int64) ([]LatestPageVisit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, ts, browser FROM events
		WHERE name = ? AND ts >= ? AND ts < ? ORDER BY ts DESC, id DESC LIMIT ?`, PageView, from, to, topLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LatestPageVisit{}
	for rows.Next() {
		var (
			v  LatestPageVisit
			ts int64
		)
		if err := rows.Scan(&v.Path, &ts, &v.Browser); err != nil {
			return nil, err
		}
		v.Timestamp = time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05")
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetBotStats returns aggregated crawler statistics for [from, to).
func (s *Store) GetBotStats(ctx context.Context, from, to time.Time, bucket Bucket) (*BotStats, error) {
	f, t := from.Unix(), to.Unix()
	stats := &BotStats{Period: periodLabel(from, to)}

	var err error
	if stats.TotalVisits, err = s.count(ctx, `SELECT COUNT(*) FROM bot_visits WHERE ts >= ? AND ts < ?`, f, t); err != nil {
		return nil, fmt.Errorf("count bot visits: %w", err)
	}
	if stats.TopBots, err = s.pairs(ctx, `SELECT bot_name, COUNT(*) AS n FROM bot_visits WHERE ts >= ? AND ts < ?
		GROUP BY bot_name ORDER BY n DESC, bot_name LIMIT ?`, f, t, topLimit); err != nil {
		return nil, fmt.Errorf("top bots: %w", err)
	}
	pages, err := s.pairs(ctx, `SELECT path, COUNT(*) AS n FROM bot_visits WHERE ts >= ? AND ts < ?
		GROUP BY path ORDER BY n DESC, path LIMIT ?`, f, t, topLimit)
	if err != nil {
		return nil, fmt.Errorf("top bot pages: %w", err)
	}
	stats.TopPages = toPages(pages)
	series, err := s.pairs(ctx, `SELECT strftime(?, ts, 'unixepoch') AS bucket, COUNT(*) FROM bot_visits
		WHERE ts >= ? AND ts < ? GROUP BY bucket ORDER BY MIN(ts)`, bucket.format(), f, t)
	if err != nil {
		return nil, fmt.Errorf("bot series: %w", err)
	}
	stats.DailyVisits = toSeries(series)
	return stats, nil
}

// RealtimeVisitors returns the number of distinct visitors in the last five
// minutes before now.
func (s *Store) RealtimeVisitors(ctx context.Context, now time.Time) (int, error) {
	return s.count(ctx, `SELECT COUNT(DISTINCT visitor_id) FROM events WHERE ts >= ?`, now.Add(-5*time.Minute).Unix())
}

// Cleanup removes events and bot visits older than retentionDays.
func (s *Store) Cleanup(ctx context.Context, now time.Time, retentionDays int) error {
	cutoff := now.AddDate(0, 0, -retentionDays).Unix()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE ts < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup events: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bot_visits WHERE ts < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup bot_visits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs Cleanup every interval until the returned stop
// function is called.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, log zerolog.Logger) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.Cleanup(context.Background(), time.Now(), retentionDays); err != nil {
					log.Error().Err(err).Msg("analytics cleanup failed")
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
