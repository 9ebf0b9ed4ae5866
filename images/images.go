// Package images serves resized copies of the site's own images so cards and
// heroes can use responsive srcset attributes.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	jpegQuality    = 80
	maxSourceBytes = 20 << 20 // 20MB
	maxPixels      = 40_000_000
	defaultCached  = 256
	// Path is the route the resizer is mounted on.
	Path = "/_img"
)

// Widths are the only output widths the resizer produces.
var Widths = []int{256, 384, 640, 750, 828, 1080, 1200, 1920}

// RemoteHosts may be referenced as post images. They are linked directly,
// never proxied.
var RemoteHosts = []string{"images.unsplash.com", "leadcontact.ai", "app.leadcontact.ai"}

var (
	// ErrInvalidSource is returned for sources outside the static tree.
	ErrInvalidSource = errors.New("images: invalid source")
	// ErrInvalidWidth is returned for widths not listed in Widths.
	ErrInvalidWidth = errors.New("images: invalid width")
	// ErrUnsupported is returned when the source cannot be decoded.
	ErrUnsupported = errors.New("images: unsupported image")
)

// IsLocal reports whether src is a site-relative path the resizer can serve.
func IsLocal(src string) bool {
	return strings.HasPrefix(src, "/") && !strings.HasPrefix(src, "//")
}

// URL returns the resizer URL for src at width w.
func URL(src string, w int) string {
	q := url.Values{}
	q.Set("src", src)
	q.Set("w", strconv.Itoa(w))
	return Path + "?" + q.Encode()
}

// SrcSet returns a srcset value covering the configured widths, or "" when
// src is not a local image.
func SrcSet(src string) string {
	if !IsLocal(src) {
		return ""
	}
	parts := make([]string, len(Widths))
	for i, w := range Widths {
		parts[i] = URL(src, w) + " " + strconv.Itoa(w) + "w"
	}
	return strings.Join(parts, ", ")
}

// AllowedRemote reports whether src is an https URL on an allow-listed host.
func AllowedRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil || u.Scheme != "https" {
		return false
	}
	return slices.Contains(RemoteHosts, u.Hostname())
}

type cacheKey struct {
	src   string
	width int
}

// Resizer decodes images from a static file tree and caches resized JPEGs in
// memory. The cache holds at most max entries and evicts oldest first.
type Resizer struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[cacheKey][]byte
	order []cacheKey
	max   int
}

// NewResizer creates a Resizer reading from fsys.
func NewResizer(fsys fs.FS) *Resizer {
	return &Resizer{
		fsys:  fsys,
		cache: make(map[cacheKey][]byte),
		max:   defaultCached,
	}
}

// Resize returns src scaled to width as JPEG bytes. Images narrower than width
// are re-encoded at their own size.
func (r *Resizer) Resize(src string, width int) ([]byte, error) {
	if !slices.Contains(Widths, width) {
		return nil, ErrInvalidWidth
	}
	name := strings.TrimPrefix(src, "/")
	if !IsLocal(src) || !fs.ValidPath(name) {
		return nil, ErrInvalidSource
	}

	key := cacheKey{src: name, width: width}
	r.mu.Lock()
	if b, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return b, nil
	}
	r.mu.Unlock()

	f, err := r.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if st, err := f.Stat(); err == nil && (st.IsDir() || st.Size() > maxSourceBytes) {
		return nil, ErrInvalidSource
	}

	data, err := io.ReadAll(io.LimitReader(f, maxSourceBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSourceBytes {
		return nil, ErrInvalidSource
	}
	// Decoding allocates by dimensions, so check them before decoding.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: %dx%d exceeds pixel budget", ErrInvalidSource, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	img = scale(img, width)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	out := buf.Bytes()
	r.store(key, out)
	return out, nil
}

func (r *Resizer) store(key cacheKey, b []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cache[key]; ok {
		return
	}
	if len(r.order) >= r.max {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.cache, oldest)
	}
	r.cache[key] = b
	r.order = append(r.order, key)
}

// scale shrinks img to width, keeping the aspect ratio. It never upscales.
func scale(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= width || w == 0 {
		return img
	}
	newH := max(1, h*width/w)
	dst := image.NewRGBA(image.Rect(0, 0, width, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Handle serves GET /_img?src=...&w=...
func (r *Resizer) Handle(c echo.Context) error {
	src := c.QueryParam("src")
	width, err := strconv.Atoi(c.QueryParam("w"))
	if err != nil {
		return c.String(http.StatusBadRequest, "invalid width")
	}
	if !IsLocal(src) {
		if AllowedRemote(src) {
			return c.Redirect(http.StatusFound, src)
		}
		return c.String(http.StatusBadRequest, "image host not allowed")
	}

	b, err := r.Resize(src, width)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return echo.ErrNotFound
	case errors.Is(err, ErrInvalidWidth):
		return c.String(http.StatusBadRequest, "invalid width")
	case errors.Is(err, ErrInvalidSource), errors.Is(err, ErrUnsupported):
		return c.String(http.StatusBadRequest, "invalid image")
	default:
		return err
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Blob(http.StatusOK, "image/jpeg", b)
}
