package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("post not found")

//go:embed posts.json
var defaultPosts []byte

// Dataset is the immutable, ordered collection of posts served by the site.
// It is safe for concurrent use because nothing mutates it after loading.
type Dataset struct {
	posts  []Post
	bySlug map[string]int
}

// Load decodes a JSON array of posts from r and validates it.
func Load(r io.Reader) (*Dataset, error) {
	var posts []Post
	dec := json.NewDecoder(r)
	if err := dec.Decode(&posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return New(posts)
}

// LoadFile reads the dataset at path.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// LoadFS reads the dataset named name from fsys.
func LoadFS(fsys fs.FS, name string) (*Dataset, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(b))
}

// Default returns the dataset embedded in the binary.
func Default() (*Dataset, error) {
	return Load(bytes.NewReader(defaultPosts))
}

// DefaultJSON returns the raw embedded dataset, used when scaffolding a project.
func DefaultJSON() []byte {
	return bytes.Clone(defaultPosts)
}

// New builds a dataset from posts, keeping their order.
func New(posts []Post) (*Dataset, error) {
	ds := &Dataset{
		posts:  make([]Post, len(posts)),
		bySlug: make(map[string]int, len(posts)),
	}
	for i, p := range posts {
		p.Slug = strings.TrimSpace(p.Slug)
		if err := validate(i, p); err != nil {
			return nil, err
		}
		if prev, dup := ds.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("post %d: slug %q already used by post %d", i, p.Slug, prev)
		}
		ds.bySlug[p.Slug] = i
		ds.posts[i] = p
	}
	return ds, nil
}

func validate(i int, p Post) error {
	if p.Slug == "" {
		return fmt.Errorf("post %d: slug is required", i)
	}
	if strings.ContainsAny(p.Slug, "/?# ") {
		return fmt.Errorf("post %d: slug %q is not URL-safe", i, p.Slug)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("post %d (%s): title is required", i, p.Slug)
	}
	if _, err := ParseDate(p.Date); err != nil {
		return fmt.Errorf("post %d (%s): invalid date %q", i, p.Slug, p.Date)
	}
	return nil
}

// Posts returns the posts in dataset order. Callers must not modify the slice.
func (d *Dataset) Posts() []Post {
	return d.posts
}

// Len returns the number of posts.
func (d *Dataset) Len() int {
	return len(d.posts)
}

// Get returns the post with the given slug.
func (d *Dataset) Get(slug string) (Post, error) {
	i, ok := d.bySlug[slug]
	if !ok {
		return Post{}, ErrNotFound
	}
	return d.posts[i], nil
}

// Recent returns the first n posts in dataset order.
func (d *Dataset) Recent(n int) []Post {
	if n > len(d.posts) {
		n = len(d.posts)
	}
	if n < 0 {
		n = 0
	}
	return d.posts[:n]
}

// TagCounts returns how many posts carry each allow-listed tag.
func (d *Dataset) TagCounts() map[string]int {
	counts := make(map[string]int)
	for _, p := range d.posts {
		for _, t := range p.DisplayTags() {
			counts[t]++
		}
	}
	return counts
}
