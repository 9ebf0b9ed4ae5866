// Package scaffold creates the content directory of a new blogfront site:
// the post dataset, the page chrome, a .env example and a static dir.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/leadcontact/blogfront/content"
	"github.com/leadcontact/blogfront/views"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and may have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	SiteName string
	SiteURL  string
}

// NewData derives template data from the target directory name.
// e.g. "my-blog" -> "My Blog"
func NewData(dir, siteURL string) Data {
	if siteURL == "" {
		siteURL = "https://leadcontact.ai"
	}
	return Data{SiteName: toTitle(filepath.Base(dir)), SiteURL: siteURL}
}

// Generate writes a new site into dir, which must not exist yet. Each
// created path is reported to out.
func Generate(dir string, data Data, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("scaffold: directory %q already exists", dir)
	}

	err := fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := filepath.Join(dir, strings.TrimSuffix(rel, ".tmpl"))
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		src, err := Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("scaffold: read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(src))
		if err != nil {
			return fmt.Errorf("scaffold: parse %s: %w", path, err)
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("scaffold: create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("scaffold: execute %s: %w", path, err)
		}
		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	// The dataset and chrome are copied verbatim so they stay valid input.
	files := []struct {
		name string
		body []byte
	}{
		{"posts.json", content.DefaultJSON()},
		{"chrome.yaml", views.DefaultChromeYAML()},
	}
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		if err := os.WriteFile(p, f.body, 0o644); err != nil {
			return fmt.Errorf("scaffold: write %s: %w", p, err)
		}
		fmt.Fprintf(out, "  created %s\n", p)
	}
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
