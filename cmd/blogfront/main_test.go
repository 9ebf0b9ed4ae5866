package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "blogfront dev\n", out)
}

func TestCheckEmbeddedDataset(t *testing.T) {
	t.Setenv("POSTS_PATH", "")
	t.Setenv("CHROME_PATH", "")
	envFile := filepath.Join(t.TempDir(), "missing.env")

	out, err := run(t, "check", "--env-file", envFile)
	require.NoError(t, err)
	assert.Contains(t, out, "(all)")
	assert.Contains(t, out, "LinkedIn")
	assert.Contains(t, out, "12 posts OK")
}

func TestCheckRejectsBadDataset(t *testing.T) {
	dir := t.TempDir()
	posts := filepath.Join(dir, "posts.json")
	require.NoError(t, os.WriteFile(posts, []byte(`[{"title":"x","slug":"","date":"2024-01-01"}]`), 0o644))

	_, err := run(t, "check", "--env-file", filepath.Join(dir, "missing.env"), "--posts", posts)
	assert.ErrorContains(t, err, "slug is required")
}

func TestInitCreatesSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-blog")
	out, err := run(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Done!")
	assert.FileExists(t, filepath.Join(dir, "posts.json"))
	assert.FileExists(t, filepath.Join(dir, ".env.example"))

	// The generated site passes check.
	out, err = run(t, "check",
		"--env-file", filepath.Join(dir, "missing.env"),
		"--posts", filepath.Join(dir, "posts.json"),
		"--chrome", filepath.Join(dir, "chrome.yaml"),
	)
	require.NoError(t, err)
	assert.Contains(t, out, "posts OK")
}
