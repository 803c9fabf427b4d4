package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(original) })
}

func TestResolve_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BLOG_API_URL", "")
	t.Setenv("BLOG_GOOGLE_CLIENT_ID", "")

	cfg, err := Resolve()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Empty(t, cfg.GoogleClientID)
}

func TestResolve_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	err := Save(filepath.Join(dir, ConfigFileName), &Config{
		APIBaseURL:     "https://file.example.com/api",
		GoogleClientID: "file-client-id",
	})
	require.NoError(t, err)
	chdir(t, dir)

	t.Setenv("BLOG_API_URL", "https://env.example.com/api/")
	t.Setenv("BLOG_GOOGLE_CLIENT_ID", "")

	cfg, err := Resolve()
	require.NoError(t, err)

	// Env overrides the file, trailing slash is normalized away
	assert.Equal(t, "https://env.example.com/api", cfg.APIBaseURL)
	// Settings the env does not override still come from the file
	assert.Equal(t, "file-client-id", cfg.GoogleClientID)
}

func TestResolve_FindsConfigInParentDir(t *testing.T) {
	dir := t.TempDir()
	err := Save(filepath.Join(dir, ConfigFileName), &Config{
		APIBaseURL: "https://parent.example.com/api",
	})
	require.NoError(t, err)

	nested := filepath.Join(dir, "content", "drafts")
	require.NoError(t, os.MkdirAll(nested, 0755))
	chdir(t, nested)

	t.Setenv("BLOG_API_URL", "")

	cfg, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, "https://parent.example.com/api", cfg.APIBaseURL)
}

func TestAPIHost(t *testing.T) {
	cfg := &Config{APIBaseURL: "https://blog.example.com:8443/api"}
	assert.Equal(t, "blog.example.com:8443", cfg.APIHost())
}

func TestLoad_RejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
