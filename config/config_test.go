package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 3001, cfg.HTTP.Port)
	assert.Equal(t, "ledger.db", cfg.DB.Path)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.False(t, cfg.SeedOnStart)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("SEED_ON_START", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, ":memory:", cfg.DB.Path)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.SeedOnStart)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()

	assert.Error(t, err)
}

// inDir runs the rest of the test with dir as the working directory.
func inDir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_FromFile(t *testing.T) {
	// GIVEN: A well-formed app.env in the working directory
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("HTTP_PORT=9090\nDB_PATH=file.db\n"), 0o600))
	inDir(t, dir)

	// WHEN: Loading
	cfg, err := Load()

	// THEN: File values are applied
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "file.db", cfg.DB.Path)
}

func TestLoad_MalformedFile(t *testing.T) {
	// GIVEN: An app.env that cannot be parsed
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("this line is not valid\n"), 0o600))
	inDir(t, dir)

	// WHEN: Loading
	_, err := Load()

	// THEN: The parse error is reported instead of silently using defaults
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.env")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	// GIVEN: A working directory without app.env
	inDir(t, t.TempDir())

	// WHEN: Loading
	cfg, err := Load()

	// THEN: No error, defaults apply
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.HTTP.Port)
}
