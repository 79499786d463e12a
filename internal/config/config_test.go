package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into an empty directory so a developer's .env does
// not leak into the assertions.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("data", "countries.geojson"), cfg.CountriesPath)
	assert.Equal(t, filepath.Join("data", "earthquakes.geojson"), cfg.EarthquakesPath)
	assert.Equal(t, []string{"ISO_A3", "ADM0_A3", "ISO_A3_EH"}, cfg.IDProperties)
	assert.Equal(t, "ADMIN", cfg.NameProperty)
	assert.True(t, cfg.UseIndex)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, filepath.Join(os.TempDir(), "quakemap.log"), cfg.LogFile)
}

func TestLoad_CustomEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("QUAKEMAP_COUNTRIES", "/data/ne.geojson")
	t.Setenv("QUAKEMAP_EARTHQUAKES", "/data/usgs.geojson")
	t.Setenv("QUAKEMAP_ID_PROPERTIES", "ADM0_A3, ISO_A3 ,")
	t.Setenv("QUAKEMAP_NAME_PROPERTY", "NAME")
	t.Setenv("QUAKEMAP_INDEX", "false")
	t.Setenv("QUAKEMAP_METRICS_ADDR", ":9100")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("QUAKEMAP_LOG_FILE", "/var/log/quakemap.log")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/ne.geojson", cfg.CountriesPath)
	assert.Equal(t, "/data/usgs.geojson", cfg.EarthquakesPath)
	assert.Equal(t, []string{"ADM0_A3", "ISO_A3"}, cfg.IDProperties)
	assert.Equal(t, "NAME", cfg.NameProperty)
	assert.False(t, cfg.UseIndex)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "/var/log/quakemap.log", cfg.LogFile)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("QUAKEMAP_NAME_PROPERTY=NAME_EN\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("QUAKEMAP_NAME_PROPERTY") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "NAME_EN", cfg.NameProperty)
}

func TestLoad_InvalidIndex(t *testing.T) {
	chdirTemp(t)
	t.Setenv("QUAKEMAP_INDEX", "maybe")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUAKEMAP_INDEX")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LOG_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestValidate_EmptyIDProperties(t *testing.T) {
	chdirTemp(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.IDProperties = nil
	assert.ErrorContains(t, cfg.Validate(), "QUAKEMAP_ID_PROPERTIES")
}
