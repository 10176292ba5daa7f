package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"THG_API_BASE", "REACT_APP_API_BASE", "THG_DOWNLOAD_DIR", "THG_STATE_DIR", "THG_DEBUG"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("expected BaseURL=%s, got %s", DefaultBaseURL, cfg.API.BaseURL)
	}
	if cfg.GetTimeout() != 45*time.Second {
		t.Errorf("expected 45s generic timeout, got %v", cfg.GetTimeout())
	}
	if cfg.GetParcelTimeout() != 60*time.Second {
		t.Errorf("expected 60s parcel timeout, got %v", cfg.GetParcelTimeout())
	}
	if cfg.GetReportTimeout() != 120*time.Second {
		t.Errorf("expected 120s report timeout, got %v", cfg.GetReportTimeout())
	}
	if cfg.Logging.DebugMode {
		t.Error("debug mode should be off by default")
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://letters.example.com/"
	cfg.API.ParcelTimeout = "90s"
	cfg.Paths.DownloadDir = "/tmp/letters"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://letters.example.com", loaded.API.BaseURL, "trailing slash must be stripped")
	assert.Equal(t, 90*time.Second, loaded.GetParcelTimeout())
	assert.Equal(t, "/tmp/letters", loaded.Paths.DownloadDir)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("THG_API_BASE wins over REACT_APP_API_BASE", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REACT_APP_API_BASE", "http://react:5000")
		t.Setenv("THG_API_BASE", "http://thg:5000/")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://thg:5000/", cfg.API.BaseURL)
	})

	t.Run("REACT_APP_API_BASE alone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REACT_APP_API_BASE", "http://react:5000")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://react:5000", cfg.API.BaseURL)
	})

	t.Run("THG_STATE_DIR moves history db", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("THG_STATE_DIR", "/var/thg")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/var/thg", cfg.Paths.StateDir)
		assert.Equal(t, filepath.Join("/var/thg", "history.db"), cfg.Paths.HistoryDB)
	})

	t.Run("THG_DEBUG enables debug logging", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("THG_DEBUG", "true")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "http://a:5000", NormalizeBaseURL("http://a:5000/"))
	assert.Equal(t, "http://a:5000", NormalizeBaseURL("  http://a:5000  "))
	assert.Equal(t, "http://a:5000/api", NormalizeBaseURL("http://a:5000/api/"))
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.API.BaseURL = "ftp://example.com"
	assert.Error(t, cfg.Validate())

	cfg.API.BaseURL = "http://"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Paths.StateDir = ""
	assert.Error(t, cfg.Validate())
}

func TestTimeoutFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "soon"
	cfg.API.ReportTimeout = "-5s"

	assert.Equal(t, 45*time.Second, cfg.GetTimeout())
	assert.Equal(t, 120*time.Second, cfg.GetReportTimeout())
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	assert.False(t, lc.IsCategoryEnabled("api"), "disabled when debug mode is off")

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("api"), "all categories on by default")

	lc.Categories = map[string]bool{"api": false}
	assert.False(t, lc.IsCategoryEnabled("api"))
	assert.True(t, lc.IsCategoryEnabled("session"), "unlisted categories stay on")
}
