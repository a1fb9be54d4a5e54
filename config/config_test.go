package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scriptorium.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
edition: aeneid.yaml
linebreak:
  linesPerPage: 12
watch:
  debounce: 500ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Linebreak.LinesPerPage)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 210.0, cfg.Page.Width)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "aeneid.yaml"), cfg.Path(cfg.Edition))
	assert.Equal(t, []string{cfg.Path("aeneid.yaml")}, cfg.WatchedFiles())
}

func TestLoadResolvesStylesheetAndAbsolutePaths(t *testing.T) {
	path := writeConfig(t, "edition: /srv/ed.yaml\nstylesheet: styles/app.sheet\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/ed.yaml", cfg.Path(cfg.Edition))
	assert.Equal(t, filepath.Join(cfg.Dir(), "styles", "app.sheet"), cfg.Path(cfg.Stylesheet))
	assert.Len(t, cfg.WatchedFiles(), 2)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing edition": "linebreak:\n  linesPerPage: 3\n",
		"negative lines":  "edition: e.yaml\nlinebreak:\n  linesPerPage: -1\n",
		"narrow page":     "edition: e.yaml\npage:\n  width: 50\n",
		"log format":      "edition: e.yaml\nlog:\n  format: xml\n",
		"bad yaml":        "edition: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("line map stale", "epoch", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "line map stale", rec["msg"])
	assert.Equal(t, float64(3), rec["epoch"])
	_, err := time.Parse(time.RFC3339, rec["time"].(string))
	assert.NoError(t, err)
}
