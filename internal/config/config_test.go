package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "classic", cfg.Render.DefaultDesign)
	assert.Equal(t, 144.0, cfg.Render.RasterDPI)
	assert.Equal(t, 10*time.Second, cfg.Logo.FetchTimeout)
	assert.Equal(t, int64(2<<20), cfg.Logo.MaxBytes)
	assert.Equal(t, int64(4096*4096), cfg.Logo.MaxPixels)
	assert.Empty(t, cfg.Logo.BaseDir)
	assert.Equal(t, []string{"pdf", "png", "xlsx"}, cfg.Export.Formats)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoad_FileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("LOG_LEVEL", "debug")

	path := writeConfig(t, `
server:
  port: 9090
render:
  default_design: modern
  max_workers: 2
  font_dirs: ["/usr/share/fonts/truetype"]
currency:
  overrides:
    CHF: "Fr."
export:
  output_dir: /tmp/out
  formats: [pdf]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "modern", cfg.Render.DefaultDesign)
	assert.Equal(t, 2, cfg.Render.MaxWorkers)
	assert.Equal(t, []string{"/usr/share/fonts/truetype"}, cfg.Render.FontDirs)
	assert.Equal(t, "Fr.", cfg.Currency.Overrides["chf"])
	assert.Equal(t, "/tmp/out", cfg.Export.OutputDir)
	assert.Equal(t, []string{"pdf"}, cfg.Export.Formats)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Path: "x.db"},
			Render:   RenderConfig{MaxWorkers: 1, RasterDPI: 72},
			Export:   ExportConfig{OutputDir: "out", Formats: []string{"PDF"}},
			Logo:     LogoConfig{MaxBytes: 1, MaxPixels: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, false},
		{"no database", func(c *Config) { c.Database.Path = "" }, false},
		{"no output dir", func(c *Config) { c.Export.OutputDir = "" }, false},
		{"no workers", func(c *Config) { c.Render.MaxWorkers = 0 }, false},
		{"bad dpi", func(c *Config) { c.Render.RasterDPI = 0 }, false},
		{"bad format", func(c *Config) { c.Export.Formats = []string{"docx"} }, false},
		{"bad logo limit", func(c *Config) { c.Logo.MaxBytes = 0 }, false},
		{"bad logo pixel budget", func(c *Config) { c.Logo.MaxPixels = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
