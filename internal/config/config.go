package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Render   RenderConfig   `mapstructure:"render"`
	Designs  DesignsConfig  `mapstructure:"designs"`
	Currency CurrencyConfig `mapstructure:"currency"`
	Export   ExportConfig   `mapstructure:"export"`
	Logo     LogoConfig     `mapstructure:"logo"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// Empty means the migrations bundled with the binary
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// RenderConfig controls fonts and page assembly
type RenderConfig struct {
	FontDirs      []string `mapstructure:"font_dirs"`
	DefaultDesign string   `mapstructure:"default_design"`
	Parallel      bool     `mapstructure:"parallel"`
	MaxWorkers    int      `mapstructure:"max_workers"`
	RasterDPI     float64  `mapstructure:"raster_dpi"`
}

// DesignsConfig points at an optional design catalog file
type DesignsConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
}

// CurrencyConfig holds the currency symbol table
type CurrencyConfig struct {
	TablePath string            `mapstructure:"table_path"`
	Overrides map[string]string `mapstructure:"overrides"`
}

// ExportConfig controls where exported documents are written
type ExportConfig struct {
	OutputDir string   `mapstructure:"output_dir"`
	Formats   []string `mapstructure:"formats"`
}

// LogoConfig controls logo fetching
type LogoConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxBytes     int64         `mapstructure:"max_bytes"`
	MaxPixels    int64         `mapstructure:"max_pixels"`
	BaseDir      string        `mapstructure:"base_dir"`
	AllowedHosts []string      `mapstructure:"allowed_hosts"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file, a .env file beside the working
// directory, and environment variables. An empty configPath uses defaults only.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.GetViper()
	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv sets variables from path without overriding the real environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.mode", "release")

	// Database defaults
	v.SetDefault("database.path", "data/exports.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	// Render defaults
	v.SetDefault("render.font_dirs", []string{})
	v.SetDefault("render.default_design", "classic")
	v.SetDefault("render.parallel", true)
	v.SetDefault("render.max_workers", 4)
	v.SetDefault("render.raster_dpi", 144.0)

	v.SetDefault("designs.catalog_path", "")
	v.SetDefault("currency.table_path", "")

	// Export defaults
	v.SetDefault("export.output_dir", "exports")
	v.SetDefault("export.formats", []string{"pdf", "png", "xlsx"})

	// Logo defaults
	v.SetDefault("logo.fetch_timeout", 10*time.Second)
	v.SetDefault("logo.max_bytes", 2<<20)
	v.SetDefault("logo.max_pixels", 4096*4096)
	v.SetDefault("logo.base_dir", "")
	v.SetDefault("logo.allowed_hosts", []string{})

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds the short environment names used in deployments
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.path", "INVOICE_DB_PATH")
	v.BindEnv("export.output_dir", "INVOICE_OUTPUT_DIR")
	v.BindEnv("render.default_design", "INVOICE_DEFAULT_DESIGN")
	v.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}
	if c.Render.MaxWorkers < 1 {
		return fmt.Errorf("render.max_workers must be at least 1")
	}
	if c.Render.RasterDPI <= 0 {
		return fmt.Errorf("render.raster_dpi must be positive")
	}
	if c.Logo.MaxBytes <= 0 {
		return fmt.Errorf("logo.max_bytes must be positive")
	}
	if c.Logo.MaxPixels <= 0 {
		return fmt.Errorf("logo.max_pixels must be positive")
	}
	for _, f := range c.Export.Formats {
		switch strings.ToLower(f) {
		case "pdf", "png", "xlsx":
		default:
			return fmt.Errorf("export.formats: unsupported format %q", f)
		}
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
