// Package container wires the invoice layout service and manages its lifecycle.
package container

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/garyjia/invoice-layout/internal/config"
	"github.com/garyjia/invoice-layout/internal/document"
	"github.com/garyjia/invoice-layout/internal/export"
	"github.com/garyjia/invoice-layout/internal/fonts"
	"github.com/garyjia/invoice-layout/internal/logo"
	"github.com/garyjia/invoice-layout/internal/render"
	"github.com/garyjia/invoice-layout/internal/storage"
	"github.com/garyjia/invoice-layout/internal/theme"
	"github.com/garyjia/invoice-layout/pkg/database"
	"go.uber.org/zap"
)

// EngineBundle holds the stateless rendering pipeline.
type EngineBundle struct {
	Catalog   *theme.Catalog
	Resolver  *theme.Resolver
	Fonts     *fonts.Cache
	Builder   *document.Builder
	Contexts  *render.ContextCache
	Logos     *logo.Loader
	Assembler *export.Assembler
	Encoders  export.Registry
}

// StorageBundle holds storage-related components.
type StorageBundle struct {
	FileStorage   *storage.LocalFileStorage
	FolderManager *storage.FolderManager
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*database.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(ctx, cfg.MigrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// ProvideEngine loads the design catalog and currency table and builds the
// rendering pipeline. Only the configured export formats get an encoder.
func ProvideEngine(cfg *config.Config, logger *zap.Logger) (*EngineBundle, error) {
	catalog, err := theme.LoadCatalog(cfg.Designs.CatalogPath)
	if err != nil {
		return nil, err
	}
	currencies, err := document.LoadCurrencyTable(cfg.Currency.TablePath)
	if err != nil {
		return nil, err
	}
	currencies = currencies.With(cfg.Currency.Overrides)

	fontCache := fonts.NewCache(fonts.NewMatcher(cfg.Render.FontDirs), logger)
	resolver := theme.NewResolver(catalog, cfg.Render.DefaultDesign, logger)
	pdf := export.NewPDFEncoder(fontCache, logger)

	return &EngineBundle{
		Catalog:  catalog,
		Resolver: resolver,
		Fonts:    fontCache,
		Builder:  document.NewBuilder(currencies, logger),
		Contexts: render.NewContextCache(resolver, fontCache),
		Logos: logo.NewLoader(logo.Config{
			FetchTimeout: cfg.Logo.FetchTimeout,
			MaxBytes:     cfg.Logo.MaxBytes,
			MaxPixels:    cfg.Logo.MaxPixels,
			BaseDir:      cfg.Logo.BaseDir,
			AllowedHosts: cfg.Logo.AllowedHosts,
		}, logger),
		Assembler: export.NewAssembler(fontCache, render.NewRenderer(logger), export.Options{
			Parallel:   cfg.Render.Parallel,
			MaxWorkers: cfg.Render.MaxWorkers,
		}, logger),
		Encoders: EnabledEncoders(cfg.Export.Formats,
			pdf,
			export.NewPNGEncoder(pdf, cfg.Render.RasterDPI, logger),
			export.NewWorkbookEncoder(logger),
		),
	}, nil
}

// ProvideStorage creates the export output directory and its storage helpers.
func ProvideStorage(cfg *config.ExportConfig, logger *zap.Logger) (*StorageBundle, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &StorageBundle{
		FileStorage:   storage.NewLocalFileStorage(cfg.OutputDir, logger),
		FolderManager: storage.NewFolderManager(cfg.OutputDir, logger),
	}, nil
}

// EnabledEncoders keeps the encoders whose format is listed in formats.
func EnabledEncoders(formats []string, encoders ...export.Encoder) export.Registry {
	enabled := make(map[string]bool, len(formats))
	for _, f := range formats {
		enabled[strings.ToLower(strings.TrimSpace(f))] = true
	}
	var keep []export.Encoder
	for _, e := range encoders {
		if enabled[e.Format()] {
			keep = append(keep, e)
		}
	}
	return export.NewRegistry(keep...)
}
