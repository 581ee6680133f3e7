package container

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/garyjia/invoice-layout/internal/application/service"
	"github.com/garyjia/invoice-layout/internal/config"
	"github.com/garyjia/invoice-layout/internal/repository"
	"github.com/garyjia/invoice-layout/pkg/database"
	"go.uber.org/zap"
)

// Container owns the service's components. Start initializes them in
// dependency order; Close tears them down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	db      *database.DB
	exports *repository.ExportRepository
	engine  *EngineBundle
	storage *StorageBundle

	documents service.DocumentService

	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a container. It does not initialize components.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{config: cfg, logger: logger}, nil
}

// Start initializes the database, the rendering engine, export storage and
// the document service.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	db, err := ProvideDatabase(ctx, &c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db
	c.exports = repository.NewExportRepository(db.DB, c.logger)

	engine, err := ProvideEngine(c.config, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	c.engine = engine

	store, err := ProvideStorage(&c.config.Export, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.storage = store

	c.documents = service.NewDocumentService(service.DocumentDeps{
		Builder:   engine.Builder,
		Resolver:  engine.Resolver,
		Contexts:  engine.Contexts,
		Logos:     engine.Logos,
		Assembler: engine.Assembler,
		Encoders:  engine.Encoders,
		Exports:   c.exports,
		Storage:   store.FileStorage,
		Folders:   store.FolderManager,
		Logger:    c.logger,
	})

	c.ready.Store(true)
	c.logger.Info("Container started successfully",
		zap.Int("designs", engine.Catalog.Len()),
		zap.String("default_design", engine.Resolver.DefaultID()),
		zap.Strings("formats", c.documents.Formats()))
	return nil
}

// Close releases the database. Engine and storage hold no resources.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}
	c.logger.Info("Closing container")

	err := c.closeDatabase()
	c.closed.Store(true)
	c.ready.Store(false)

	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeDatabase() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	}
	return err
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Documents returns the document service, or nil before Start.
func (c *Container) Documents() service.DocumentService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.documents
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{Overall: true, Components: make(map[string]ComponentHealth)}
	set := func(name string, h ComponentHealth) {
		status.Components[name] = h
		if !h.Healthy {
			status.Overall = false
		}
	}

	switch {
	case c.db == nil:
		set("database", ComponentHealth{Message: "not initialized"})
	default:
		if err := c.db.Ping(); err != nil {
			set("database", ComponentHealth{Message: fmt.Sprintf("ping failed: %v", err)})
		} else {
			set("database", ComponentHealth{Healthy: true})
		}
	}

	if c.storage == nil {
		set("storage", ComponentHealth{Message: "not initialized"})
	} else if info, err := os.Stat(c.config.Export.OutputDir); err != nil || !info.IsDir() {
		set("storage", ComponentHealth{Message: "output directory unavailable"})
	} else {
		set("storage", ComponentHealth{Healthy: true})
	}

	// Missing fonts degrade output but do not stop rendering.
	if c.engine == nil {
		set("fonts", ComponentHealth{Message: "not initialized"})
	} else {
		def := c.engine.Resolver.Resolve("", nil)
		missing := c.engine.Fonts.GetFonts(def.FontFamily).Missing()
		h := ComponentHealth{Healthy: true, Message: "loaded: " + strings.Join(c.engine.Fonts.Families(), ", ")}
		if len(missing) > 0 {
			h.Message = fmt.Sprintf("%s: %d variants unavailable; %s", def.FontFamily, len(missing), h.Message)
		}
		set("fonts", h)
	}

	return status
}
