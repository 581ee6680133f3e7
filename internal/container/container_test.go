package container

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/garyjia/invoice-layout/internal/config"
	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/garyjia/invoice-layout/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080},
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "exports.db"), MaxOpenConns: 1},
		Render:   config.RenderConfig{DefaultDesign: "modern", MaxWorkers: 2, RasterDPI: 72},
		Export:   config.ExportConfig{OutputDir: filepath.Join(dir, "exports"), Formats: []string{"pdf", "XLSX"}},
		Logo:     config.LogoConfig{FetchTimeout: time.Second, MaxBytes: 1 << 20, MaxPixels: 1 << 20},
	}
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)
	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	bad := testConfig(t)
	bad.Render.MaxWorkers = 0
	_, err = NewContainer(bad, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	assert.False(t, c.Ready())
	assert.Nil(t, c.Documents())
	assert.False(t, c.Health().Overall)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()))

	docs := c.Documents()
	require.NotNil(t, docs)
	assert.Equal(t, []string{"pdf", "xlsx"}, docs.Formats())

	health := c.Health()
	assert.True(t, health.Overall, health.Components)
	assert.True(t, health.Components["database"].Healthy)
	assert.True(t, health.Components["storage"].Healthy)
	assert.True(t, health.Components["fonts"].Healthy)
	def := c.engine.Resolver.Resolve("", nil)
	assert.Contains(t, health.Components["fonts"].Message, "loaded: ")
	assert.Contains(t, health.Components["fonts"].Message, def.FontFamily)

	name := "INV-9"
	res, err := docs.Export(context.Background(), entity.DocumentRequest{
		Invoice: entity.InvoiceRecord{Number: &name},
	}, entity.ExportFormatXLSX)
	require.NoError(t, err)
	assert.False(t, res.Reused)

	again, err := docs.Export(context.Background(), entity.DocumentRequest{
		Invoice: entity.InvoiceRecord{Number: &name},
	}, entity.ExportFormatXLSX)
	require.NoError(t, err)
	assert.True(t, again.Reused)
	assert.Equal(t, res.Record.ID, again.Record.ID)

	got, err := docs.GetExport(context.Background(), res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "modern", got.DesignID)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}

func TestEnabledEncoders(t *testing.T) {
	pdf := export.NewPDFEncoder(nil, nil)
	wb := export.NewWorkbookEncoder(nil)

	reg := EnabledEncoders([]string{" PDF "}, pdf, wb)
	_, err := reg.Get("pdf")
	assert.NoError(t, err)
	_, err = reg.Get("xlsx")
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}
