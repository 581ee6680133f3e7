package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveFile(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())

	t.Run("saves file successfully", func(t *testing.T) {
		fullPath := filepath.Join(tempDir, "INV-1", "abc", "document.pdf")
		content := []byte("%PDF-1.4")

		require.NoError(t, fs.SaveFile(fullPath, content, FileTypePDF))
		assert.FileExists(t, fullPath)

		saved, err := fs.ReadFile(fullPath)
		require.NoError(t, err)
		assert.Equal(t, content, saved)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		fullPath := filepath.Join(tempDir, "overwrite", "page-1.png")
		require.NoError(t, fs.SaveFile(fullPath, []byte("original"), FileTypeImage))
		require.NoError(t, fs.SaveFile(fullPath, []byte("updated"), FileTypeImage))

		content, err := os.ReadFile(fullPath)
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), content)
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := filepath.Join(tempDir, "clean")
		require.NoError(t, fs.SaveFile(filepath.Join(dir, "document.xlsx"), []byte("x"), FileTypeWorkbook))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "document.xlsx", entries[0].Name())
	})

	t.Run("refuses paths outside base", func(t *testing.T) {
		err := fs.SaveFile(filepath.Join(tempDir, "..", "escape.pdf"), []byte("x"), FileTypePDF)
		assert.Error(t, err)
		_, err = fs.ReadFile("/etc/passwd")
		assert.Error(t, err)
	})
}

func TestLocalFileStorage_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())

	assert.NoError(t, fs.ValidatePath(filepath.Join(tempDir, "INV-1", "document.pdf")))
	assert.NoError(t, fs.ValidatePath(tempDir))

	err := fs.ValidatePath("/etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes base directory")

	assert.Error(t, fs.ValidatePath(filepath.Join(tempDir, "..", "..", "etc", "passwd")))
	// A sibling sharing the base's prefix is still outside it.
	assert.Error(t, fs.ValidatePath(tempDir+"-other/file.pdf"))
}

func TestFileTypeFor(t *testing.T) {
	assert.Equal(t, FileTypePDF, FileTypeFor("PDF"))
	assert.Equal(t, FileTypeImage, FileTypeFor("png"))
	assert.Equal(t, FileTypeWorkbook, FileTypeFor("xlsx"))
	assert.Equal(t, FileTypeGeneric, FileTypeFor("txt"))
	assert.Equal(t, "workbook", FileTypeWorkbook.String())
}
