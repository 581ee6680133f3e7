package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// FolderManager lays out export folders as {baseDir}/{invoice}/{hash prefix}
type FolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewFolderManager creates a new FolderManager
func NewFolderManager(baseDir string, logger *zap.Logger) *FolderManager {
	return &FolderManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// ExportFolderPath returns the folder for one artifact of an invoice.
// It does not create the folder.
func (m *FolderManager) ExportFolderPath(invoiceNumber, contentHash string) string {
	invoice := m.SanitizeFolderName(invoiceNumber)
	if invoice == "" {
		invoice = "unnumbered"
	}
	hash := m.SanitizeFolderName(contentHash)
	if len(hash) > 16 {
		hash = hash[:16]
	}
	if hash == "" {
		hash = "unhashed"
	}
	return filepath.Join(m.baseDir, invoice, hash)
}

// CreateExportFolder creates the folder for one artifact and returns its path
func (m *FolderManager) CreateExportFolder(invoiceNumber, contentHash string) (string, error) {
	folderPath := m.ExportFolderPath(invoiceNumber, contentHash)

	if err := os.MkdirAll(folderPath, 0755); err != nil {
		m.logger.Error("Failed to create export folder",
			zap.String("invoice_number", invoiceNumber),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	m.logger.Debug("Created export folder",
		zap.String("invoice_number", invoiceNumber),
		zap.String("folder_path", folderPath))

	return folderPath, nil
}

// FolderExists checks if the artifact folder already exists
func (m *FolderManager) FolderExists(invoiceNumber, contentHash string) bool {
	info, err := os.Stat(m.ExportFolderPath(invoiceNumber, contentHash))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SanitizeFolderName keeps only letters, digits, hyphens and underscores
func (m *FolderManager) SanitizeFolderName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	return unsafeNameChars.ReplaceAllString(name, "")
}
