package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileType represents the type of file being stored
type FileType int

const (
	FileTypeGeneric FileType = iota
	FileTypePDF
	FileTypeWorkbook
	FileTypeImage
)

// FileTypeFor maps an export format to its file type
func FileTypeFor(format string) FileType {
	switch strings.ToLower(format) {
	case "pdf":
		return FileTypePDF
	case "xlsx":
		return FileTypeWorkbook
	case "png":
		return FileTypeImage
	default:
		return FileTypeGeneric
	}
}

func (t FileType) String() string {
	switch t {
	case FileTypePDF:
		return "pdf"
	case FileTypeWorkbook:
		return "workbook"
	case FileTypeImage:
		return "image"
	default:
		return "generic"
	}
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile writes content to fullPath, creating parent directories
	SaveFile(fullPath string, content []byte, fileType FileType) error

	// ReadFile returns the content stored at fullPath
	ReadFile(fullPath string) ([]byte, error)

	// ValidatePath checks path security (no traversal, within base)
	ValidatePath(fullPath string) error
}

// LocalFileStorage implements FileStorage for local filesystem
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage
func NewLocalFileStorage(baseDir string, logger *zap.Logger) *LocalFileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// BaseDir returns the directory all files are confined to
func (s *LocalFileStorage) BaseDir() string { return s.baseDir }

// SaveFile writes content atomically: a temp file in the same directory is
// renamed over fullPath.
func (s *LocalFileStorage) SaveFile(fullPath string, content []byte, fileType FileType) error {
	if err := s.ValidatePath(fullPath); err != nil {
		return err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	tmp, err := os.CreateTemp(parentDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.logger.Error("Failed to write file", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		s.logger.Error("Failed to move file into place", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved successfully",
		zap.String("path", fullPath),
		zap.Int("size", len(content)),
		zap.Stringer("file_type", fileType))

	return nil
}

// ReadFile returns the content at fullPath after validating it
func (s *LocalFileStorage) ReadFile(fullPath string) ([]byte, error) {
	if err := s.ValidatePath(fullPath); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// ValidatePath checks that the path is safe and within baseDir
func (s *LocalFileStorage) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}
