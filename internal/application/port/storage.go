package port

import "github.com/garyjia/invoice-layout/internal/storage"

// FileStorage defines file storage operations
type FileStorage interface {
	SaveFile(fullPath string, content []byte, fileType storage.FileType) error
	ReadFile(fullPath string) ([]byte, error)
}

// FolderManager defines export folder operations
type FolderManager interface {
	CreateExportFolder(invoiceNumber, contentHash string) (string, error)
	FolderExists(invoiceNumber, contentHash string) bool
}
