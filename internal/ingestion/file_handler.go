package ingestion

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileHandler manages the extraction directory documents are staged in
// before a batch run. The directory is wiped and repopulated on every run.
type FileHandler struct {
	dir string
}

// NewFileHandler creates a file handler rooted at dir.
func NewFileHandler(dir string) *FileHandler {
	return &FileHandler{dir: dir}
}

// Dir returns the staging directory path.
func (fh *FileHandler) Dir() string {
	return fh.dir
}

// Reset destructively clears the staging directory and recreates it.
func (fh *FileHandler) Reset() error {
	if err := os.RemoveAll(fh.dir); err != nil {
		return fmt.Errorf("failed to clear extraction directory: %w", err)
	}
	if err := os.MkdirAll(fh.dir, 0755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}
	return nil
}

// SaveUpload writes an uploaded document into the staging directory and
// returns its path. Only the base name of the provided filename is used.
func (fh *FileHandler) SaveUpload(filename string, content io.Reader) (string, error) {
	if err := os.MkdirAll(fh.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create extraction directory: %w", err)
	}

	filePath := filepath.Join(fh.dir, filepath.Base(filename))
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// UnpackZip extracts the supported documents from a ZIP archive into the
// staging directory. Entries are flattened to their base names and anything
// that is not a PDF or DOCX is ignored.
func (fh *FileHandler) UnpackZip(archivePath string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(fh.dir, 0755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		name := filepath.Base(entry.Name)
		// Flattening to the base name also defuses zip-slip paths.
		if strings.HasPrefix(name, ".") || !IsSupportedDocument(name) {
			continue
		}

		src, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to open zip entry %s: %w", entry.Name, err)
		}

		if _, err := fh.SaveUpload(name, src); err != nil {
			src.Close()
			return fmt.Errorf("failed to unpack %s: %w", entry.Name, err)
		}
		src.Close()
	}

	return nil
}

// ListDocuments returns the supported documents currently staged, sorted by
// name for a stable processing order.
func (fh *FileHandler) ListDocuments() ([]string, error) {
	entries, err := os.ReadDir(fh.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read extraction directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSupportedDocument(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(fh.dir, entry.Name()))
	}

	sort.Strings(files)
	return files, nil
}
