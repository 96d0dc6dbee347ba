package pdfpc

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"pdf-presenter/internal/models"
)

// LoadFile reads and validates a .pdfpc file from disk
func LoadFile(path string) (*models.PdfpcConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// SaveSlide records the slide the talk stopped at in the savedSlide field of
// a .pdfpc file. Every other field, known or not, is written back unchanged.
func SaveSlide(path string, slide uint32) error {
	fileLock := flock.New(path + ".lock")
	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("config file is locked by another presenter: %s", path)
	}
	// The lock file is never removed; all writers must share its inode.
	defer fileLock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	raw, err := json.Marshal(slide)
	if err != nil {
		return fmt.Errorf("failed to marshal saved slide: %w", err)
	}
	fields["savedSlide"] = raw

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return writeAtomic(path, out)
}

// writeAtomic writes data next to path and renames it into place
func writeAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	mode := os.FileMode(0644)
	if err == nil {
		mode = info.Mode().Perm()
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, mode); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	file, err := os.OpenFile(tempPath, os.O_RDWR, mode)
	if err != nil {
		return fmt.Errorf("failed to open temp file for sync: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	file.Close()

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
