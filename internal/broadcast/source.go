package broadcast

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// PDFSource is the document the presenter serves to the audience
type PDFSource interface {
	// Name is the display name the channel name is derived from
	Name() string
	ReadAll(ctx context.Context) ([]byte, error)
}

// FileSource reads the PDF from disk on every request
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return filepath.Base(s.Path) }

func (s FileSource) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrPermission) {
		return nil, &PermissionError{Path: s.Path, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return data, nil
}

// MemorySource serves bytes already held in memory
type MemorySource struct {
	FileName string
	Data     []byte
}

func (s MemorySource) Name() string { return s.FileName }

func (s MemorySource) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Data, nil
}
