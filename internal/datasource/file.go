package datasource

import (
	"context"
	"fmt"
	"os"

	"github.com/seenimoa/donutreport/pkg/models"
)

// File reads a CSV export saved on disk.
type File struct {
	path string
}

// NewFile creates a local file source.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file:" + f.path }

// Fetch opens and parses the file. ctx is only checked before reading.
func (f *File) Fetch(ctx context.Context) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer fh.Close()

	t, err := ParseCSV(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return t, nil
}
