package loader

import (
	"fmt"
	"io"
	"os"

	"InvestorsDaily/internal/model"
)

// Source defines where raw market data comes from.
type Source interface {
	// Identify returns the identity of the current version of the data.
	Identify() (model.SourceIdentity, error)
	Open() (io.ReadCloser, error)
}

// FileSource reads a CSV file from disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource { return &FileSource{Path: path} }

func (f *FileSource) Identify() (model.SourceIdentity, error) {
	fi, err := os.Stat(f.Path)
	if err != nil {
		return model.SourceIdentity{}, fmt.Errorf("stat %s: %w", f.Path, err)
	}
	return model.SourceIdentity{Path: f.Path, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

func (f *FileSource) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}
