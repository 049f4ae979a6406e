package romid

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ludex/internal/errs"
)

func osOpen(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// ByteSource acquires a bounded prefix of a file's content.
type ByteSource interface {
	ReadPrefix(ctx context.Context, path string, maxBytes int64) ([]byte, error)
}

// Extractor decompresses a bounded prefix from an opaque container format.
// Typically backed by an external tool (chdman extract).
type Extractor func(ctx context.Context, path string, maxBytes int64) ([]byte, error)

// FileSource reads plain files directly, unwraps gzip containers, and
// delegates opaque formats to the configured extractors by extension.
type FileSource struct {
	// Extractors maps a lowercase extension (".chd") to its decompressor.
	Extractors map[string]Extractor

	open func(string) (io.ReadCloser, error)
}

// NewFileSource constructs a source with the provided opaque-format extractors.
func NewFileSource(extractors map[string]Extractor) *FileSource {
	return &FileSource{Extractors: extractors}
}

// ReadPrefix returns up to maxBytes from the start of path's content.
func (s *FileSource) ReadPrefix(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if s != nil && s.Extractors != nil {
		if extract, ok := s.Extractors[ext]; ok {
			data, err := extract(ctx, path, maxBytes)
			if err != nil {
				return nil, errs.Wrap(errs.ErrFileRead, "romid", "extract prefix", path, err)
			}
			return data, nil
		}
	}

	file, err := s.openFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrFileRead, "romid", "open", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if ext == ".gz" {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, errs.Wrap(errs.ErrFileRead, "romid", "gzip open", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxBytes))
	if err != nil {
		return nil, errs.Wrap(errs.ErrFileRead, "romid", "read prefix", path, err)
	}
	return data, nil
}

func (s *FileSource) openFile(path string) (io.ReadCloser, error) {
	if s != nil && s.open != nil {
		return s.open(path)
	}
	return osOpen(path)
}
