package parsers

import (
	"context"
	"os"
	"path/filepath"

	logpkg "github.com/haukened/rr-idn/internal/idn/common/log"
	"github.com/haukened/rr-idn/internal/idn/domain"
	"github.com/haukened/rr-idn/internal/idn/repos/blocklist"
)

// FileSource reads blocklist ranges from a file. .yaml, .yml, .json and
// .toml files are parsed as structured documents, anything else as a plain
// list.
type FileSource struct {
	Path   string
	Logger logpkg.Logger
}

// NewFileSource returns a blocklist.Source backed by path.
func NewFileSource(path string, logger logpkg.Logger) *FileSource {
	if logger == nil {
		logger = logpkg.NewNoopLogger()
	}
	return &FileSource{Path: path, Logger: logger}
}

// Load parses the file on every call.
func (s *FileSource) Load(ctx context.Context) ([]domain.BlocklistRange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if parser := ParserFor(filepath.Ext(s.Path)); parser != nil {
		return ParseStructuredFile(s.Path, parser, s.Logger)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePlainList(f, s.Path, s.Logger)
}

var _ blocklist.Source = (*FileSource)(nil)
