// Package scanner collects local translation files for upload. It walks a
// root directory through the filesystem abstraction and filters candidates
// with include/exclude glob patterns.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

// Options controls one collection pass.
type Options struct {
	// IncludePatterns restricts collection to matching relative paths
	IncludePatterns []string

	// ExcludePatterns removes matching relative paths
	ExcludePatterns []string

	// Recursive walks subdirectories; otherwise only direct children of
	// the root are considered
	Recursive bool
}

// Scanner walks the local filesystem for upload candidates.
type Scanner struct {
	fs      fs.Filesystem
	matcher *PatternMatcher
	logger  *slog.Logger
}

// New creates a Scanner. A nil logger selects slog.Default().
func New(filesystem fs.Filesystem, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		fs:      filesystem,
		matcher: NewPatternMatcher(),
		logger:  logger,
	}
}

// Collect scans root and returns the selected files in walk order. Unreadable
// directories are logged and treated as empty rather than failing the whole
// collection.
func (s *Scanner) Collect(ctx context.Context, root string, opts Options) ([]loktypes.LocalFile, error) {
	var files []loktypes.LocalFile

	err := s.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if !opts.Recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("resolving relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		if !s.matcher.ShouldIncludeFile(relPath, opts.IncludePatterns, opts.ExcludePatterns) {
			return nil
		}

		files = append(files, loktypes.LocalFile{
			Path:    path,
			RelPath: relPath,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", root, err)
	}

	return files, nil
}
