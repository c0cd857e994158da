// Package archive extracts downloaded translation bundles onto the
// filesystem. Bundles are zip archives; entries are processed one at a time
// and every entry path is validated before a single byte is written.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	lokerrors "github.com/lokalise-tools/lokalise-sync/errors"
	"github.com/lokalise-tools/lokalise-sync/internal/pool"
)

// Extractor streams zip entries to a target directory.
type Extractor struct {
	fs     fs.Filesystem
	logger *slog.Logger
}

// New creates an Extractor over the given filesystem. A nil logger selects
// slog.Default().
func New(filesystem fs.Filesystem, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		fs:     filesystem,
		logger: logger,
	}
}

// Extract unpacks the archive at archivePath under outputDir. Entries are
// read lazily and file contents are stream-copied, so archives larger than
// memory are fine. Any single entry failure aborts the remaining entries.
//
// Extraction does not remove the source archive; the caller owns its cleanup
// whether extraction succeeded or not.
func (e *Extractor) Extract(archivePath, outputDir string) error {
	f, err := e.fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("sizing archive %s: %w", archivePath, err)
	}

	reader, err := zip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("reading archive %s: %w", archivePath, err)
	}

	for _, entry := range reader.File {
		if err := e.extractEntry(entry, outputDir); err != nil {
			return err
		}
	}

	e.logger.Debug("archive extracted",
		"archive", archivePath,
		"output_dir", outputDir,
		"entries", len(reader.File))
	return nil
}

// extractEntry validates one entry's path and materializes it. The path gate
// runs before any write: entries escaping outputDir through traversal or an
// absolute path fail the whole extraction.
func (e *Extractor) extractEntry(entry *zip.File, outputDir string) error {
	name := entry.Name
	if filepath.IsAbs(name) || strings.HasPrefix(filepath.ToSlash(name), "/") {
		return lokerrors.NewSecurityError("malicious archive entry %q: absolute path", name)
	}

	target := filepath.Join(outputDir, name)
	rel, err := filepath.Rel(outputDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return lokerrors.NewSecurityError("malicious archive entry %q: escapes output directory", name)
	}

	if entry.FileInfo().IsDir() {
		if err := e.fs.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", target, err)
		}
		return nil
	}

	if err := e.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", target, err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", name, err)
	}
	defer src.Close()

	dst, err := e.fs.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	buf := pool.GetCopyBuffer()
	_, copyErr := io.CopyBuffer(dst, src, buf)
	pool.PutCopyBuffer(buf)

	if closeErr := dst.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("writing %s: %w", target, copyErr)
	}
	return nil
}
