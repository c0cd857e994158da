package lokalisesync

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/lokalise-tools/lokalise-sync/internal/fanout"
	"github.com/lokalise-tools/lokalise-sync/internal/langid"
	"github.com/lokalise-tools/lokalise-sync/internal/poller"
	"github.com/lokalise-tools/lokalise-sync/internal/retry"
	"github.com/lokalise-tools/lokalise-sync/internal/scanner"
	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

// UploadDirectory collects translation files under root and uploads them to
// the project as one batch. Files are submitted concurrently up to the
// configured concurrency; a failed file never aborts the batch. Both the
// created processes and the per-file failures come back in collection order
// on the result.
//
// The returned error covers batch-level problems only (collection failure,
// cancelled context). Per-file upload failures are data on the result.
func (c *Client) UploadDirectory(
	ctx context.Context,
	root string,
	opts ...loktypes.UploadOption,
) (*loktypes.UploadResult, error) {
	optCfg := c.uploadConfig(opts)

	files, err := scanner.New(c.fs, c.logger).Collect(ctx, root, scanner.Options{
		IncludePatterns: optCfg.IncludePatterns,
		ExcludePatterns: optCfg.ExcludePatterns,
		Recursive:       optCfg.Recursive,
	})
	if err != nil {
		return nil, fmt.Errorf("collecting files under %s: %w", root, err)
	}

	return c.uploadFiles(ctx, files, optCfg)
}

// UploadFiles uploads an explicit set of files, given as paths relative to
// root. Unlike UploadDirectory no collection pass runs, so include/exclude
// patterns are ignored; a file that cannot be read surfaces as a per-file
// failure on the result.
func (c *Client) UploadFiles(
	ctx context.Context,
	root string,
	relPaths []string,
	opts ...loktypes.UploadOption,
) (*loktypes.UploadResult, error) {
	optCfg := c.uploadConfig(opts)

	files := make([]loktypes.LocalFile, 0, len(relPaths))
	for _, rel := range relPaths {
		rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
		full := path.Join(root, rel)
		file := loktypes.LocalFile{Path: full, RelPath: rel}
		if info, err := c.fs.Stat(full); err == nil {
			file.Size = info.Size()
			file.ModTime = info.ModTime()
		}
		files = append(files, file)
	}

	return c.uploadFiles(ctx, files, optCfg)
}

func (c *Client) uploadConfig(opts []loktypes.UploadOption) loktypes.UploadOptionConfig {
	optCfg := loktypes.UploadOptionConfig{
		Concurrency: c.cfg.Concurrency,
	}
	for _, opt := range opts {
		opt(&optCfg)
	}
	return optCfg
}

func (c *Client) uploadFiles(
	ctx context.Context,
	files []loktypes.LocalFile,
	optCfg loktypes.UploadOptionConfig,
) (*loktypes.UploadResult, error) {
	if len(files) == 0 {
		return &loktypes.UploadResult{}, nil
	}

	start := time.Now()
	results := fanout.RunBounded(ctx, files, optCfg.Concurrency,
		func(ctx context.Context, file loktypes.LocalFile, _ int) (*loktypes.Process, error) {
			return c.uploadOne(ctx, file, &optCfg)
		})

	out := &loktypes.UploadResult{}
	for i, res := range results {
		if res.Err != nil {
			out.Failed = append(out.Failed, loktypes.FileUploadError{
				Path: files[i].Path,
				Err:  res.Err,
			})
			continue
		}
		if res.Value == nil {
			// Skipped file (binary content with skipping enabled).
			continue
		}
		out.Processes = append(out.Processes, *res.Value)
	}

	c.logger.Debug("batch upload submitted",
		"files", len(files),
		"processes", len(out.Processes),
		"failed", len(out.Failed),
		"duration", time.Since(start))

	if optCfg.Poll && len(out.Processes) > 0 {
		out.Processes = c.newPoller().Poll(ctx, out.Processes)
	}

	return out, nil
}

// uploadOne prepares and submits a single file. A nil process with a nil
// error means the file was skipped.
func (c *Client) uploadOne(
	ctx context.Context,
	file loktypes.LocalFile,
	optCfg *loktypes.UploadOptionConfig,
) (*loktypes.Process, error) {
	content, err := c.fs.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file.Path, err)
	}

	mtype := mimetype.Detect(content)
	if optCfg.SkipDetectedBinary && !isTextLike(mtype) {
		c.logger.Debug("skipping binary file", "path", file.Path, "content_type", mtype.String())
		return nil, nil
	}

	payload := &loktypes.UploadPayload{
		Filename:    c.remoteFilename(file, optCfg),
		LangISO:     c.uploadLanguage(file, content, optCfg),
		Data:        base64.StdEncoding.EncodeToString(content),
		ContentType: mtype.String(),
		Params:      optCfg.Params,
	}

	return retry.Do(ctx, c.policy, nil, func(ctx context.Context) (*loktypes.Process, error) {
		return c.api.UploadFile(ctx, c.cfg.ProjectID, payload)
	})
}

// remoteFilename derives the filename the remote API records for a file. A
// caller-supplied function wins; errors and blank names fall back to the
// project-relative path.
func (c *Client) remoteFilename(file loktypes.LocalFile, optCfg *loktypes.UploadOptionConfig) string {
	if optCfg.Filename != nil {
		name, err := optCfg.Filename(file)
		if err == nil && strings.TrimSpace(name) != "" {
			return name
		}
		if err != nil {
			c.logger.Debug("filename derivation failed, using relative path",
				"path", file.Path, "error", err)
		}
	}
	return file.RelPath
}

// uploadLanguage derives the language code for a file. A caller-supplied
// inferer wins; errors and blank codes fall back to filename parsing.
func (c *Client) uploadLanguage(
	file loktypes.LocalFile,
	content []byte,
	optCfg *loktypes.UploadOptionConfig,
) string {
	if optCfg.LangInferer != nil {
		lang, err := optCfg.LangInferer(file, content)
		if err == nil && strings.TrimSpace(lang) != "" {
			return lang
		}
		if err != nil {
			c.logger.Debug("language inference failed, falling back to filename",
				"path", file.Path, "error", err)
		}
	}
	return languageFromFilename(file.RelPath)
}

// languageFromFilename extracts a language code from a filename: the
// extension is stripped and the segment after the last remaining dot wins.
// "messages.en.json" and "en.json" both give "en".
func languageFromFilename(relPath string) string {
	base := path.Base(relPath)
	base = strings.TrimSuffix(base, path.Ext(base))
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}

// ContentLanguageInferer returns a language inferer that detects the dominant
// language of the file content itself. Useful for files whose names carry no
// language code; blank detections fall back to filename parsing as usual.
func ContentLanguageInferer() loktypes.LangInferer {
	return func(_ loktypes.LocalFile, content []byte) (string, error) {
		return langid.Detect(content), nil
	}
}

// isTextLike walks the MIME hierarchy looking for a text/plain ancestor, so
// structured text formats like JSON and XML count as text.
func isTextLike(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// newPoller assembles a process poller over the client's API boundary.
func (c *Client) newPoller() *poller.Poller {
	fetch := func(ctx context.Context, id string) (*loktypes.Process, error) {
		return c.api.GetProcess(ctx, c.cfg.ProjectID, id)
	}
	return poller.New(fetch, c.policy, c.logger, poller.Config{
		InitialWait:    c.cfg.PollInitialWait,
		MaximumWait:    c.cfg.PollMaximumWait,
		Concurrency:    c.cfg.Concurrency,
		FastFollowWait: c.cfg.StatusFastFollowWait,
	})
}
