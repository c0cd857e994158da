package lokalisesync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	lokerrors "github.com/lokalise-tools/lokalise-sync/errors"
	"github.com/lokalise-tools/lokalise-sync/internal/api"
	"github.com/lokalise-tools/lokalise-sync/internal/archive"
	"github.com/lokalise-tools/lokalise-sync/internal/pool"
	"github.com/lokalise-tools/lokalise-sync/internal/retry"
	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

// DownloadBundle builds a translation bundle for the project, fetches it, and
// extracts its files under destDir. In synchronous mode (the default) the
// remote API returns the bundle URL directly; in asynchronous mode a queued
// process builds the bundle and is polled to completion first.
//
// The downloaded archive lands in a uniquely named temp file that is removed
// once extraction finishes, whether it succeeded or not.
func (c *Client) DownloadBundle(
	ctx context.Context,
	destDir string,
	opts ...loktypes.DownloadOption,
) (*loktypes.DownloadResult, error) {
	optCfg := loktypes.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(&optCfg)
	}

	async := c.cfg.AsyncDownload
	if optCfg.Async != nil {
		async = *optCfg.Async
	}

	start := time.Now()

	var bundleURL string
	var proc *loktypes.Process
	var err error
	if async {
		bundleURL, proc, err = c.asyncBundleURL(ctx, &optCfg.Params)
	} else {
		bundleURL, err = c.syncBundleURL(ctx, &optCfg.Params)
	}
	if err != nil {
		return nil, err
	}

	if err := validateBundleURL(bundleURL); err != nil {
		return nil, err
	}

	archivePath, err := c.fetchBundle(ctx, bundleURL)
	if archivePath != "" {
		defer func() {
			if rmErr := c.fs.Remove(archivePath); rmErr != nil {
				c.logger.Warn("temp bundle cleanup failed", "path", archivePath, "error", rmErr)
			}
		}()
	}
	if err != nil {
		return nil, err
	}

	if err := archive.New(c.fs, c.logger).Extract(archivePath, destDir); err != nil {
		return nil, err
	}

	c.logger.Debug("bundle downloaded",
		"dest_dir", destDir,
		"async", async,
		"duration", time.Since(start))

	return &loktypes.DownloadResult{
		BundleURL: bundleURL,
		Process:   proc,
		Duration:  time.Since(start),
	}, nil
}

// syncBundleURL asks the remote API to build the bundle inline and hand back
// its URL.
func (c *Client) syncBundleURL(ctx context.Context, params *loktypes.DownloadParams) (string, error) {
	desc, err := retry.Do(ctx, c.policy, nil, func(ctx context.Context) (*api.BundleDescriptor, error) {
		return c.api.DownloadBundle(ctx, c.cfg.ProjectID, params)
	})
	if err != nil {
		return "", err
	}
	return desc.URL, nil
}

// asyncBundleURL enqueues a bundle build, polls the process to a terminal
// state, and classifies the outcome.
func (c *Client) asyncBundleURL(
	ctx context.Context,
	params *loktypes.DownloadParams,
) (string, *loktypes.Process, error) {
	created, err := retry.Do(ctx, c.policy, nil, func(ctx context.Context) (*loktypes.Process, error) {
		return c.api.CreateDownloadProcess(ctx, c.cfg.ProjectID, params)
	})
	if err != nil {
		return "", nil, err
	}

	polled := c.newPoller().Poll(ctx, []loktypes.Process{*created})
	final := polled[0]

	switch final.Status {
	case loktypes.StatusFinished:
		bundleURL, ok := final.DownloadURL()
		if !ok {
			return "", &final, lokerrors.NewLokaliseError(
				fmt.Sprintf("download process %s finished without a bundle URL", final.ID), 0,
			).WithCause(lokerrors.ErrNoBundleURL)
		}
		return bundleURL, &final, nil
	case loktypes.StatusFailed, loktypes.StatusCancelled:
		msg := fmt.Sprintf("download process %s %s", final.ID, final.Status)
		if final.Message != "" {
			msg += ": " + final.Message
		}
		return "", &final, lokerrors.NewLokaliseError(msg, 0)
	default:
		return "", &final, lokerrors.NewTimeoutError(
			"download process %s still %q after polling budget", final.ID, final.Status)
	}
}

// validateBundleURL rejects anything other than an http(s) bundle location
// before a request is issued.
func validateBundleURL(bundleURL string) error {
	u, err := url.Parse(bundleURL)
	if err != nil {
		return lokerrors.NewValidationError("invalid bundle URL %q: %v", bundleURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return lokerrors.NewValidationError("unsupported bundle URL scheme %q", u.Scheme)
	}
	return nil
}

// fetchBundle streams the bundle to a uniquely named temp file and returns
// its path. The path is returned even on failure so the caller can clean up
// whatever was written.
func (c *Client) fetchBundle(ctx context.Context, bundleURL string) (string, error) {
	if c.cfg.BundleDownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.BundleDownloadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bundleURL, nil)
	if err != nil {
		return "", fmt.Errorf("building bundle request: %w", err)
	}

	httpClient := c.cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", lokerrors.NewTimeoutError("bundle download exceeded %s", c.cfg.BundleDownloadTimeout)
		}
		return "", fmt.Errorf("fetching bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", lokerrors.NewLokaliseError("unexpected bundle response", resp.StatusCode)
	}

	archivePath := filepath.Join(os.TempDir(), "lokalise-bundle-"+uuid.NewString()+".zip")
	dst, err := c.fs.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("creating temp bundle %s: %w", archivePath, err)
	}

	buf := pool.GetCopyBuffer()
	_, copyErr := io.CopyBuffer(dst, resp.Body, buf)
	pool.PutCopyBuffer(buf)

	if closeErr := dst.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		if errors.Is(copyErr, context.DeadlineExceeded) {
			return archivePath, lokerrors.NewTimeoutError("bundle download exceeded %s", c.cfg.BundleDownloadTimeout)
		}
		return archivePath, fmt.Errorf("writing temp bundle %s: %w", archivePath, copyErr)
	}
	return archivePath, nil
}
