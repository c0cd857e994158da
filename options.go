// Package lokalisesync provides functional options for configuring client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package lokalisesync

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

// WithMaxRetries sets the number of retries after the first attempt for
// retryable remote failures. Default is 3. Set to 0 to disable retries.
func WithMaxRetries(maxRetries int) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithInitialSleepTime sets the delay before the first retry. Subsequent
// delays double on every attempt. Default is 1 second.
func WithInitialSleepTime(d time.Duration) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.InitialSleep = d
	}
}

// WithJitterRatio sets the fraction of the current backoff delay used as the
// random jitter upper bound. Must be within [0, 1]. Default is 0.5.
func WithJitterRatio(ratio float64) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.JitterRatio = ratio
	}
}

// WithConcurrency sets the maximum number of concurrent operations for batch
// uploads and process polling. Default is 6 concurrent operations.
func WithConcurrency(concurrency int) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.Concurrency = concurrency
	}
}

// WithPollInitialWait sets the wait between the first two polling rounds.
// The wait doubles after every round. Default is 1 second.
func WithPollInitialWait(d time.Duration) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.PollInitialWait = d
	}
}

// WithPollMaximumWait sets the wall-clock budget for a whole polling call.
// When the budget runs out the last observed statuses are returned as-is.
// Default is 120 seconds.
func WithPollMaximumWait(d time.Duration) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.PollMaximumWait = d
	}
}

// WithStatusFastFollowWait sets the one-time wait before the first refresh
// when a just-created process has no status yet. Default is 200 milliseconds.
func WithStatusFastFollowWait(d time.Duration) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.StatusFastFollowWait = d
	}
}

// WithBundleDownloadTimeout bounds the bundle GET request during downloads.
// Default is 0 (no timeout).
func WithBundleDownloadTimeout(d time.Duration) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.BundleDownloadTimeout = d
	}
}

// WithAsyncDownload makes downloads request the bundle through a queued
// process instead of a synchronous build. Default is false.
func WithAsyncDownload(async bool) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.AsyncDownload = async
	}
}

// WithBaseURL overrides the remote API endpoint. This is useful for testing
// against a local server or a regional deployment.
func WithBaseURL(baseURL string) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.BaseURL = baseURL
	}
}

// WithHTTPClient allows providing a custom HTTP client for API and bundle
// requests. This gives full control over HTTP behavior including proxies and
// transport-level timeouts.
func WithHTTPClient(client *http.Client) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithFilesystem sets a custom filesystem implementation for file operations.
// This allows using in-memory filesystems for testing or virtual filesystems.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the structured logger receiving client diagnostics.
// If not specified, defaults to slog.Default().
func WithLogger(logger *slog.Logger) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithRand sets the randomness source used for backoff jitter. This is
// primarily used for deterministic tests.
func WithRand(rnd func() float64) loktypes.Option {
	return func(c *loktypes.ClientConfig) {
		c.Rand = rnd
	}
}

// WithUploadParams sets the pass-through import parameters for an upload call.
func WithUploadParams(params loktypes.UploadParams) loktypes.UploadOption {
	return func(c *loktypes.UploadOptionConfig) {
		c.Params = params
	}
}

// WithUploadLangInferer overrides language inference for an upload call.
// When the inferer errors or returns a blank code, the uploader falls back to
// parsing the language out of the filename.
func WithUploadLangInferer(inferer loktypes.LangInferer) loktypes.UploadOption {
	return func(c *loktypes.UploadOptionConfig) {
		c.LangInferer = inferer
	}
}

// WithUploadFilenameFn overrides remote filename derivation for an upload
// call. When the function errors or returns a blank name, the uploader falls
// back to the project-relative path.
func WithUploadFilenameFn(fn loktypes.FilenameFn) loktypes.UploadOption {
	return func(c *loktypes.UploadOptionConfig) {
		c.Filename = fn
	}
}

// WithUploadIncludePattern restricts collection to paths matching the given
// glob pattern. May be repeated; a file must match at least one pattern.
func WithUploadIncludePattern(pattern string) loktypes.UploadOption {
	return func(c *loktypes.UploadOptionConfig) {
		c.IncludePatterns = append(c.IncludePatterns, pattern)
	}
}

// WithUploadExcludePattern removes paths matching the given glob pattern from
// collection. May be repeated; excludes take precedence over includes.
func WithUploadExcludePattern(pattern string) loktypes.UploadOption {
	return func(c *loktypes.UploadOptionConfig) {
		c.ExcludePatterns = append(c.ExcludePatterns, pattern)
	}
}

// WithUploadRecursive walks subdirectories during collection.
// Default is false (only direct children of the root are considered).
func WithUploadRecursive(recursive bool) loktypes.UploadOption {
	return func(c *loktypes.UploadOptionConfig) {
		c.Recursive = recursive
	}
}

// WithUploadSkipDetectedBinary drops files whose detected content type is not
// text-like instead of uploading them.
func WithUploadSkipDetectedBinary(skip bool) loktypes.UploadOption {
	return func(c *loktypes.UploadOptionConfig) {
		c.SkipDetectedBinary = skip
	}
}

// WithUploadPoll tracks the created processes to a terminal state before the
// upload call returns.
func WithUploadPoll(poll bool) loktypes.UploadOption {
	return func(c *loktypes.UploadOptionConfig) {
		c.Poll = poll
	}
}

// WithUploadConcurrency overrides the client-level concurrency for a single
// upload call.
func WithUploadConcurrency(concurrency int) loktypes.UploadOption {
	return func(c *loktypes.UploadOptionConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithDownloadParams sets the pass-through bundle-build parameters for a
// download call.
func WithDownloadParams(params loktypes.DownloadParams) loktypes.DownloadOption {
	return func(c *loktypes.DownloadOptionConfig) {
		c.Params = params
	}
}

// WithDownloadAsync overrides the client-level async download mode for a
// single download call.
func WithDownloadAsync(async bool) loktypes.DownloadOption {
	return func(c *loktypes.DownloadOptionConfig) {
		c.Async = &async
	}
}
