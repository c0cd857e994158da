// Package loktypes provides shared type definitions for the Lokalise sync module.
package loktypes

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// ProcessStatus represents the server-side status of a queued process.
type ProcessStatus string

// Statuses the remote API is known to report. The taxonomy is open: servers
// add statuses over time, so only the terminal set below is ever matched on.
const (
	// StatusQueued means the process is waiting to be picked up
	StatusQueued ProcessStatus = "queued"

	// StatusPreProcessing means input is being prepared
	StatusPreProcessing ProcessStatus = "pre_processing"

	// StatusRunning means the process is executing
	StatusRunning ProcessStatus = "running"

	// StatusPostProcessing means output is being assembled
	StatusPostProcessing ProcessStatus = "post_processing"

	// StatusFinished means the process completed successfully
	StatusFinished ProcessStatus = "finished"

	// StatusCancelled means the process was cancelled server-side
	StatusCancelled ProcessStatus = "cancelled"

	// StatusFailed means the process failed server-side
	StatusFailed ProcessStatus = "failed"
)

// Finished reports whether the status is terminal. Any status outside the
// terminal set, including an empty one the server has not populated yet,
// counts as still pending so new remote statuses default to "keep polling".
func (s ProcessStatus) Finished() bool {
	switch s {
	case StatusFinished, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// Process represents a queued process on the Lokalise side. It is created by
// the remote system when work is enqueued and only ever updated here by
// re-fetching it; identity is the ID.
type Process struct {
	// ID is the process identifier assigned by the server
	ID string

	// Type is the process kind reported by the server (e.g. "file-import")
	Type string

	// Status is the last observed status
	Status ProcessStatus

	// Message is an optional human-readable server message
	Message string

	// CreatedAt is the server-side creation timestamp, as reported
	CreatedAt string

	// Details is the opaque result payload attached by the server
	Details map[string]any
}

// DownloadURL returns the bundle URL from the process details, if the server
// attached a usable one.
func (p *Process) DownloadURL() (string, bool) {
	if p.Details == nil {
		return "", false
	}
	url, ok := p.Details["download_url"].(string)
	if !ok || strings.TrimSpace(url) == "" {
		return "", false
	}
	return url, true
}

// LocalFile represents a file selected for upload from the local filesystem.
type LocalFile struct {
	// Path is the full local file path
	Path string

	// RelPath is the path relative to the collection root, slash-separated
	RelPath string

	// Size is the file size in bytes
	Size int64

	// ModTime is the file modification time
	ModTime time.Time
}

// UploadParams carries file-import parameters passed through to the remote
// API. Their semantics are owned by the server.
type UploadParams struct {
	// Tags to attach to keys created by the import
	Tags []string

	// ConvertPlaceholders enables placeholder conversion on import
	ConvertPlaceholders bool

	// ReplaceModified replaces translations modified since the last upload
	ReplaceModified bool

	// CleanupMode deletes keys not present in the uploaded file
	CleanupMode bool

	// DistinguishByFile keeps identical keys from different files separate
	DistinguishByFile bool
}

// UploadPayload is the per-file request body handed to the API boundary.
type UploadPayload struct {
	// Filename is the remote filename for the upload
	Filename string

	// LangISO is the language code of the file contents
	LangISO string

	// Data is the base64-encoded file content
	Data string

	// ContentType is the detected MIME type of the raw content
	ContentType string

	// Params are the pass-through import parameters
	Params UploadParams
}

// FileUploadError pairs a source file with the error that kept it from being
// uploaded. Per-file failures are data, not exceptions: a batch upload always
// reports the complete picture.
type FileUploadError struct {
	// Path is the local path of the file that failed
	Path string

	// Err is the underlying error
	Err error
}

// UploadResult contains the outcome of a batch upload. Both slices are kept
// in the original collection order of their respective files.
type UploadResult struct {
	// Processes are the queued processes created for successful submissions
	Processes []Process

	// Failed lists the files that could not be uploaded, with their errors
	Failed []FileUploadError
}

// DownloadParams carries bundle-build parameters passed through to the remote
// API.
type DownloadParams struct {
	// Format is the export file format (e.g. "json")
	Format string

	// FilterLangs restricts the bundle to the given language codes
	FilterLangs []string

	// OriginalFilenames preserves the uploaded filenames in the bundle
	OriginalFilenames bool

	// DirectoryPrefix is the directory layout prefix inside the bundle
	DirectoryPrefix string

	// IncludeTags restricts the export to keys carrying these tags
	IncludeTags []string

	// Extra holds any additional parameters forwarded verbatim
	Extra map[string]any
}

// DownloadResult contains the outcome of a bundle download.
type DownloadResult struct {
	// BundleURL is the URL the bundle was fetched from
	BundleURL string

	// Process is the queued process tracked in async mode, nil in sync mode
	Process *Process

	// Duration is how long the whole download took
	Duration time.Duration
}

// ClientConfig holds the configuration for a Client, assembled once at
// construction from functional options.
type ClientConfig struct {
	// ProjectID is the Lokalise project identifier (required)
	ProjectID string

	// Token is the API token sent with every request
	Token string

	// BaseURL overrides the remote API endpoint
	BaseURL string

	// MaxRetries is the number of retries after the first attempt (>= 0)
	MaxRetries int

	// InitialSleep is the first backoff delay (> 0)
	InitialSleep time.Duration

	// JitterRatio bounds the random jitter fraction added to delays (0..1)
	JitterRatio float64

	// Concurrency caps in-flight operations for batch work (>= 1)
	Concurrency int

	// PollInitialWait is the first wait between polling rounds
	PollInitialWait time.Duration

	// PollMaximumWait is the wall-clock budget for a whole poll call
	PollMaximumWait time.Duration

	// StatusFastFollowWait is the one-time wait before the first refresh
	// when a just-created process has no status yet
	StatusFastFollowWait time.Duration

	// BundleDownloadTimeout bounds a single bundle GET (0 disables it)
	BundleDownloadTimeout time.Duration

	// AsyncDownload requests bundle builds through a queued process
	AsyncDownload bool

	// HTTPClient overrides the HTTP client used for API and bundle requests
	HTTPClient *http.Client

	// Filesystem is the filesystem abstraction for file operations
	Filesystem fs.Filesystem

	// Logger receives structured diagnostics; defaults to slog.Default()
	Logger *slog.Logger

	// Rand is the jitter randomness source in [0,1); defaults to math/rand
	Rand func() float64
}

// Option configures a Client at construction time.
type Option func(*ClientConfig)

// LangInferer derives the upload language code for a file. Returning an error
// or a blank string makes the uploader fall back to filename parsing.
type LangInferer func(file LocalFile, content []byte) (string, error)

// FilenameFn derives the remote filename for a file. Returning an error or a
// blank string makes the uploader fall back to the project-relative path.
type FilenameFn func(file LocalFile) (string, error)

// UploadOptionConfig holds per-call upload configuration.
type UploadOptionConfig struct {
	// Params are the pass-through import parameters
	Params UploadParams

	// LangInferer overrides language inference
	LangInferer LangInferer

	// Filename overrides remote filename derivation
	Filename FilenameFn

	// IncludePatterns restricts collection to matching relative paths
	IncludePatterns []string

	// ExcludePatterns removes matching relative paths from collection
	ExcludePatterns []string

	// Recursive walks subdirectories during collection
	Recursive bool

	// SkipDetectedBinary drops files whose content is not text-like
	SkipDetectedBinary bool

	// Poll tracks the created processes to a terminal state
	Poll bool

	// Concurrency overrides the client-level concurrency for this call
	Concurrency int
}

// UploadOption configures a single upload call.
type UploadOption func(*UploadOptionConfig)

// DownloadOptionConfig holds per-call download configuration.
type DownloadOptionConfig struct {
	// Params are the pass-through bundle-build parameters
	Params DownloadParams

	// Async overrides the client-level async download mode
	Async *bool
}

// DownloadOption configures a single download call.
type DownloadOption func(*DownloadOptionConfig)
