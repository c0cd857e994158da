// Package api defines the boundary to the remote Lokalise API. The interface
// keeps the wire protocol swappable and mockable; the module's resilience
// machinery only ever talks to this contract.
package api

import (
	"context"

	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

// BundleDescriptor describes a synchronously built download bundle.
type BundleDescriptor struct {
	// ProjectID is the project the bundle was built for
	ProjectID string

	// URL is where the bundle archive can be fetched from
	URL string
}

// API defines the remote operations used by this module. Implementations
// return *errors.LokaliseError for remote failures so the retry layer can
// classify them by status code.
type API interface {
	// UploadFile submits one encoded file and returns the queued process
	// tracking its import
	UploadFile(ctx context.Context, projectID string, payload *loktypes.UploadPayload) (*loktypes.Process, error)

	// DownloadBundle requests a synchronously built bundle and returns its
	// descriptor
	DownloadBundle(ctx context.Context, projectID string, params *loktypes.DownloadParams) (*BundleDescriptor, error)

	// CreateDownloadProcess requests an asynchronous bundle build and
	// returns the queued process tracking it
	CreateDownloadProcess(ctx context.Context, projectID string, params *loktypes.DownloadParams) (*loktypes.Process, error)

	// GetProcess re-fetches the current state of a queued process
	GetProcess(ctx context.Context, projectID, processID string) (*loktypes.Process, error)
}
