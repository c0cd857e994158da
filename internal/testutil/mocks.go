// Package testutil provides mock implementations and helpers for testing.
package testutil

import (
	"context"
	"sync/atomic"

	"github.com/lokalise-tools/lokalise-sync/internal/api"
	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

// MockAPI implements the api.API interface with configurable function fields.
// Unset fields return zero values. Call counters are safe for concurrent use.
type MockAPI struct {
	UploadFileFunc            func(ctx context.Context, projectID string, payload *loktypes.UploadPayload) (*loktypes.Process, error)
	DownloadBundleFunc        func(ctx context.Context, projectID string, params *loktypes.DownloadParams) (*api.BundleDescriptor, error)
	CreateDownloadProcessFunc func(ctx context.Context, projectID string, params *loktypes.DownloadParams) (*loktypes.Process, error)
	GetProcessFunc            func(ctx context.Context, projectID string, processID string) (*loktypes.Process, error)

	UploadCalls     atomic.Int64
	DownloadCalls   atomic.Int64
	CreateCalls     atomic.Int64
	GetProcessCalls atomic.Int64
}

// UploadFile calls the mocked implementation.
func (m *MockAPI) UploadFile(ctx context.Context, projectID string, payload *loktypes.UploadPayload) (*loktypes.Process, error) {
	m.UploadCalls.Add(1)
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, projectID, payload)
	}
	return nil, nil
}

// DownloadBundle calls the mocked implementation.
func (m *MockAPI) DownloadBundle(ctx context.Context, projectID string, params *loktypes.DownloadParams) (*api.BundleDescriptor, error) {
	m.DownloadCalls.Add(1)
	if m.DownloadBundleFunc != nil {
		return m.DownloadBundleFunc(ctx, projectID, params)
	}
	return nil, nil
}

// CreateDownloadProcess calls the mocked implementation.
func (m *MockAPI) CreateDownloadProcess(ctx context.Context, projectID string, params *loktypes.DownloadParams) (*loktypes.Process, error) {
	m.CreateCalls.Add(1)
	if m.CreateDownloadProcessFunc != nil {
		return m.CreateDownloadProcessFunc(ctx, projectID, params)
	}
	return nil, nil
}

// GetProcess calls the mocked implementation.
func (m *MockAPI) GetProcess(ctx context.Context, projectID string, processID string) (*loktypes.Process, error) {
	m.GetProcessCalls.Add(1)
	if m.GetProcessFunc != nil {
		return m.GetProcessFunc(ctx, projectID, processID)
	}
	return nil, nil
}
