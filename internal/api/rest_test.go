package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lokerrors "github.com/lokalise-tools/lokalise-sync/errors"
	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

func TestUploadFileDecodesProcess(t *testing.T) {
	var gotPath, gotToken string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Api-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"project_id": "123.abc",
			"process": {
				"process_id": "proc-1",
				"type": "file-import",
				"status": "queued",
				"created_at": "2026-08-28 10:00:00 (Etc/UTC)"
			}
		}`))
	}))
	defer srv.Close()

	client := NewREST(srv.URL, "secret-token", nil)
	proc, err := client.UploadFile(context.Background(), "123.abc", &loktypes.UploadPayload{
		Filename:    "locales/en.json",
		LangISO:     "en",
		Data:        "eyJrIjoidiJ9",
		ContentType: "application/json",
		Params:      loktypes.UploadParams{Tags: []string{"release"}, CleanupMode: true},
	})

	require.NoError(t, err)
	assert.Equal(t, "/projects/123.abc/files/upload", gotPath)
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "locales/en.json", gotBody["filename"])
	assert.Equal(t, "en", gotBody["lang_iso"])
	assert.Equal(t, true, gotBody["cleanup_mode"])

	assert.Equal(t, "proc-1", proc.ID)
	assert.Equal(t, loktypes.StatusQueued, proc.Status)
	assert.Equal(t, "file-import", proc.Type)
}

func TestDownloadBundleReturnsDescriptor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/p1/files/download", r.URL.Path)
		_, _ = w.Write([]byte(`{"project_id": "p1", "bundle_url": "https://cdn.example.com/bundle.zip"}`))
	}))
	defer srv.Close()

	client := NewREST(srv.URL, "tok", nil)
	bundle, err := client.DownloadBundle(context.Background(), "p1", &loktypes.DownloadParams{Format: "json"})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/bundle.zip", bundle.URL)
	assert.Equal(t, "p1", bundle.ProjectID)
}

func TestGetProcessDecodesDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/p1/processes/proc-9", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{
			"project_id": "p1",
			"process": {
				"process_id": "proc-9",
				"status": "finished",
				"details": {"download_url": "https://cdn.example.com/b.zip", "file_size_kb": 12}
			}
		}`))
	}))
	defer srv.Close()

	client := NewREST(srv.URL, "tok", nil)
	proc, err := client.GetProcess(context.Background(), "p1", "proc-9")

	require.NoError(t, err)
	assert.True(t, proc.Status.Finished())
	url, ok := proc.DownloadURL()
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/b.zip", url)
}

func TestErrorResponseDecodesToLokaliseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Too many requests", "code": 429}}`))
	}))
	defer srv.Close()

	client := NewREST(srv.URL, "tok", nil)
	_, err := client.GetProcess(context.Background(), "p1", "proc-1")

	var le *lokerrors.LokaliseError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 429, le.Code)
	assert.Equal(t, "Too many requests", le.Message)
	assert.True(t, le.Retryable())
}

func TestErrorResponseWithoutBodyFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewREST(srv.URL, "tok", nil)
	_, err := client.GetProcess(context.Background(), "p1", "proc-1")

	var le *lokerrors.LokaliseError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, http.StatusBadGateway, le.Code)
	assert.False(t, le.Retryable())
}
