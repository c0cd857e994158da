package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	lokerrors "github.com/lokalise-tools/lokalise-sync/errors"
	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

// DefaultBaseURL is the production Lokalise API endpoint.
const DefaultBaseURL = "https://api.lokalise.com/api2"

// RESTClient is the default API implementation over the Lokalise REST
// protocol. It is safe for concurrent use.
type RESTClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewREST creates a RESTClient. An empty baseURL selects the production
// endpoint; a nil httpClient selects http.DefaultClient.
func NewREST(baseURL, token string, httpClient *http.Client) *RESTClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// processJSON is the wire shape of a queued process.
type processJSON struct {
	ProcessID string         `json:"process_id"`
	Type      string         `json:"type"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	CreatedAt string         `json:"created_at"`
	Details   map[string]any `json:"details"`
}

func (p *processJSON) toProcess() *loktypes.Process {
	return &loktypes.Process{
		ID:        p.ProcessID,
		Type:      p.Type,
		Status:    loktypes.ProcessStatus(p.Status),
		Message:   p.Message,
		CreatedAt: p.CreatedAt,
		Details:   p.Details,
	}
}

// UploadFile implements API.UploadFile.
func (c *RESTClient) UploadFile(
	ctx context.Context,
	projectID string,
	payload *loktypes.UploadPayload,
) (*loktypes.Process, error) {
	body := map[string]any{
		"data":     payload.Data,
		"filename": payload.Filename,
		"lang_iso": payload.LangISO,
	}
	if payload.ContentType != "" {
		body["content_type"] = payload.ContentType
	}
	if len(payload.Params.Tags) > 0 {
		body["tags"] = payload.Params.Tags
	}
	if payload.Params.ConvertPlaceholders {
		body["convert_placeholders"] = true
	}
	if payload.Params.ReplaceModified {
		body["replace_modified"] = true
	}
	if payload.Params.CleanupMode {
		body["cleanup_mode"] = true
	}
	if payload.Params.DistinguishByFile {
		body["distinguish_by_file"] = true
	}

	var resp struct {
		ProjectID string      `json:"project_id"`
		Process   processJSON `json:"process"`
	}
	path := fmt.Sprintf("/projects/%s/files/upload", projectID)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return resp.Process.toProcess(), nil
}

// DownloadBundle implements API.DownloadBundle.
func (c *RESTClient) DownloadBundle(
	ctx context.Context,
	projectID string,
	params *loktypes.DownloadParams,
) (*BundleDescriptor, error) {
	var resp struct {
		ProjectID string `json:"project_id"`
		BundleURL string `json:"bundle_url"`
	}
	path := fmt.Sprintf("/projects/%s/files/download", projectID)
	if err := c.do(ctx, http.MethodPost, path, downloadBody(params), &resp); err != nil {
		return nil, err
	}
	return &BundleDescriptor{ProjectID: resp.ProjectID, URL: resp.BundleURL}, nil
}

// CreateDownloadProcess implements API.CreateDownloadProcess.
func (c *RESTClient) CreateDownloadProcess(
	ctx context.Context,
	projectID string,
	params *loktypes.DownloadParams,
) (*loktypes.Process, error) {
	var resp struct {
		ProjectID string      `json:"project_id"`
		Process   processJSON `json:"process"`
	}
	path := fmt.Sprintf("/projects/%s/files/async-download", projectID)
	if err := c.do(ctx, http.MethodPost, path, downloadBody(params), &resp); err != nil {
		return nil, err
	}
	return resp.Process.toProcess(), nil
}

// GetProcess implements API.GetProcess.
func (c *RESTClient) GetProcess(ctx context.Context, projectID, processID string) (*loktypes.Process, error) {
	var resp struct {
		ProjectID string      `json:"project_id"`
		Process   processJSON `json:"process"`
	}
	path := fmt.Sprintf("/projects/%s/processes/%s", projectID, processID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Process.toProcess(), nil
}

func downloadBody(params *loktypes.DownloadParams) map[string]any {
	body := map[string]any{}
	if params == nil {
		return body
	}
	if params.Format != "" {
		body["format"] = params.Format
	}
	if len(params.FilterLangs) > 0 {
		body["filter_langs"] = params.FilterLangs
	}
	if params.OriginalFilenames {
		body["original_filenames"] = true
	}
	if params.DirectoryPrefix != "" {
		body["directory_prefix"] = params.DirectoryPrefix
	}
	if len(params.IncludeTags) > 0 {
		body["include_tags"] = params.IncludeTags
	}
	for k, v := range params.Extra {
		body[k] = v
	}
	return body
}

// do performs one HTTP round trip, decoding a successful response into out
// and an error response into a LokaliseError.
func (c *RESTClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-Api-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return lokerrors.NewLokaliseError("request failed", 0).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return lokerrors.NewLokaliseError("decoding response body", 0).WithCause(err)
	}
	return nil
}

// decodeError maps an error response onto a LokaliseError. The body shape is
// {"error": {"message": ..., "code": ..., "details": ...}}; when the body is
// not parseable the HTTP status carries the classification on its own.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var wire struct {
		Error struct {
			Message string         `json:"message"`
			Code    int            `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &wire); err == nil && wire.Error.Message != "" {
		code := wire.Error.Code
		if code == 0 {
			code = resp.StatusCode
		}
		return lokerrors.NewLokaliseError(wire.Error.Message, code).WithDetails(wire.Error.Details)
	}

	return lokerrors.NewLokaliseError(http.StatusText(resp.StatusCode), resp.StatusCode)
}
