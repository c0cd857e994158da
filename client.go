// Package lokalisesync provides client initialization and configuration.
//
// The Client provides a high-level interface for synchronizing translation
// files with a Lokalise project, supporting batch uploads, bundle downloads,
// and process tracking with configurable retry and concurrency behavior.
package lokalisesync

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/lokalise-tools/lokalise-sync/errors"
	"github.com/lokalise-tools/lokalise-sync/internal/api"
	"github.com/lokalise-tools/lokalise-sync/internal/retry"
	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

// Default configuration values applied by New before options run.
const (
	DefaultMaxRetries           = 3
	DefaultInitialSleep         = time.Second
	DefaultJitterRatio          = 0.5
	DefaultConcurrency          = 6
	DefaultPollInitialWait      = time.Second
	DefaultPollMaximumWait      = 120 * time.Second
	DefaultStatusFastFollowWait = 200 * time.Millisecond
)

// Client represents a Lokalise sync client. It provides thread-safe access to
// upload and download operations with built-in retry logic, concurrency
// control, and process polling.
type Client struct {
	// api is the remote API boundary
	api api.API

	// cfg is the resolved client configuration
	cfg loktypes.ClientConfig

	// policy is the retry policy derived from cfg
	policy retry.Policy

	// fs is the filesystem abstraction for file operations
	fs fs.Filesystem

	// logger receives structured diagnostics
	logger *slog.Logger
}

// New creates a new client for the given project with the provided options.
//
// Example:
//
//	client, err := lokalisesync.New("123.abc", token,
//	    lokalisesync.WithMaxRetries(5),
//	    lokalisesync.WithConcurrency(10),
//	)
func New(projectID, token string, opts ...loktypes.Option) (*Client, error) {
	cfg := defaultConfig(projectID, token)
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return newClient(api.NewREST(cfg.BaseURL, cfg.Token, httpClient), cfg), nil
}

// NewWithAPI creates a client backed by a custom API implementation. This is
// primarily used for testing with mocked API boundaries; the same defaults
// and validation as New apply.
func NewWithAPI(projectID string, apiClient api.API, opts ...loktypes.Option) (*Client, error) {
	cfg := defaultConfig(projectID, "")
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return newClient(apiClient, cfg), nil
}

func defaultConfig(projectID, token string) loktypes.ClientConfig {
	return loktypes.ClientConfig{
		ProjectID:            projectID,
		Token:                token,
		BaseURL:              api.DefaultBaseURL,
		MaxRetries:           DefaultMaxRetries,
		InitialSleep:         DefaultInitialSleep,
		JitterRatio:          DefaultJitterRatio,
		Concurrency:          DefaultConcurrency,
		PollInitialWait:      DefaultPollInitialWait,
		PollMaximumWait:      DefaultPollMaximumWait,
		StatusFastFollowWait: DefaultStatusFastFollowWait,
	}
}

func validateConfig(cfg *loktypes.ClientConfig) error {
	if cfg.ProjectID == "" {
		return errors.NewValidationError("project ID must not be empty")
	}
	if cfg.Concurrency < 1 {
		return errors.NewValidationError("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.PollInitialWait <= 0 {
		return errors.NewValidationError("poll initial wait must be positive, got %s", cfg.PollInitialWait)
	}
	if cfg.PollMaximumWait < 0 {
		return errors.NewValidationError("poll maximum wait must not be negative, got %s", cfg.PollMaximumWait)
	}

	policy := retry.Policy{
		MaxRetries:   cfg.MaxRetries,
		InitialSleep: cfg.InitialSleep,
		JitterRatio:  cfg.JitterRatio,
	}
	return policy.Validate()
}

func newClient(apiClient api.API, cfg loktypes.ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Filesystem == nil {
		cfg.Filesystem = billy.NewOSFS("/")
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Float64
	}

	return &Client{
		api: apiClient,
		cfg: cfg,
		policy: retry.Policy{
			MaxRetries:   cfg.MaxRetries,
			InitialSleep: cfg.InitialSleep,
			JitterRatio:  cfg.JitterRatio,
			Rand:         cfg.Rand,
		},
		fs:     cfg.Filesystem,
		logger: cfg.Logger,
	}
}

// ProjectID returns the project this client operates on.
func (c *Client) ProjectID() string {
	return c.cfg.ProjectID
}
