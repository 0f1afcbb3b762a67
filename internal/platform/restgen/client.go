package restgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

// ErrInvalidConfig is returned when a Client cannot be constructed from
// the given configuration.
var ErrInvalidConfig = errors.New("invalid restgen configuration")

// maxErrorBodyBytes bounds how much of an error response body is read for
// inclusion in error messages.
const maxErrorBodyBytes = 2048

// Config describes one submit/poll REST provider.
type Config struct {
	// Kind is the identifier requests are routed by (e.g. "flux").
	Kind generation.ProviderKind

	// BaseURL is the provider's API root, e.g. "https://api.piapi.ai".
	BaseURL string

	// SubmitPath is the POST endpoint for new tasks. Defaults to
	// "/v1/tasks".
	SubmitPath string

	// StatusPath is the GET endpoint prefix for task status; the task ID
	// is appended as the final path segment. Defaults to SubmitPath.
	StatusPath string

	// APIKey, when set, is sent on every request.
	APIKey string

	// AuthHeader is the header the API key is sent in. Defaults to
	// "Authorization" with a "Bearer " prefix; any other header carries
	// the key verbatim.
	AuthHeader string

	// StatusVocabulary adds or overrides status-string mappings on top of
	// the built-in vocabulary. Keys are matched case-insensitively.
	StatusVocabulary map[string]generation.Status

	// RequestTimeout bounds each individual HTTP call. Defaults to 30s.
	// Unrelated to the orchestrator's per-task deadline.
	RequestTimeout time.Duration

	// HTTPClient overrides the transport, primarily for tests.
	HTTPClient *http.Client
}

// Client is a stateless generation.ProviderClient for one REST provider.
// It holds no per-task state between calls.
type Client struct {
	kind       generation.ProviderKind
	baseURL    string
	submitPath string
	statusPath string
	apiKey     string
	authHeader string
	vocabulary map[string]generation.Status
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client for the provider described by cfg.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}
	if cfg.Kind == "" {
		return nil, fmt.Errorf("%w: provider kind cannot be empty", ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", ErrInvalidConfig)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid base URL %q: %v", ErrInvalidConfig, cfg.BaseURL, err)
	}

	submitPath := cfg.SubmitPath
	if submitPath == "" {
		submitPath = "/v1/tasks"
	}
	statusPath := cfg.StatusPath
	if statusPath == "" {
		statusPath = submitPath
	}
	authHeader := cfg.AuthHeader
	if authHeader == "" {
		authHeader = "Authorization"
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	vocabulary := make(map[string]generation.Status, len(defaultVocabulary)+len(cfg.StatusVocabulary))
	for k, v := range defaultVocabulary {
		vocabulary[k] = v
	}
	for k, v := range cfg.StatusVocabulary {
		vocabulary[strings.ToLower(k)] = v
	}

	return &Client{
		kind:       cfg.Kind,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		submitPath: submitPath,
		statusPath: statusPath,
		apiKey:     cfg.APIKey,
		authHeader: authHeader,
		vocabulary: vocabulary,
		httpClient: httpClient,
		logger:     logger.With("component", "restgen", "provider", cfg.Kind),
	}, nil
}

// Kind implements generation.ProviderClient.
func (c *Client) Kind() generation.ProviderKind {
	return c.kind
}

// submitResponse tolerates the envelope variants seen across providers:
// some return the ID at the top level, some nest it under "data".
type submitResponse struct {
	TaskID string `json:"task_id"`
	ID     string `json:"id"`
	Data   *struct {
		TaskID string `json:"task_id"`
		ID     string `json:"id"`
	} `json:"data"`
}

func (r submitResponse) taskID() string {
	if r.TaskID != "" {
		return r.TaskID
	}
	if r.ID != "" {
		return r.ID
	}
	if r.Data != nil {
		if r.Data.TaskID != "" {
			return r.Data.TaskID
		}
		return r.Data.ID
	}
	return ""
}

// Submit implements generation.ProviderClient. It never partially
// submits: any non-2xx or malformed response yields an error wrapping
// generation.ErrSubmissionFailed and no task ID.
func (c *Client) Submit(ctx context.Context, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: cannot encode payload: %v", generation.ErrSubmissionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.submitPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrSubmissionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrSubmissionFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", fmt.Errorf("%w: %s %s returned %s: %s",
			generation.ErrSubmissionFailed, http.MethodPost, c.submitPath,
			resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: cannot decode response: %v", generation.ErrSubmissionFailed, err)
	}

	taskID := parsed.taskID()
	if taskID == "" {
		return "", fmt.Errorf("%w: response contains no task ID", generation.ErrSubmissionFailed)
	}

	c.logger.Debug("task submitted", "task_id", taskID)
	return taskID, nil
}

// statusResponse tolerates the field spellings seen across providers.
type statusResponse struct {
	Status   string   `json:"status"`
	State    string   `json:"state"`
	Progress *float64 `json:"progress"`

	ResultURL string `json:"result_url"`
	Output    *struct {
		URL      string `json:"url"`
		VideoURL string `json:"video_url"`
		ImageURL string `json:"image_url"`
	} `json:"output"`

	Error         string `json:"error"`
	FailureReason string `json:"failure_reason"`
	Message       string `json:"message"`

	Data *statusResponse `json:"data"`
}

func (r *statusResponse) flatten() *statusResponse {
	if r.Data != nil && r.Status == "" && r.State == "" {
		return r.Data.flatten()
	}
	return r
}

func (r *statusResponse) rawStatus() string {
	if r.Status != "" {
		return r.Status
	}
	return r.State
}

func (r *statusResponse) resultRef() string {
	if r.ResultURL != "" {
		return r.ResultURL
	}
	if r.Output == nil {
		return ""
	}
	switch {
	case r.Output.URL != "":
		return r.Output.URL
	case r.Output.VideoURL != "":
		return r.Output.VideoURL
	default:
		return r.Output.ImageURL
	}
}

func (r *statusResponse) failureDetail() string {
	switch {
	case r.Error != "":
		return r.Error
	case r.FailureReason != "":
		return r.FailureReason
	default:
		return r.Message
	}
}

// Poll implements generation.ProviderClient. Transport failures (network
// errors and non-2xx responses) come back as plain errors for the
// orchestrator's bounded retry path; only an explicit provider-reported
// failure maps to StatusFailed.
func (c *Client) Poll(ctx context.Context, taskID string) (generation.PollResult, error) {
	endpoint := c.baseURL + c.statusPath + "/" + url.PathEscape(taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return generation.PollResult{}, fmt.Errorf("poll request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return generation.PollResult{}, fmt.Errorf("poll request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return generation.PollResult{}, fmt.Errorf("poll returned %s: %s",
			resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return generation.PollResult{}, fmt.Errorf("poll response decode: %w", err)
	}
	body := parsed.flatten()

	raw := body.rawStatus()
	if raw == "" {
		// An omitted status field is never inferred from incidental fields
		// like a result URL or a timestamp; the task is treated as live.
		c.logger.Warn("provider response omitted status field, treating task as processing",
			"task_id", taskID)
		return generation.PollResult{
			Status:          generation.StatusProcessing,
			ProgressPercent: generation.ProgressUnknown,
		}, nil
	}

	status, known := c.canonicalStatus(raw)
	if !known {
		// Fail open: an unknown status string means an unknown-but-live
		// task, never a terminal one.
		c.logger.Warn("unrecognized provider status, treating task as processing",
			"task_id", taskID,
			"raw_status", raw)
	}

	progress := generation.ProgressUnknown
	if body.Progress != nil {
		progress = int(*body.Progress)
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
	}

	result := generation.PollResult{
		Status:          status,
		ProgressPercent: progress,
	}

	switch status {
	case generation.StatusCompleted:
		result.Result = body.resultRef()
		if result.Result == "" {
			c.logger.Warn("provider reported success without a result reference",
				"task_id", taskID)
		}
	case generation.StatusFailed:
		result.FailureDetail = body.failureDetail()
		if result.FailureDetail == "" {
			result.FailureDetail = fmt.Sprintf("provider status %q", raw)
		}
	}

	return result, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey == "" {
		return
	}
	if c.authHeader == "Authorization" {
		req.Header.Set(c.authHeader, "Bearer "+c.apiKey)
		return
	}
	req.Header.Set(c.authHeader, c.apiKey)
}
