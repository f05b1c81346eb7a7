// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfco is a client for the PDF.co-style asynchronous optimization
// API: upload a file to get a hosted URL, submit an optimize job against
// that URL, poll the job, and download the result.
package pdfco

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/internal/httputil"
	"github.com/pdiddy/pdftools/pkg/types"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.pdf.co"

const (
	uploadPath   = "/v1/file/upload"
	optimizePath = "/v1/pdf/optimize/add"
	jobCheckPath = "/v1/job/check"

	apiKeyHeader = "x-api-key"

	// maxErrorBody limits how much of an error response is quoted.
	maxErrorBody = 512
)

// Client talks to the remote API. Construct it with NewClient; the API key
// is injected there and never read from globals.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	maxRetries int
	logger     *zap.Logger
}

// NewClient creates a client from cfg. A nil httpClient uses one with
// cfg.Timeout; a nil logger discards logs.
func NewClient(cfg types.RemoteConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		http:       httpClient,
		baseURL:    base,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Job is an accepted optimization job.
type Job struct {
	ID string
	// URL is where the result will appear; the API may return it early but
	// it is only valid once the job succeeds.
	URL string
}

// JobState is one status poll result.
type JobState struct {
	Status  types.JobStatus
	URL     string
	Message string
}

// apiFlag decodes the API's "error" field, which is a boolean in current
// responses and a message string in older ones.
type apiFlag struct {
	set bool
	msg string
}

func (f *apiFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		f.set = b
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.set = s != ""
		f.msg = s
		return nil
	}
	// Anything else non-null counts as an error indicator.
	f.set = string(data) != "null"
	return nil
}

type envelope struct {
	Error   apiFlag `json:"error"`
	Message string  `json:"message"`
	Status  any     `json:"status"`
	URL     string  `json:"url"`
	JobID   string  `json:"jobId"`
}

func (e envelope) err() error {
	if !e.Error.set {
		return nil
	}
	msg := e.Message
	if msg == "" {
		msg = e.Error.msg
	}
	if msg == "" {
		msg = "unspecified API error"
	}
	return fmt.Errorf("API error: %s", msg)
}

// Upload sends data as a multipart file and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+uploadPath, bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var env envelope
	if err := c.doJSON(ctx, req, &env); err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	if env.URL == "" {
		return "", fmt.Errorf("uploading %s: response has no url", name)
	}
	c.logger.Debug("uploaded file", zap.String("name", name), zap.Int("bytes", len(data)))
	return env.URL, nil
}

type optimizeRequest struct {
	URL      string           `json:"url"`
	Async    bool             `json:"async"`
	Profiles estimate.Profile `json:"profiles"`
}

// SubmitOptimize starts an asynchronous optimization of fileURL.
func (c *Client) SubmitOptimize(ctx context.Context, fileURL string, profile estimate.Profile) (Job, error) {
	payload, err := json.Marshal(optimizeRequest{URL: fileURL, Async: true, Profiles: profile})
	if err != nil {
		return Job{}, fmt.Errorf("encoding optimize request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+optimizePath, bytes.NewReader(payload))
	if err != nil {
		return Job{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var env envelope
	if err := c.doJSON(ctx, req, &env); err != nil {
		return Job{}, fmt.Errorf("submitting optimize job: %w", err)
	}
	if env.JobID == "" {
		return Job{}, fmt.Errorf("submitting optimize job: response has no jobId")
	}
	c.logger.Debug("submitted job", zap.String("job_id", env.JobID), zap.Int("compression", profile.Compression))
	return Job{ID: env.JobID, URL: env.URL}, nil
}

// CheckJob returns the current state of a job.
func (c *Client) CheckJob(ctx context.Context, jobID string) (JobState, error) {
	u := c.baseURL + jobCheckPath + "?jobid=" + url.QueryEscape(jobID)
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return JobState{}, err
	}

	var env envelope
	if err := c.doJSON(ctx, req, &env); err != nil {
		return JobState{}, fmt.Errorf("checking job %s: %w", jobID, err)
	}
	status, _ := env.Status.(string)
	return JobState{
		Status:  types.ParseJobStatus(status),
		URL:     env.URL,
		Message: env.Message,
	}, nil
}

// Download fetches a result file. Result URLs are pre-signed, so no API key
// is sent.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries, c.logger)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, redact(fileURL))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// doJSON sends req and decodes the JSON envelope into v. API-level errors
// (error flag set) and non-2xx statuses are returned as errors.
func (c *Client) doJSON(ctx context.Context, req *http.Request, v *envelope) error {
	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries, c.logger)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	decodeErr := json.Unmarshal(data, v)
	if decodeErr == nil {
		if err := v.err(); err != nil {
			return err
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(data)))
	}
	if decodeErr != nil {
		return fmt.Errorf("parsing response: %w", decodeErr)
	}
	return nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

// redact strips the query string, which carries signatures on result URLs.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}
