package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/report"
	"resume-screener/internal/screening"
)

const (
	analyzePath    = "/api/v1/analyze/text"
	defaultTimeout = 60 * time.Second
	maxErrorBody   = 4 << 10
)

// ErrUnavailable is returned when the service answers with a server error.
var ErrUnavailable = errors.New("screening service unavailable")

// Client implements screening.Analyzer against a running screening service.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithClientID sets the X-Client-Id the service scopes runs to.
func WithClientID(id string) Option {
	return func(c *Client) { c.clientID = strings.TrimSpace(id) }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("remote base url is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("remote base url must start with http:// or https://: %q", baseURL)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type analyzeRequest struct {
	JobDescription string                  `json:"jobDescription"`
	Industry       string                  `json:"industry,omitempty"`
	Options        screening.Options       `json:"options"`
	Resumes        []screening.ResumeInput `json:"resumes"`
}

type analyzeResponse struct {
	RunID    string          `json:"runId"`
	Industry string          `json:"industry"`
	Results  []report.Report `json:"results"`
	Stats    aggregate.Stats `json:"stats"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze implements screening.Analyzer. Validation failures reported by the
// service wrap screening.ErrInvalidInput.
func (c *Client) Analyze(ctx context.Context, resumes []screening.ResumeInput, job screening.JobContext) (screening.Result, error) {
	if err := screening.Validate(resumes, job); err != nil {
		return screening.Result{}, err
	}

	payload, err := json.Marshal(analyzeRequest{
		JobDescription: job.Description,
		Industry:       job.Industry,
		Options:        job.Options,
		Resumes:        resumes,
	})
	if err != nil {
		return screening.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, bytes.NewReader(payload))
	if err != nil {
		return screening.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.clientID != "" {
		req.Header.Set("X-Client-Id", c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return screening.Result{}, fmt.Errorf("remote analyze: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return screening.Result{}, statusError(resp)
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return screening.Result{}, fmt.Errorf("remote analyze: decode response: %w", err)
	}
	if len(out.Results) != len(resumes) {
		return screening.Result{}, fmt.Errorf("remote analyze: got %d reports for %d resumes", len(out.Results), len(resumes))
	}
	return screening.Result{
		Industry: out.Industry,
		Reports:  out.Results,
		Stats:    out.Stats,
	}, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var envelope errorResponse
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", screening.ErrInvalidInput, msg)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, msg)
	default:
		return fmt.Errorf("remote analyze: status %d: %s", resp.StatusCode, msg)
	}
}

var _ screening.Analyzer = (*Client)(nil)
