// Package client is the Go adapter for the glutenornot HTTP API. Mobile and
// web frontends speak the same wire protocol; this package exists so Go
// callers (tooling, smoke tests, future backends) get typed results and a
// closed error taxonomy instead of raw HTTP statuses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/amr05008/glutenornot.com/pkg/verdict"
)

// ErrorType classifies API failures. The set is closed; callers switch on
// it to pick user-facing copy.
type ErrorType string

const (
	ErrNetwork     ErrorType = "network"
	ErrTimeout     ErrorType = "timeout"
	ErrRateLimited ErrorType = "rate_limited"
	ErrOCRFailed   ErrorType = "ocr_failed"
	ErrNotFound    ErrorType = "not_found"
	ErrServer      ErrorType = "server_error"
)

// APIError is the typed failure every Client method returns for API-level
// problems. Context cancellation is the one exception: the caller's own
// cancellation comes back as the context error, untouched.
type APIError struct {
	Type       ErrorType
	Message    string
	RetryAfter time.Duration // only set for rate_limited
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return string(e.Type)
}

// Client calls the glutenornot API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL, e.g. "https://api.example.com".
// The built-in 60s timeout covers the worst case of OCR plus analysis.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewWithHTTPClient creates a client over a caller-supplied http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: hc}
}

// Analyze submits a base64-encoded photo for OCR and analysis.
func (c *Client) Analyze(ctx context.Context, imageBase64 string) (*verdict.AnalysisResult, error) {
	return c.postResult(ctx, "/api/analyze", map[string]string{"image": imageBase64})
}

// LookupBarcode submits a barcode for database lookup and analysis.
func (c *Client) LookupBarcode(ctx context.Context, code string) (*verdict.AnalysisResult, error) {
	return c.postResult(ctx, "/api/barcode", map[string]string{"barcode": code})
}

// HealthStatus mirrors the health endpoint's response.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Services  map[string]struct {
		Status string `json:"status"`
	} `json:"services"`
}

// Health fetches the service health report. A degraded service still
// returns a status, not an error; only transport failures error.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, &APIError{Type: ErrNetwork, Message: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &APIError{Type: ErrServer, Message: "malformed health response"}
	}
	return &status, nil
}

func (c *Client) postResult(ctx context.Context, path string, payload any) (*verdict.AnalysisResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &APIError{Type: ErrNetwork, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Type: ErrNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result verdict.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &APIError{Type: ErrServer, Message: "malformed response body"}
	}
	return &result, nil
}

// transportError classifies request failures. Cancellation by the caller
// passes through as the context error so errors.Is(err, context.Canceled)
// works; the client's own deadline becomes a timeout APIError.
func (c *Client) transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Type: ErrTimeout, Message: "request timed out"}
	}
	return &APIError{Type: ErrNetwork, Message: err.Error()}
}

// wireError is the server's error envelope.
type wireError struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	RetryAfter int    `json:"retry_after"`
}

func apiError(resp *http.Response) *APIError {
	var body wireError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = body.Error
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &APIError{
			Type:       ErrRateLimited,
			Message:    msg,
			RetryAfter: retryAfter(resp, body),
		}
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{Type: ErrNotFound, Message: msg}
	case resp.StatusCode == http.StatusBadRequest && body.Code == "OCR_FAILED":
		return &APIError{Type: ErrOCRFailed, Message: msg}
	default:
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return &APIError{Type: ErrServer, Message: msg}
	}
}

// retryAfter prefers the standard header and falls back to the body field.
func retryAfter(resp *http.Response, body wireError) time.Duration {
	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if body.RetryAfter > 0 {
		return time.Duration(body.RetryAfter) * time.Second
	}
	return 0
}
