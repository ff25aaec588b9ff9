package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amr05008/glutenornot.com/pkg/verdict"
)

func TestAnalyzeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analyze", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "aGVsbG8=", req["image"])

		fmt.Fprint(w, `{"mode":"label","verdict":"safe","flagged_ingredients":[],"allergen_warnings":[],"explanation":"ok","confidence":"high"}`)
	}))
	defer srv.Close()

	res, err := New(srv.URL).Analyze(context.Background(), "aGVsbG8=")

	require.NoError(t, err)
	assert.Equal(t, verdict.Safe, res.Verdict)
	assert.Equal(t, verdict.ModeLabel, res.Mode)
}

func TestLookupBarcodeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"Product not found","message":"Product not found in our database. Try scanning the ingredient label instead."}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).LookupBarcode(context.Background(), "1234567890123")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrNotFound, apiErr.Type)
	assert.Contains(t, apiErr.Message, "Try scanning the ingredient label")
}

func TestRateLimitedReadsRetryAfterHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3600")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"Rate limit exceeded","message":"You've reached today's scan limit (50). Resets in 1 hour.","retry_after":900}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), "aGVsbG8=")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrRateLimited, apiErr.Type)
	assert.Equal(t, time.Hour, apiErr.RetryAfter)
}

func TestRateLimitedFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"Rate limit exceeded","retry_after":900}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), "aGVsbG8=")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrRateLimited, apiErr.Type)
	assert.Equal(t, 15*time.Minute, apiErr.RetryAfter)
}

func TestOCRFailedMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"OCR failed","code":"OCR_FAILED","message":"Couldn't read the label. Try getting the ingredients list in focus."}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), "aGVsbG8=")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrOCRFailed, apiErr.Type)
}

func TestServerErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"Analysis service unavailable"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), "aGVsbG8=")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrServer, apiErr.Type)
	assert.Equal(t, "Analysis service unavailable", apiErr.Message)
}

func TestCallerCancellationPassesThrough(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := New(srv.URL).Analyze(ctx, "aGVsbG8=")

	assert.ErrorIs(t, err, context.Canceled)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClientDeadlineBecomesTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewWithHTTPClient(srv.URL, &http.Client{Timeout: 20 * time.Millisecond})
	_, err := c.Analyze(context.Background(), "aGVsbG8=")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrTimeout, apiErr.Type)
}

func TestHealthDegradedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"status":"degraded","timestamp":"2026-08-27T00:00:00Z","services":{"ocr":{"status":"configured"},"analysis":{"status":"missing_key"}}}`)
	}))
	defer srv.Close()

	status, err := New(srv.URL).Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "missing_key", status.Services["analysis"].Status)
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(2 * time.Second)
	current := time.Unix(1000, 0)
	d.now = func() time.Time { return current }

	assert.True(t, d.Allow("123"))
	assert.False(t, d.Allow("123"))
	assert.True(t, d.Allow("456"), "different code is independent")

	current = current.Add(time.Second)
	assert.False(t, d.Allow("123"), "still inside cooldown")

	current = current.Add(2 * time.Second)
	assert.True(t, d.Allow("123"), "cooldown lapsed")
}
