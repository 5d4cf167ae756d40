// Package sportsdata fetches the NBA player dataset from sportsdata.io and
// serializes it for bulk storage.
package sportsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Record is one player row as returned by the API. All fields are kept; the
// API response is the source of truth for the shape.
type Record map[string]any

// FailureClass tags why a fetch degraded to an empty result.
type FailureClass string

const (
	FailHTTPStatus FailureClass = "http_status"
	FailConnection FailureClass = "connection"
	FailTimeout    FailureClass = "timeout"
	FailRequest    FailureClass = "request"
)

// APIError reports a failed fetch. The pipeline treats it as "zero records"
// rather than aborting, but callers can inspect the class for diagnostics.
type APIError struct {
	Class  FailureClass
	Status int // set for FailHTTPStatus
	Err    error
}

func (e *APIError) Error() string {
	if e.Class == FailHTTPStatus {
		return fmt.Sprintf("sportsdata fetch: http status %d", e.Status)
	}
	return fmt.Sprintf("sportsdata fetch %s: %v", e.Class, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client calls the sportsdata.io API with a subscription key header.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// FetchPlayers performs a single GET against the configured endpoint. The
// whole dataset is expected in one response; there is no retry or paging.
// On any failure it returns nil records and an *APIError.
func (c *Client) FetchPlayers(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &APIError{Class: FailRequest, Err: err}
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Class: classifyTransport(err), Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return nil, &APIError{Class: FailHTTPStatus, Status: res.StatusCode, Err: fmt.Errorf("http status %s", res.Status)}
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &APIError{Class: FailRequest, Err: err}
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	// Some endpoints return a single object instead of an array.
	var one Record
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, &APIError{Class: FailRequest, Err: fmt.Errorf("decode response: %w", err)}
	}
	return []Record{one}, nil
}

func classifyTransport(err error) FailureClass {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return FailTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailTimeout
	}
	var operr *net.OpError
	if errors.As(err, &operr) {
		return FailConnection
	}
	return FailRequest
}
