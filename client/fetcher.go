// Package client talks to the point-of-sale vendor's REST API: a
// retrying HTTP fetcher plus typed wrappers for the orders, menu and
// kitchen-configuration endpoints.
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	gwerrors "github.com/thedoughmonster/doughmonster-worker-sub001/errors"
)

const (
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultHTTPTimeout    = 10 * time.Second
)

// RetryPolicy bounds the fetcher's retry behaviour. The request is
// attempted at most Retries+1 times.
type RetryPolicy struct {
	Retries        int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Response is a fully-read upstream HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Fetcher issues HTTP requests and retries transient failures with
// bounded exponential backoff. A response counts as success only when
// its status is 2xx; 429 and 5xx are retryable, every other non-2xx
// status fails immediately. Backoff delays block only the calling
// request.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher with the provided per-attempt timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	c := new(http.Client)
	c.Timeout = timeout
	return &Fetcher{httpClient: c}
}

// retryable reports whether a response status warrants another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Fetch performs the request, retrying per policy. On exhaustion the
// returned error carries the last observed status (zero when every
// attempt failed at the transport level).
func (f *Fetcher) Fetch(ctx context.Context, method, url string, header http.Header, body []byte, policy RetryPolicy) (*Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = policy.InitialBackoff
	if bo.InitialInterval <= 0 {
		bo.InitialInterval = defaultInitialBackoff
	}
	bo.MaxInterval = policy.MaxBackoff
	if bo.MaxInterval <= 0 {
		bo.MaxInterval = defaultMaxBackoff
	}
	bo.Multiplier = 2
	// No jitter: retry timing stays deterministic.
	bo.RandomizationFactor = 0
	bo.Reset()

	var (
		lastStatus int
		lastBody   string
		lastErr    error
	)

	attempts := policy.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(bo.NextBackOff()):
			}
		}

		var reqBody io.Reader
		if len(body) > 0 {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, err
		}
		if header != nil {
			req.Header = header.Clone()
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			// No response at all: transport failures are retryable.
			lastStatus = 0
			lastBody = ""
			lastErr = err
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastStatus = 0
			lastBody = ""
			lastErr = readErr
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
		}

		if retryable(resp.StatusCode) {
			lastStatus = resp.StatusCode
			lastBody = string(data)
			lastErr = nil
			continue
		}

		fetchErr := gwerrors.NewUpstreamFetchError(url, resp.StatusCode, nil)
		fetchErr.Snippet = gwerrors.Truncate(string(data))
		return nil, fetchErr
	}

	fetchErr := gwerrors.NewUpstreamFetchError(url, lastStatus, lastErr)
	fetchErr.Snippet = gwerrors.Truncate(lastBody)
	return nil, fetchErr
}
