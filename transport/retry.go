package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// defaultMaxBackoff caps a single wait between two attempts.
const defaultMaxBackoff = 120 * time.Second

// MaxBufferedBody is the largest request body without GetBody that is read
// into memory so it can be sent again. Larger bodies are sent once.
const MaxBufferedBody = 16 << 20

// RetryPolicy defines how the proxy transport retries failed requests.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BackoffFactor is the wait before the first retry; each further retry doubles it.
	BackoffFactor time.Duration
	// MaxBackoff caps a single wait. Zero means two minutes.
	MaxBackoff time.Duration
	// StatusCodes lists the HTTP response codes that trigger a retry.
	StatusCodes []int
}

// DefaultRetryPolicy returns the policy used for proxied connections:
// 5 retries, 0.2s exponential backoff, retried on 500, 502, 503 and 504.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    5,
		BackoffFactor: 200 * time.Millisecond,
		MaxBackoff:    defaultMaxBackoff,
		StatusCodes: []int{
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

func (p RetryPolicy) retryableStatus(code int) bool {
	return slices.Contains(p.StatusCodes, code)
}

func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	maxBackoff := p.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BackoffFactor
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(p.MaxRetries, 0))), ctx)
}

// retryTransport re-sends requests that failed with a retryable status or a
// transport error. The last response is returned unchanged once the policy
// is exhausted.
type retryTransport struct {
	next   http.RoundTripper
	policy RetryPolicy
	logger *slog.Logger
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	b := t.policy.newBackOff(ctx)

	req, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	// Without GetBody a consumed body cannot be sent again.
	rewindable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil

	attemptReq := req
	for attempt := 1; ; attempt++ {
		resp, err := t.next.RoundTrip(attemptReq)
		if !rewindable || !t.shouldRetry(ctx, resp, err) {
			return resp, err
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return resp, err
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			drain(resp)
		}
		t.logger.Debug("retrying request",
			"method", req.Method,
			"host", req.URL.Host,
			"attempt", attempt,
			"status", status,
			"err", err,
			"wait", wait,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attemptReq, err = rewind(req)
		if err != nil {
			return nil, err
		}
	}
}

func (t *retryTransport) shouldRetry(ctx context.Context, resp *http.Response, err error) bool {
	if err != nil {
		return ctx.Err() == nil
	}
	return t.policy.retryableStatus(resp.StatusCode)
}

// bufferBody gives a small body of known length a GetBody so it can be
// replayed.
func bufferBody(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}
	if req.ContentLength <= 0 || req.ContentLength > MaxBufferedBody {
		return req, nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}

	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(data))
	clone.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return clone, nil
}

func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody == nil {
		return clone, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
