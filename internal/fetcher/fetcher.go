package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/metrics"
	"github.com/feral-file/ff-token-sweeper/internal/ratelimit"
)

// Request describes one upstream JSON GET
type Request struct {
	URL string
	// Header is the name of the header that carries the credential, e.g. X-API-Key
	Header string
}

// Config holds retry and timeout settings
type Config struct {
	// MaxRetriesPerCredential is the number of retries after the first attempt on transient failures
	MaxRetriesPerCredential int
	// BackoffStep is the linear backoff unit; retry n waits n*BackoffStep
	BackoffStep time.Duration
	// RequestTimeout bounds a single attempt
	RequestTimeout time.Duration
}

// Fetcher executes JSON requests against one upstream provider, rotating
// through an ordered list of credentials
//
//go:generate mockgen -source=fetcher.go -destination=../mocks/fetcher.go -package=mocks -mock_names=Fetcher=MockFetcher
type Fetcher interface {
	// FetchJSON returns the body of the first 2xx response.
	// 401/403/429 and timeouts move on to the next credential, 5xx and
	// connection errors are retried on the same credential first, any other
	// status stops immediately with *domain.UpstreamError.
	FetchJSON(ctx context.Context, req Request, credentials []string) ([]byte, error)
}

type failureKind int

const (
	failureTransient failureKind = iota
	failureCredential
	failureTerminal
)

// attemptError classifies a failed attempt
type attemptError struct {
	kind failureKind
	err  error
}

func (e *attemptError) Error() string {
	return e.err.Error()
}

func (e *attemptError) Unwrap() error {
	return e.err
}

type fetcher struct {
	provider   string
	config     Config
	httpClient adapter.HTTPClient
	limiter    ratelimit.Proxy
}

// New creates a fetcher for the named provider. limiter may be nil.
func New(provider string, cfg Config, httpClient adapter.HTTPClient, limiter ratelimit.Proxy) Fetcher {
	if cfg.MaxRetriesPerCredential < 0 {
		cfg.MaxRetriesPerCredential = 0
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	return &fetcher{
		provider:   provider,
		config:     cfg,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// FetchJSON implements Fetcher
func (f *fetcher) FetchJSON(ctx context.Context, req Request, credentials []string) ([]byte, error) {
	if len(credentials) == 0 {
		return nil, fmt.Errorf("%s: %w", f.provider, domain.ErrNoCredentials)
	}

	start := time.Now()
	defer func() {
		metrics.FetcherLatency.WithLabelValues(f.provider).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for i, credential := range credentials {
		body, err := f.fetchWithCredential(ctx, req, credential)
		if err == nil {
			return body, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var ae *attemptError
		if errors.As(err, &ae) {
			if ae.kind == failureTerminal {
				return nil, ae.err
			}
			err = ae.err
		}

		logger.WarnCtx(ctx, "Credential failed, rotating",
			zap.String("provider", f.provider),
			zap.Int("credential_index", i),
			zap.Error(err),
		)
		lastErr = err
	}

	return nil, fmt.Errorf("%s: %w: %w", f.provider, domain.ErrAuthExhausted, lastErr)
}

// fetchWithCredential runs the attempt loop for one credential
func (f *fetcher) fetchWithCredential(ctx context.Context, req Request, credential string) ([]byte, error) {
	var body []byte

	operation := func() error {
		b, err := f.attempt(ctx, req, credential)
		if err == nil {
			body = b
			return nil
		}

		var ae *attemptError
		if errors.As(err, &ae) && ae.kind == failureTransient {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		logger.DebugCtx(ctx, "Transient upstream failure, retrying",
			zap.String("provider", f.provider),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	b := newLinearBackOff(f.config.BackoffStep, f.config.MaxRetriesPerCredential)
	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}

// attempt performs a single request and classifies the outcome
func (f *fetcher) attempt(ctx context.Context, req Request, credential string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.config.RequestTimeout)
	defer cancel()

	headers := map[string]string{}
	if req.Header != "" {
		headers[req.Header] = credential
	}

	resp, err := ratelimit.Request(attemptCtx, f.limiter, f.provider, func(ctx context.Context) (*adapter.HTTPResponse, error) {
		return f.httpClient.Get(ctx, req.URL, headers)
	})
	if err != nil {
		// the caller gave up; not a property of this credential
		if ctx.Err() != nil {
			f.record("canceled")
			return nil, &attemptError{kind: failureTerminal, err: ctx.Err()}
		}
		if errors.Is(err, ratelimit.ErrProxyClosed) {
			f.record("proxy_closed")
			return nil, &attemptError{kind: failureTerminal, err: err}
		}
		if isTimeout(err) {
			f.record("timeout")
			return nil, &attemptError{kind: failureCredential, err: &domain.NetworkError{Err: err}}
		}
		f.record("network_error")
		return nil, &attemptError{kind: failureTransient, err: &domain.NetworkError{Err: err}}
	}

	status := resp.StatusCode
	switch {
	case status >= 200 && status < 300:
		f.record("success")
		return resp.Body, nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusTooManyRequests:
		f.record("credential_rejected")
		return nil, &attemptError{kind: failureCredential, err: &domain.UpstreamError{StatusCode: status, Body: truncate(resp.Body)}}
	case status >= 500 && status < 600:
		f.record("server_error")
		return nil, &attemptError{kind: failureTransient, err: &domain.UpstreamError{StatusCode: status, Body: truncate(resp.Body)}}
	default:
		f.record("client_error")
		upstreamErr := &domain.UpstreamError{StatusCode: status, Body: truncate(resp.Body)}
		logger.WarnCtx(ctx, "Upstream rejected request",
			zap.String("provider", f.provider),
			zap.Int("status", status),
			zap.String("body", upstreamErr.Body),
		)
		return nil, &attemptError{kind: failureTerminal, err: upstreamErr}
	}
}

func (f *fetcher) record(outcome string) {
	metrics.FetcherRequests.WithLabelValues(f.provider, outcome).Inc()
}

// isTimeout reports whether err is a per-request deadline rather than a refused connection
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// truncate keeps upstream bodies short enough for logs
func truncate(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
