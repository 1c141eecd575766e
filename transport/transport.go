// Package transport builds the HTTP transport used by the storage drivers.
//
// A single builder covers both connection modes: without a proxy the
// transport dials the endpoint directly, with a proxy every request is routed
// through it and transient failures are retried according to a RetryPolicy.
// Certificate validation is never disabled.
package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
)

// ErrInvalidProxy is returned when a proxy descriptor cannot be turned into a URL.
var ErrInvalidProxy = errors.New("invalid proxy")

// Proxy describes an HTTP proxy.
type Proxy struct {
	Address string
	Port    int
}

// URL returns the proxy URL, http://address:port/.
func (p Proxy) URL() (*url.URL, error) {
	address := strings.TrimSpace(p.Address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidProxy)
	}
	if p.Port < 1 || p.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidProxy, p.Port)
	}
	return &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(address, strconv.Itoa(p.Port)),
		Path:   "/",
	}, nil
}

func (p Proxy) String() string {
	return net.JoinHostPort(p.Address, strconv.Itoa(p.Port))
}

type options struct {
	policy RetryPolicy
	logger *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithRetryPolicy overrides DefaultRetryPolicy for proxied transports.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithLogger sets the logger retries are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New returns the transport for an endpoint. secure selects the TLS defaults
// of the base transport. A nil proxy yields a plain *http.Transport that never
// consults proxy settings; a non-nil proxy yields a transport routing every
// request through it with retries.
func New(proxy *Proxy, secure bool, opts ...Option) (http.RoundTripper, error) {
	o := options{
		policy: DefaultRetryPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	base, err := minio.DefaultTransport(secure)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}
	base.Proxy = nil
	if base.TLSClientConfig != nil {
		base.TLSClientConfig.InsecureSkipVerify = false
	}

	if proxy == nil {
		return base, nil
	}

	proxyURL, err := proxy.URL()
	if err != nil {
		return nil, err
	}
	base.Proxy = http.ProxyURL(proxyURL)

	return &retryTransport{
		next:   base,
		policy: o.policy,
		logger: o.logger,
	}, nil
}
