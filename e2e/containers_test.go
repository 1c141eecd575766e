//go:build integration

package e2e_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
)

var (
	containersMu sync.Mutex
	terminators  []func()

	minioOnce     sync.Once
	minioEndpoint Endpoint
	minioErr      error

	localstackOnce     sync.Once
	localstackEndpoint Endpoint
	localstackErr      error
)

// getSharedMinio returns a MinIO server shared by all tests.
func getSharedMinio(t *testing.T) Endpoint {
	t.Helper()

	minioOnce.Do(func() {
		ctx := context.Background()

		container, err := tcminio.Run(ctx,
			"minio/minio:RELEASE.2024-01-16T16-07-38Z",
			tcminio.WithUsername("minioadmin"),
			tcminio.WithPassword("minioadmin"),
		)
		if err != nil {
			minioErr = fmt.Errorf("start minio container: %w", err)
			return
		}
		addTerminator(container)

		address, err := container.ConnectionString(ctx)
		if err != nil {
			minioErr = fmt.Errorf("get minio address: %w", err)
			return
		}

		minioEndpoint = Endpoint{
			Address:   address,
			AccessKey: container.Username,
			SecretKey: container.Password,
			Driver:    "minio",
		}
	})

	if minioErr != nil {
		t.Fatalf("%v", minioErr)
	}
	return minioEndpoint
}

// getSharedLocalstack returns a LocalStack S3 server shared by all tests.
func getSharedLocalstack(t *testing.T) Endpoint {
	t.Helper()

	localstackOnce.Do(func() {
		ctx := context.Background()

		container, err := localstack.Run(ctx,
			"localstack/localstack:3.8",
			testcontainers.WithEnv(map[string]string{"SERVICES": "s3"}),
		)
		if err != nil {
			localstackErr = fmt.Errorf("start localstack container: %w", err)
			return
		}
		addTerminator(container)

		host, err := container.Host(ctx)
		if err != nil {
			localstackErr = fmt.Errorf("get localstack host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "4566/tcp")
		if err != nil {
			localstackErr = fmt.Errorf("get localstack port: %w", err)
			return
		}

		localstackEndpoint = Endpoint{
			Address:   fmt.Sprintf("%s:%s", host, port.Port()),
			AccessKey: "test",
			SecretKey: "test",
			Driver:    "aws",
		}
	})

	if localstackErr != nil {
		t.Fatalf("%v", localstackErr)
	}
	return localstackEndpoint
}

func addTerminator(container testcontainers.Container) {
	containersMu.Lock()
	defer containersMu.Unlock()

	terminators = append(terminators, func() {
		_ = testcontainers.TerminateContainer(container)
	})
}

func terminateContainers() {
	containersMu.Lock()
	defer containersMu.Unlock()

	for _, terminate := range terminators {
		terminate()
	}
	terminators = nil
}

// FlakyProxy is a forward HTTP proxy that answers the first Failures
// requests with 503 Service Unavailable.
type FlakyProxy struct {
	Failures int32

	seen     atomic.Int32
	failed   atomic.Int32
	proxied  atomic.Int32
	upstream http.RoundTripper
}

// startFlakyProxy starts a proxy and returns it with its port.
func startFlakyProxy(t *testing.T, failures int32) (*FlakyProxy, int) {
	t.Helper()

	p := &FlakyProxy{Failures: failures, upstream: &http.Transport{}}
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse proxy url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse proxy port: %v", err)
	}
	return p, port
}

func (p *FlakyProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.seen.Add(1) <= p.Failures {
		p.failed.Add(1)
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
		return
	}
	p.proxied.Add(1)

	out := r.Clone(r.Context())
	out.RequestURI = ""
	out.Header.Del("Proxy-Connection")
	out.Header.Del("Proxy-Authorization")

	resp, err := p.upstream.RoundTrip(out)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

// Failed returns the number of requests answered with 503.
func (p *FlakyProxy) Failed() int {
	return int(p.failed.Load())
}

// Proxied returns the number of requests forwarded upstream.
func (p *FlakyProxy) Proxied() int {
	return int(p.proxied.Load())
}
