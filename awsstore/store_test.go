package awsstore_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/s3browser"
	"github.com/sagarc03/s3browser/awsstore"
	"github.com/sagarc03/s3browser/transport"
)

// newStore creates a Store backed by a test server speaking the S3 XML protocol.
func newStore(t *testing.T, handler http.Handler) *awsstore.Store {
	t.Helper()

	// Keep the developer's AWS profile out of the tests.
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	rt, err := transport.New(nil, false)
	require.NoError(t, err)

	store, err := awsstore.New(context.Background(), awsstore.Config{
		Endpoint:  u.Host,
		AccessKey: "test-key",
		SecretKey: "test-secret",
		Transport: rt,
	})
	require.NoError(t, err)
	return store
}

func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func TestNew(t *testing.T) {
	t.Run("requires endpoint", func(t *testing.T) {
		_, err := awsstore.New(context.Background(), awsstore.Config{})
		assert.Error(t, err)
	})

	t.Run("rejects scheme", func(t *testing.T) {
		_, err := awsstore.New(context.Background(), awsstore.Config{Endpoint: "https://s3.local"})
		assert.Error(t, err)
	})
}

func TestStore_BucketExists(t *testing.T) {
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/test-bucket" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	t.Run("existing bucket", func(t *testing.T) {
		exists, err := store.BucketExists(context.Background(), "test-bucket")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing bucket", func(t *testing.T) {
		exists, err := store.BucketExists(context.Background(), "missing-bucket")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestStore_BucketExists_Forbidden(t *testing.T) {
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	exists, err := store.BucketExists(context.Background(), "test-bucket")
	assert.Error(t, err)
	assert.False(t, exists)
}

func TestStore_ListBuckets(t *testing.T) {
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		xmlResponse(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<ListAllMyBucketsResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Owner><ID>owner</ID></Owner>
  <Buckets>
    <Bucket><Name>alpha</Name><CreationDate>2024-01-02T03:04:05.000Z</CreationDate></Bucket>
    <Bucket><Name>beta</Name><CreationDate>2024-02-03T04:05:06.000Z</CreationDate></Bucket>
  </Buckets>
</ListAllMyBucketsResult>`)
	}))

	buckets, err := store.ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "alpha", buckets[0].Name)
	assert.Equal(t, 2024, buckets[0].CreationDate.Year())
	assert.Equal(t, "beta", buckets[1].Name)
}

func TestStore_ListObjects(t *testing.T) {
	var (
		mu         sync.Mutex
		delimiters []string
	)
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		delimiters = append(delimiters, r.URL.Query().Get("delimiter"))
		mu.Unlock()

		xmlResponse(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>test-bucket</Name>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>sample.txt</Key>
    <LastModified>2024-01-02T03:04:05.000Z</LastModified>
    <ETag>&quot;abc123&quot;</ETag>
    <Size>11</Size>
  </Contents>
  <CommonPrefixes><Prefix>docs/</Prefix></CommonPrefixes>
</ListBucketResult>`)
	}))

	objects, err := store.ListObjects(context.Background(), "test-bucket", s3browser.ListOptions{})
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "sample.txt", objects[0].Key)
	assert.Equal(t, int64(11), objects[0].Size)
	assert.Equal(t, "abc123", objects[0].ETag)
	assert.Equal(t, "docs/", objects[1].Key)

	_, err = store.ListObjects(context.Background(), "test-bucket", s3browser.ListOptions{Recursive: true})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/", ""}, delimiters)
}

func TestStore_StatObject(t *testing.T) {
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path != "/test-bucket/sample.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", "11")
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("ETag", `"abc123"`)
		w.Header().Set("Last-Modified", "Tue, 02 Jan 2024 03:04:05 GMT")
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("existing object", func(t *testing.T) {
		info, err := store.StatObject(context.Background(), "test-bucket", "sample.txt")
		require.NoError(t, err)
		assert.Equal(t, "sample.txt", info.Key)
		assert.Equal(t, int64(11), info.Size)
		assert.Equal(t, "text/plain", info.ContentType)
		assert.Equal(t, "abc123", info.ETag)
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := store.StatObject(context.Background(), "test-bucket", "missing.txt")
		assert.Error(t, err)
	})
}

func TestStore_FPutObject(t *testing.T) {
	var (
		mu   sync.Mutex
		body string
	)
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/test-bucket/sample.txt", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = string(data)
		mu.Unlock()
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	}))

	path := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o600))

	info, err := store.FPutObject(context.Background(), "test-bucket", "sample.txt", path)
	require.NoError(t, err)
	assert.Equal(t, "sample.txt", info.Key)
	assert.Equal(t, int64(11), info.Size)
	assert.Equal(t, "abc123", info.ETag)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, body, "hello world")
}

func TestStore_FPutObject_MissingFile(t *testing.T) {
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
		w.WriteHeader(http.StatusOK)
	}))

	_, err := store.FPutObject(context.Background(), "test-bucket", "sample.txt",
		filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore_FGetObject(t *testing.T) {
	content := "hello world"
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/test-bucket/sample.txt" {
			xmlResponse(w, http.StatusNotFound, `<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.Header().Set("Content-Range", "bytes 0-10/11")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = io.WriteString(w, content)
	}))

	dir := t.TempDir()

	t.Run("writes file", func(t *testing.T) {
		path := filepath.Join(dir, "downloaded_sample.txt")
		require.NoError(t, store.FGetObject(context.Background(), "test-bucket", "sample.txt", path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
		assert.NoFileExists(t, path+".part")
	})

	t.Run("missing object leaves no file", func(t *testing.T) {
		path := filepath.Join(dir, "downloaded_missing.txt")
		err := store.FGetObject(context.Background(), "test-bucket", "missing.txt", path)
		assert.Error(t, err)
		assert.NoFileExists(t, path)
		assert.NoFileExists(t, path+".part")
	})
}

func TestStore_GetObject(t *testing.T) {
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Length", "11")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "hello world")
	}))

	obj, err := store.GetObject(context.Background(), "test-bucket", "sample.txt")
	require.NoError(t, err)
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
	assert.Equal(t, int64(11), obj.Info.Size)
	assert.Equal(t, "text/plain", obj.Info.ContentType)
}

func TestStore_RemoveObject(t *testing.T) {
	var called atomic.Bool
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/test-bucket/sample.txt", r.URL.Path)
		called.Store(true)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, store.RemoveObject(context.Background(), "test-bucket", "sample.txt"))
	assert.True(t, called.Load())
}

func TestStore_GetBucketPolicy(t *testing.T) {
	policy := `{"Version":"2012-10-17","Statement":[]}`
	store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["policy"]
		assert.True(t, ok, "policy subresource expected")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, policy)
	}))

	got, err := store.GetBucketPolicy(context.Background(), "test-bucket")
	require.NoError(t, err)
	assert.JSONEq(t, policy, got)
}

func TestStore_MakeBucket(t *testing.T) {
	tests := []struct {
		name       string
		region     string
		constraint bool
	}{
		{name: "default region", region: "", constraint: false},
		{name: "us-east-1", region: "us-east-1", constraint: false},
		{name: "other region", region: "eu-west-1", constraint: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mu   sync.Mutex
				body string
			)
			store := newStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, "/new-bucket", r.URL.Path)
				data, _ := io.ReadAll(r.Body)
				mu.Lock()
				body = string(data)
				mu.Unlock()
				w.WriteHeader(http.StatusOK)
			}))

			require.NoError(t, store.MakeBucket(context.Background(), "new-bucket", tt.region))

			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, tt.constraint, strings.Contains(body, "<LocationConstraint>"+tt.region+"</LocationConstraint>"))
		})
	}
}

func TestStore_ThroughProxy_PersistentFailure(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	var hits atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer proxy.Close()

	host, port, err := net.SplitHostPort(proxy.Listener.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	policy := transport.DefaultRetryPolicy()
	policy.BackoffFactor = time.Millisecond
	rt, err := transport.New(&transport.Proxy{Address: host, Port: p}, false, transport.WithRetryPolicy(policy))
	require.NoError(t, err)

	store, err := awsstore.New(context.Background(), awsstore.Config{
		Endpoint:       "s3.example.test:9000",
		AccessKey:      "test-key",
		SecretKey:      "test-secret",
		Transport:      rt,
		DisableRetries: true,
	})
	require.NoError(t, err)

	_, err = store.BucketExists(context.Background(), "test-bucket")
	require.Error(t, err)
	assert.Equal(t, int32(6), hits.Load(), "one attempt plus five transport retries")
}
