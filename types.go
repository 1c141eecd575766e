package s3browser

import (
	"fmt"
	"io"
	"time"
)

// ObjectInfo is a read-only projection of an object's metadata as reported by the service.
type ObjectInfo struct {
	Key          string    `json:"key"`
	LastModified time.Time `json:"last_modified"`
	Size         int64     `json:"size_bytes"`
	ETag         string    `json:"etag,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
}

type BucketInfo struct {
	Name         string    `json:"name"`
	CreationDate time.Time `json:"creation_date"`
}

type UploadInfo struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	ETag      string `json:"etag"`
	Size      int64  `json:"size_bytes"`
	VersionID string `json:"version_id,omitempty"`
}

type ListOptions struct {
	Prefix    string
	Recursive bool
}

// Object is an open object body together with its metadata.
// Callers must Close it.
type Object struct {
	io.ReadCloser
	Info ObjectInfo
}

// Driver selects the client library used to talk to the endpoint.
type Driver string

const (
	DriverMinio Driver = "minio"
	DriverAWS   Driver = "aws"
)

func (d Driver) IsValid() bool {
	switch d {
	case DriverMinio, DriverAWS:
		return true
	default:
		return false
	}
}

func ParseDriver(s string) (Driver, error) {
	d := Driver(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid driver: %s (valid drivers: minio, aws)", s)
	}
	return d, nil
}
