package clientcli

import (
	"github.com/sagarc03/s3browser"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string
	// Name is the object key; empty uses the base name of LocalPath.
	// For recursive uploads it is the key prefix.
	Name      string
	Recursive bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string `json:"local_path"`
	Name      string `json:"name"`
	ETag      string `json:"etag,omitempty"`
	Size      int64  `json:"size_bytes"`
	VersionID string `json:"version_id,omitempty"`
	Err       error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	Name string
	// LocalPath is the destination file. Empty uses downloaded_<name>,
	// "-" streams the object to the client's output writer.
	LocalPath string
}

// DownloadResult represents the result of downloading an object.
type DownloadResult struct {
	Name        string `json:"name"`
	LocalPath   string `json:"local_path"`
	ETag        string `json:"etag,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Names []string
}

// DeleteResult represents the result of deleting a single object.
type DeleteResult struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// ListOptions configures a list operation.
type ListOptions struct {
	Prefix    string
	Recursive bool
}

// ListResult holds the objects of one listing.
type ListResult struct {
	Bucket string                 `json:"bucket"`
	Prefix string                 `json:"prefix,omitempty"`
	Items  []s3browser.ObjectInfo `json:"items"`
}

// TotalSize returns the sum of all item sizes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for i := range r.Items {
		total += r.Items[i].Size
	}
	return total
}
