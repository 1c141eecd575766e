package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/sagarc03/s3browser"
)

const timeLayout = "2006-01-02 15:04:05"

// truncate shortens s to at most maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

// Formatter formats results for output.
type Formatter interface {
	FormatExists(w io.Writer, bucket string, exists bool) error
	FormatBuckets(w io.Writer, buckets []s3browser.BucketInfo) error
	FormatList(w io.Writer, result *ListResult) error
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatStat(w io.Writer, info s3browser.ObjectInfo) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatPolicy(w io.Writer, bucket, policy string) error
	FormatMakeBucket(w io.Writer, bucket, region string) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
	// Now is used for relative times; nil means time.Now.
	Now func() time.Time
}

func (f *HumanFormatter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// FormatExists formats a bucket existence check.
func (f *HumanFormatter) FormatExists(w io.Writer, bucket string, exists bool) error {
	if exists {
		_, _ = fmt.Fprintf(w, "Bucket %s exists\n", bucket)
	} else {
		_, _ = fmt.Fprintf(w, "Bucket %s does not exist\n", bucket)
	}
	return nil
}

// FormatBuckets formats the bucket listing as a table.
func (f *HumanFormatter) FormatBuckets(w io.Writer, buckets []s3browser.BucketInfo) error {
	if len(buckets) == 0 {
		_, _ = fmt.Fprintln(w, "No buckets found")
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range buckets {
		if len(buckets[i].Name) > maxNameLen {
			maxNameLen = len(buckets[i].Name)
		}
	}

	_, _ = fmt.Fprintf(w, "%-*s  %s\n", maxNameLen, "NAME", "CREATED")
	_, _ = fmt.Fprintf(w, "%s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 19))
	for i := range buckets {
		b := &buckets[i]
		_, _ = fmt.Fprintf(w, "%-*s  %s\n", maxNameLen, b.Name, b.CreationDate.Format(timeLayout))
	}

	_, _ = fmt.Fprintf(w, "\n%d bucket(s)\n", len(buckets))
	return nil
}

// FormatList formats list results as human-readable text.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No objects found")
		return nil
	}

	// Calculate column widths
	maxNameLen := 4 // "NAME"
	for i := range result.Items {
		if n := utf8.RuneCountInString(result.Items[i].Key); n > maxNameLen {
			maxNameLen = n
		}
	}
	if maxNameLen > 60 {
		maxNameLen = 60
	}

	_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, "NAME", "SIZE", "LAST MODIFIED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 10), strings.Repeat("-", 19))

	for i := range result.Items {
		item := &result.Items[i]
		name := truncate(item.Key, maxNameLen)

		modified := ""
		if !item.LastModified.IsZero() {
			modified = item.LastModified.Format(timeLayout)
		}
		_, _ = fmt.Fprintf(w, "%-*s  %10s  %s\n", maxNameLen, name, formatSize(item.Size), modified)
	}

	_, _ = fmt.Fprintf(w, "\n%d object(s) (%s total)\n", len(result.Items), formatSize(result.TotalSize()))
	return nil
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s)\n", r.LocalPath, r.Name, formatSize(r.Size))
			if r.ETag != "" {
				_, _ = fmt.Fprintf(w, "  ETag: %s\n", r.ETag)
			}
		}
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.Name, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.Name, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatStat formats object metadata as human-readable text.
func (f *HumanFormatter) FormatStat(w io.Writer, info s3browser.ObjectInfo) error {
	_, _ = fmt.Fprintf(w, "Name:          %s\n", info.Key)
	_, _ = fmt.Fprintf(w, "Size:          %s (%d bytes)\n", formatSize(info.Size), info.Size)
	if !info.LastModified.IsZero() {
		_, _ = fmt.Fprintf(w, "Last modified: %s (%s)\n",
			info.LastModified.Format(timeLayout),
			humanize.RelTime(info.LastModified, f.now(), "ago", "from now"),
		)
	}
	if info.ETag != "" {
		_, _ = fmt.Fprintf(w, "ETag:          %s\n", info.ETag)
	}
	if info.ContentType != "" {
		_, _ = fmt.Fprintf(w, "Content type:  %s\n", info.ContentType)
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Name, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.Name)
		}
	}
	return nil
}

// FormatPolicy writes the policy document as is.
func (f *HumanFormatter) FormatPolicy(w io.Writer, bucket, policy string) error {
	if policy == "" {
		_, _ = fmt.Fprintf(w, "Bucket %s has no policy\n", bucket)
		return nil
	}
	_, _ = fmt.Fprintln(w, policy)
	return nil
}

// FormatMakeBucket confirms a created bucket.
func (f *HumanFormatter) FormatMakeBucket(w io.Writer, bucket, region string) error {
	if f.Quiet {
		return nil
	}
	if region == "" {
		_, _ = fmt.Fprintf(w, "Created bucket: %s\n", bucket)
	} else {
		_, _ = fmt.Fprintf(w, "Created bucket: %s (%s)\n", bucket, region)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatExists formats a bucket existence check as JSON.
func (f *JSONFormatter) FormatExists(w io.Writer, bucket string, exists bool) error {
	return writeJSON(w, struct {
		Bucket string `json:"bucket"`
		Exists bool   `json:"exists"`
	}{bucket, exists})
}

// FormatBuckets formats the bucket listing as JSON.
func (f *JSONFormatter) FormatBuckets(w io.Writer, buckets []s3browser.BucketInfo) error {
	if buckets == nil {
		buckets = []s3browser.BucketInfo{}
	}
	return writeJSON(w, struct {
		Buckets []s3browser.BucketInfo `json:"buckets"`
	}{buckets})
}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		UploadResult
		Error string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		output[i] = jsonResult{UploadResult: results[i]}
		if results[i].Err != nil {
			output[i].Error = results[i].Err.Error()
		}
	}
	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatStat formats object metadata as JSON.
func (f *JSONFormatter) FormatStat(w io.Writer, info s3browser.ObjectInfo) error {
	return writeJSON(w, info)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		DeleteResult
		Error string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}
	for i := range results {
		output.Results[i] = jsonResult{DeleteResult: results[i]}
		if results[i].Err != nil {
			output.Results[i].Error = results[i].Err.Error()
		}
	}
	return writeJSON(w, output)
}

// FormatPolicy formats the policy document as JSON. A valid JSON policy is
// embedded as an object, anything else as a string.
func (f *JSONFormatter) FormatPolicy(w io.Writer, bucket, policy string) error {
	var doc any = policy
	if json.Valid([]byte(policy)) {
		doc = json.RawMessage(policy)
	}
	return writeJSON(w, struct {
		Bucket string `json:"bucket"`
		Policy any    `json:"policy"`
	}{bucket, doc})
}

// FormatMakeBucket formats a created bucket as JSON.
func (f *JSONFormatter) FormatMakeBucket(w io.Writer, bucket, region string) error {
	return writeJSON(w, struct {
		Bucket  string `json:"bucket"`
		Region  string `json:"region,omitempty"`
		Created bool   `json:"created"`
	}{bucket, region, true})
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
