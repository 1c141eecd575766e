package s3browser

import (
	"context"
	"path/filepath"
)

// Scenario describes the fixed walkthrough run by the s3browser command.
type Scenario struct {
	ObjectName   string
	UploadPath   string
	DownloadPath string
}

// NewScenario derives the local paths the walkthrough uses: the file is
// uploaded from uploadDir/file and downloaded to downloadDir/downloaded_<file>.
func NewScenario(objectName, file, uploadDir, downloadDir string) Scenario {
	return Scenario{
		ObjectName:   objectName,
		UploadPath:   filepath.Join(uploadDir, file),
		DownloadPath: filepath.Join(downloadDir, "downloaded_"+filepath.Base(file)),
	}
}

// RunScenario checks the bucket and, when it exists, lists it, uploads the
// object, stats it, downloads it and deletes it again, stopping at the first
// failure.
//
// A missing bucket is not an error: RunScenario returns false, nil without
// attempting anything else.
func (b *Browser) RunScenario(ctx context.Context, s Scenario) (bool, error) {
	exists, err := b.BucketExists(ctx)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	if _, err := b.ListObjects(ctx, ListOptions{}); err != nil {
		return true, err
	}
	if _, err := b.FPutObject(ctx, s.ObjectName, s.UploadPath); err != nil {
		return true, err
	}
	if _, err := b.StatObject(ctx, s.ObjectName); err != nil {
		return true, err
	}
	if err := b.FGetObject(ctx, s.ObjectName, s.DownloadPath); err != nil {
		return true, err
	}
	if err := b.RemoveObject(ctx, s.ObjectName); err != nil {
		return true, err
	}
	return true, nil
}
