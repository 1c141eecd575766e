package s3browser

import (
	"errors"
	"fmt"
)

// ErrOperationFailed is the single error kind reported by Browser operations.
// It covers connectivity, authentication, protocol and not-found failures alike.
var ErrOperationFailed = errors.New("storage operation failed")

// OperationError describes a failed storage operation.
// errors.Is(err, ErrOperationFailed) holds for every OperationError, and the
// driver error stays reachable through errors.As.
type OperationError struct {
	Op     string
	Bucket string
	Object string
	Err    error
}

func (e *OperationError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Object, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() []error {
	return []error{ErrOperationFailed, e.Err}
}
