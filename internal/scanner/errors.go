package scanner

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classifying sync failures. Per-file markers (IO, decode,
// constraint) abort the whole batch; precondition markers fail the sync
// before it starts.
var (
	ErrIO               = errors.New("io error")
	ErrDecode           = errors.New("decode error")
	ErrConstraint       = errors.New("constraint violation")
	ErrNotOpen          = errors.New("library not open")
	ErrPermissionDenied = errors.New("permission denied")
	ErrScanInFlight     = errors.New("scan already in progress")
)

// Wrap builds an error message carrying operation context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "scan failure"
	}
	return strings.Join(parts, ": ")
}
