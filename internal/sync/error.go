package sync

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteUnavailable wraps transport failures and timeouts talking to
	// the remote cart service. Callers may retry.
	ErrRemoteUnavailable = errors.New("remote cart service unavailable")

	// ErrStaleResponse marks a remote response that arrived after a newer
	// command was issued for the same item. Stale responses are discarded,
	// never applied.
	ErrStaleResponse = errors.New("stale remote response discarded")
)

// RemoteError is a non-retryable rejection from the remote service.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote cart service rejected request (%d): %s", e.Status, e.Message)
}
