package debate

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means an operation referenced a debate id with no live
	// session. Callers typically surface it as "start a new debate".
	ErrNotFound = errors.New("debate: no active session")

	// ErrAlreadyActive means start was called on a live debate id.
	ErrAlreadyActive = errors.New("debate: session already active")
)

// ProviderError wraps a transport, timeout, or auth failure talking to the
// LLM provider. SendMessage commits nothing on this path, so retrying with
// identical input is safe.
type ProviderError struct {
	Op  string // "send", "compaction", "summary", "topics"
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("debate: provider call failed during %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err is (or wraps) a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
