package translator

import "fmt"

// BackendError describes a failed call to the external translation backend
// after the retry policy has been exhausted (or immediately, for definitive
// failures such as an unsupported language pair).
type BackendError struct {
	Language  string
	Reason    string
	Retryable bool
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("translation failed for %s: %s", e.Language, e.Reason)
}
