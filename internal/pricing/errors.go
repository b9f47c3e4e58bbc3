package pricing

import "fmt"

// ValidationError reports a caller-supplied value that violates a hard
// invariant. Everything softer than that degrades into flags on the result
// instead of failing.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
