package usecase

import (
	"errors"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConsistencyBlocked    = errors.New("table write blocked by consistency errors")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

var errTransient = crerr.New("transient failure")

// MarkTransient tags an infrastructure failure as retryable. The queue only
// retries transient errors; everything else fails the run permanently.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, errTransient)
}

func IsTransient(err error) bool {
	return crerr.Is(err, errTransient)
}
