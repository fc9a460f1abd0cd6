package schedule

import (
	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
)

// PermanentAware is implemented by errors that classify themselves
// as permanent (not retryable), for example a request rejected by the
// remote service because of bad input.
type PermanentAware interface {
	PermanentError() bool
}

// permanentError marks a plain error as permanent.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

func (e *permanentError) PermanentError() bool {
	return true
}

// Permanent wraps the error so the scheduler will not retry it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent returns true if any error in the chain classifies itself as permanent.
func IsPermanent(err error) bool {
	for err != nil {
		if v, ok := err.(PermanentAware); ok && v.PermanentError() {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
