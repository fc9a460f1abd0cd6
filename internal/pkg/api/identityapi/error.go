package identityapi

import (
	"fmt"

	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
)

// BadInputError is a request structurally rejected by the service, or a
// supplied identifier that is malformed. It is never retried.
// All other client failures (network, non-200 status, unexpected content
// type, malformed body) are plain errors and are considered transient.
type BadInputError struct {
	Code    int
	Message string
}

func (e *BadInputError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("received error (%d): %s", e.Code, e.Message)
	}
	return e.Message
}

// PermanentError marks the error as not retryable for the retry driver.
func (e *BadInputError) PermanentError() bool {
	return true
}

// IsBadInput returns true if the error chain contains a BadInputError.
func IsBadInput(err error) bool {
	var badInput *BadInputError
	return errors.As(err, &badInput)
}
