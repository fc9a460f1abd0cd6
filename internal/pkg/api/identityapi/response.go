package identityapi

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
)

const (
	errorsField       = "errors"
	errorCodeField    = "code"
	errorMessageField = "msg"
)

// parseResponse reads the JSON body incrementally.
//
// A "d_mid" field signals success and its value is returned immediately.
// An "errors" array signals bad input, only the first error is parsed.
// Any other shape, truncated or invalid JSON, or a complete object without
// both fields, is a transient failure.
func parseResponse(body []byte) (string, error) {
	iter := jsoniter.ConfigDefault.BorrowIterator(body)
	defer jsoniter.ConfigDefault.ReturnIterator(iter)

	for field := iter.ReadObject(); field != ""; field = iter.ReadObject() {
		switch field {
		case visitorIDField:
			value := iter.ReadString()
			if iter.Error != nil {
				return "", invalidJSONError(iter.Error)
			}
			return value, nil
		case errorsField:
			return "", parseFirstError(iter)
		default:
			iter.Skip()
		}
		if iter.Error != nil {
			return "", invalidJSONError(iter.Error)
		}
	}
	if iter.Error != nil {
		return "", invalidJSONError(iter.Error)
	}

	return "", errors.New("visitor ID not found in the response body")
}

func parseFirstError(iter *jsoniter.Iterator) error {
	if !iter.ReadArray() {
		if iter.Error != nil {
			return invalidJSONError(iter.Error)
		}
		return errors.New("empty errors array in the response")
	}

	code := -1
	message := ""
	for field := iter.ReadObject(); field != ""; field = iter.ReadObject() {
		switch field {
		case errorCodeField:
			code = iter.ReadInt()
		case errorMessageField:
			message = iter.ReadString()
		default:
			iter.Skip()
		}
		if iter.Error != nil {
			return invalidJSONError(iter.Error)
		}
	}
	if iter.Error != nil {
		return invalidJSONError(iter.Error)
	}

	return &BadInputError{Code: code, Message: message}
}

func invalidJSONError(err error) error {
	return errors.PrefixError(err, "invalid JSON response")
}
