package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

// decodeError builds the RequestError for a non-success response. The
// message is the first non-empty of the detail field, the error field and
// the generic fallback; bodies that are not JSON objects get the fallback.
func decodeError(status int, body []byte) error {
	reqErr := &domain.RequestError{
		StatusCode: status,
		Message:    domain.GenericErrorMessage,
		Body:       body,
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return reqErr
	}
	for _, key := range []string{"detail", "error"} {
		if msg := messageOf(payload[key]); msg != "" {
			reqErr.Message = msg
			break
		}
	}
	return reqErr
}

func messageOf(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			return messageOf(v[0])
		}
	}
	return ""
}

// FieldErrors turns a field map error body into ValidationErrors. Values
// can be a message, a list of messages or a nested map. A body that is not a
// map yields the request error's message under the non-field bucket.
func FieldErrors(reqErr *domain.RequestError) domain.ValidationErrors {
	errs := domain.ValidationErrors{}

	var payload map[string]any
	if err := json.Unmarshal(reqErr.Body, &payload); err != nil || len(payload) == 0 {
		errs.Add(domain.NonFieldErrorsKey, reqErr.Message)
		return errs
	}

	for field, value := range payload {
		if field == "detail" || field == "error" {
			field = domain.NonFieldErrorsKey
		}
		collectMessages(errs, field, value)
	}
	if errs.Empty() {
		errs.Add(domain.NonFieldErrorsKey, reqErr.Message)
	}
	return errs
}

func collectMessages(errs domain.ValidationErrors, field string, value any) {
	switch v := value.(type) {
	case string:
		errs.Add(field, v)
	case []any:
		for _, item := range v {
			collectMessages(errs, field, item)
		}
	case map[string]any:
		for sub, item := range v {
			collectMessages(errs, field+"."+sub, item)
		}
	case nil:
	default:
		errs.Add(field, strings.TrimSpace(fmt.Sprint(v)))
	}
}

func asRequestError(err error) (*domain.RequestError, bool) {
	var reqErr *domain.RequestError
	ok := errors.As(err, &reqErr)
	return reqErr, ok
}
