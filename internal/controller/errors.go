package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/income-predict/internal/form"
	"github.com/sells-group/income-predict/pkg/classifier"
)

// ErrSubmissionPending is returned by Submit while a request is in flight.
var ErrSubmissionPending = eris.New("controller: submission already in flight")

// UnknownErrorMessage is shown when a failure carries no text.
const UnknownErrorMessage = "An unknown error occurred"

// ResponseShapeError is a success response without a usable prediction.
type ResponseShapeError struct {
	Field  string
	Reason string
}

func (e *ResponseShapeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("response missing %q field", e.Field)
	}
	return fmt.Sprintf("response field %q %s", e.Field, e.Reason)
}

// Kind classifies an error for display and metrics.
type Kind string

// Error kinds.
const (
	KindNone          Kind = ""
	KindValidation    Kind = "validation"
	KindTransport     Kind = "transport"
	KindResponseShape Kind = "response_shape"
	KindPending       Kind = "pending"
)

// ErrorKind classifies err. Anything that is not a validation, shape or
// pending error is a transport failure.
func ErrorKind(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ve *form.ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var se *ResponseShapeError
	if errors.As(err, &se) || errors.Is(err, classifier.ErrMalformedBody) {
		return KindResponseShape
	}
	if errors.Is(err, ErrSubmissionPending) {
		return KindPending
	}
	return KindTransport
}

// FailureMessage is the text shown for a failed submission. A server-supplied
// explanation wins over everything else.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var status *classifier.StatusError
	if errors.As(err, &status) {
		return status.Error()
	}
	var shape *ResponseShapeError
	if errors.As(err, &shape) {
		return shape.Error()
	}
	if errors.Is(err, classifier.ErrMalformedBody) {
		return "response could not be parsed"
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return UnknownErrorMessage
	}
	return msg
}
