// Package apierror turns failures into the `{code, message}` bodies returned by the API.
package apierror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/person-api/datastores"
	"github.com/oaiiae/person-api/validation"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    string `json:"code"    example:"NOT_FOUND" doc:"Symbolic HTTP status"`
	Message string `json:"message" example:"person does not exist"`

	status int
	err    error
}

var _ huma.StatusError = (*ErrorResponse)(nil)

func (e *ErrorResponse) Error() string  { return e.Message }
func (e *ErrorResponse) GetStatus() int { return e.status }
func (e *ErrorResponse) Unwrap() error  { return e.err }

// Code returns the symbolic name of status, e.g. NOT_FOUND for 404.
func Code(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

func newResponse(status int, message string, cause error) *ErrorResponse {
	return &ErrorResponse{Code: Code(status), Message: message, status: status, err: cause}
}

// New matches [huma.NewError] so that errors raised by the framework itself
// (unparsable bodies, bad path parameters) share the same shape.
func New(status int, msg string, errs ...error) huma.StatusError {
	lines := []string{msg}
	for _, err := range errs {
		if err != nil {
			lines = append(lines, err.Error())
		}
	}
	return newResponse(status, strings.Join(lines, "\n"), errors.Join(errs...))
}

// Translate maps err to the [huma.StatusError] sent to the client.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var (
		verr  *validation.Error
		vfail *validation.Failure
		resp  *ErrorResponse
		serr  huma.StatusError
	)
	switch {
	case errors.As(err, &resp):
		return resp
	case errors.As(err, &verr):
		return newResponse(http.StatusBadRequest, verr.Error(), err)
	case errors.As(err, &vfail):
		return newResponse(http.StatusBadRequest, messageWithRootCause(err), err)
	case errors.Is(err, ds.ErrNotFound):
		return newResponse(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, ds.ErrAlreadyExists):
		return newResponse(http.StatusBadRequest, err.Error(), err)
	case errors.As(err, &serr):
		return serr
	default:
		return newResponse(http.StatusInternalServerError, messageWithRootCause(err), err)
	}
}

// RootCause returns the innermost error of the chain of err.
func RootCause(err error) error {
	for {
		cause := errors.Unwrap(err)
		if cause == nil {
			return err
		}
		err = cause
	}
}

func messageWithRootCause(err error) string {
	msg := err.Error()
	root := RootCause(err)
	if root == err || strings.Contains(msg, root.Error()) {
		return msg
	}
	return msg + " " + root.Error()
}
