package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/docchat/internal/common"
)

// APIError is a failed Content API call. Err is one of the common sentinel
// errors so callers match with errors.Is; Detail is the server's message.
// Cause is the underlying transport error, if any, and stays on the chain.
type APIError struct {
	Status int
	Detail string
	Err    error
	Cause  error
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Err, e.Detail)
	case e.Status != 0:
		return fmt.Sprintf("%s (HTTP %d)", e.Err, e.Status)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Err, e.Cause)
	}
	return e.Err.Error()
}

func (e *APIError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Detail returns the server-provided message of err, if any.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// routeKind changes how 403 is interpreted: on admin routes it means the
// caller lacks the admin flag, elsewhere that no valid credential was sent.
type routeKind int

const (
	routeUser routeKind = iota
	routeAdmin
)

func mapStatus(status int, detail string, kind routeKind) error {
	var sentinel error
	switch status {
	case http.StatusUnauthorized:
		sentinel = common.ErrUnauthenticated
	case http.StatusForbidden:
		if kind == routeAdmin {
			sentinel = common.ErrForbidden
		} else {
			sentinel = common.ErrUnauthenticated
		}
	case http.StatusNotFound:
		sentinel = common.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		sentinel = common.ErrConflict
	default:
		sentinel = common.ErrTransport
	}
	return &APIError{Status: status, Detail: detail, Err: sentinel}
}

// transportError keeps err as the cause. Timeouts and cancellations carry
// no detail, so callers can word them themselves.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &APIError{Err: common.ErrTransport, Cause: err}
	}
	return &APIError{Detail: err.Error(), Err: common.ErrTransport, Cause: err}
}
