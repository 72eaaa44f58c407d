// Package common defines the error taxonomy and constants shared by every
// layer of the docchat client. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// ErrUnauthenticated means the credential is missing, expired or was
	// rejected by the server. It always escalates to the sign-in view.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound means the referenced conversation or file is gone.
	ErrNotFound = errors.New("not found")

	// ErrValidationRejected is returned when files fail pre-flight checks.
	ErrValidationRejected = errors.New("validation rejected")

	// ErrTransport covers network errors, timeouts and 5xx responses.
	ErrTransport = errors.New("transport failure")

	// ErrConflict means the server refused an update (rename, password change).
	ErrConflict = errors.New("conflict on update")

	// ErrForbidden is returned for admin views without the admin flag.
	ErrForbidden = errors.New("forbidden")

	// Composer flow control.
	ErrBusy         = errors.New("a message is already being sent")
	ErrEmptyMessage = errors.New("message is empty")
)
