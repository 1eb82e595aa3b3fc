package shared

import (
	"errors"
	"net/http"
)

// AppError carries an HTTP status alongside the wrapped cause so the HTTP
// layer can map business failures without inspecting error strings.
type AppError struct {
	StatusCode int
	Message    string
	Err        error
	Data       interface{}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func NewValidationError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message)
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message)
}

func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, err, message)
}

func NewUnauthorizedError(err error, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, err, message)
}

func NewForbiddenError(err error, message string) *AppError {
	return NewAppError(http.StatusForbidden, err, message)
}

func NewConflictError(err error, message string) *AppError {
	return NewAppError(http.StatusConflict, err, message)
}

func NewInternalError(err error, message string) *AppError {
	return NewAppError(http.StatusInternalServerError, err, message)
}

// GetAppError unwraps err looking for an AppError anywhere in the chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Business-rule sentinels for the registration lifecycle. Handlers surface
// these as 400s through the AppError wrappers below.
var (
	ErrDeadlineExpired = errors.New("registration deadline has passed")
	ErrNotApproved     = errors.New("registration must be approved first")
	ErrAlreadyAttended = errors.New("attendance already marked")
)

func NewDeadlineExpiredError() *AppError {
	return NewBadRequestError(ErrDeadlineExpired, "Registration deadline has passed for this event")
}

func NewNotApprovedError() *AppError {
	return NewBadRequestError(ErrNotApproved, "Registration must be approved first")
}

func NewAlreadyAttendedError() *AppError {
	return NewBadRequestError(ErrAlreadyAttended, "Attendance already marked")
}
