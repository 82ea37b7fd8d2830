package response

import (
	"errors"
	"net/http"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST     ErrCode = "REQUEST_FAILED"
	BAD_REQUEST        ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED  ErrCode = "VALIDATION_FAILED"
	NOT_FOUND          ErrCode = "NOT_FOUND"
	CONFLICT           ErrCode = "CONFLICT"
	SLOT_NOT_AVAILABLE ErrCode = "SLOT_NOT_AVAILABLE"
	INVALID_TRANSITION ErrCode = "INVALID_TRANSITION"
	STORE_UNAVAILABLE  ErrCode = "STORE_UNAVAILABLE"
	UNAUTHENTICATED    ErrCode = "UNAUTHENTICATED"
	FORBIDDEN          ErrCode = "FORBIDDEN"
	RATE_LIMITED       ErrCode = "RATE_LIMITED"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("resource not found")
	ErrLocked            = errors.New("resource is locked")
	ErrConflict          = errors.New("conflict")
	ErrSlotNotAvailable  = errors.New("slot is not available")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrForbidden         = errors.New("forbidden")
)

// ValidationError is a user-facing input problem. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return "validation failed: " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// FromError maps an operation error to its HTTP status and envelope.
func FromError(err error) (int, Response) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, Error(string(VALIDATION_FAILED), verr.Error())
	case errors.Is(err, ErrSlotNotAvailable):
		return http.StatusConflict, Error(string(SLOT_NOT_AVAILABLE), "slot is not available")
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict, Error(string(INVALID_TRANSITION), "status transition is not allowed")
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, Error(string(CONFLICT), "conflict")
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, Error(string(NOT_FOUND), "resource not found")
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, Error(string(FORBIDDEN), "action not allowed")
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable, Error(string(STORE_UNAVAILABLE), "store unavailable, try again later")
	default:
		return http.StatusInternalServerError, Error(string(FAILED_REQUEST), "request failed")
	}
}
