package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`

	// Resource is the collection or relation the operation targeted.
	Resource string `json:"resource,omitempty"`
	// ID identifies the record (or parent record for cascades).
	ID string `json:"id,omitempty"`
	// Step names the cascade step that failed.
	Step string `json:"step,omitempty"`
	// Inconsistent is set when a cascade left dependent records deleted
	// but the parent record in place.
	Inconsistent bool  `json:"inconsistent,omitempty"`
	Err          error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so callers can write
// errors.Is(err, apperrors.ErrDuplicate).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// HTTPStatus maps the error code to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrDuplicateAssignment:
		return http.StatusConflict
	case ErrIntegrity:
		return http.StatusUnprocessableEntity
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrDuplicateAssignment
	ErrQuery
	ErrCreate
	ErrUpdate
	ErrCascadeDelete
	ErrIntegrity
	ErrDelete
	ErrRateLimited
	ErrTimeout
)

// Sentinels for errors.Is comparisons.
var (
	NotFoundKind      = &AppError{Code: ErrNotFound}
	DuplicateKind     = &AppError{Code: ErrDuplicateAssignment}
	QueryKind         = &AppError{Code: ErrQuery}
	CreateKind        = &AppError{Code: ErrCreate}
	UpdateKind        = &AppError{Code: ErrUpdate}
	CascadeDeleteKind = &AppError{Code: ErrCascadeDelete}
	IntegrityKind     = &AppError{Code: ErrIntegrity}
	BadRequestKind    = &AppError{Code: ErrBadRequest}
	DeleteKind        = &AppError{Code: ErrDelete}
)

// Error constructors
func NewNotFound(resource, id string) *AppError {
	return &AppError{
		Code:     ErrNotFound,
		Message:  fmt.Sprintf("%s %s not found", resource, id),
		Resource: resource,
		ID:       id,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewDuplicateAssignment reports a create that would repeat an existing pair.
func NewDuplicateAssignment(relation string, keys ...string) *AppError {
	return &AppError{
		Code:     ErrDuplicateAssignment,
		Message:  fmt.Sprintf("%s assignment already exists for (%s)", relation, strings.Join(keys, ", ")),
		Resource: relation,
	}
}

// NewQuery wraps a failed read. filters is a human readable description.
func NewQuery(collection, filters string, err error) *AppError {
	msg := fmt.Sprintf("failed to query %s", collection)
	if filters != "" {
		msg = fmt.Sprintf("%s where %s", msg, filters)
	}
	return &AppError{
		Code:     ErrQuery,
		Message:  msg,
		Resource: collection,
		Err:      err,
	}
}

func NewCreate(collection string, err error) *AppError {
	return &AppError{
		Code:     ErrCreate,
		Message:  fmt.Sprintf("failed to create %s record", collection),
		Resource: collection,
		Err:      err,
	}
}

func NewUpdate(collection, id string, err error) *AppError {
	return &AppError{
		Code:     ErrUpdate,
		Message:  fmt.Sprintf("failed to update %s %s", collection, id),
		Resource: collection,
		ID:       id,
		Err:      err,
	}
}

func NewDelete(collection, id string, err error) *AppError {
	return &AppError{
		Code:     ErrDelete,
		Message:  fmt.Sprintf("failed to delete %s %s", collection, id),
		Resource: collection,
		ID:       id,
		Err:      err,
	}
}

// NewCascadeDelete reports an aborted cascade for the parent entity.
func NewCascadeDelete(parent, parentID, step string, err error) *AppError {
	return &AppError{
		Code:     ErrCascadeDelete,
		Message:  fmt.Sprintf("cascade delete of %s %s failed at step %q", parent, parentID, step),
		Resource: parent,
		ID:       parentID,
		Step:     step,
		Err:      err,
	}
}

func NewIntegrity(resource, id, message string) *AppError {
	return &AppError{
		Code:     ErrIntegrity,
		Message:  fmt.Sprintf("%s %s: %s", resource, id, message),
		Resource: resource,
		ID:       id,
	}
}

// Common errors
func NotFound(resource, id string) *AppError {
	return NewNotFound(resource, id)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// As extracts the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
