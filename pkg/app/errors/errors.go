// Package errors contains helper functions and types to work with errors
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError Category = iota
	// CategoryDataError The client sent invalid data in the request
	CategoryDataError
	// CategoryUnauthorized The client is not authenticated
	CategoryUnauthorized
	// CategoryForbidden The client is not allowed to access the resource
	CategoryForbidden
	// CategoryResourceNotFound The requested resource does not exist
	CategoryResourceNotFound
	// CategoryDataConflict The request conflicts with existing data
	CategoryDataConflict
	// CategoryPreconditionFailed A business precondition rejected the request
	CategoryPreconditionFailed
	// CategoryRateLimited The request must wait before being retried
	CategoryRateLimited
	// CategoryDependencyFailure A dependent service is failing
	CategoryDependencyFailure
)

func (c Category) String() string {
	switch c {
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryUnauthorized:
		return "CategoryUnauthorized"
	case CategoryForbidden:
		return "CategoryForbidden"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryDataConflict:
		return "CategoryDataConflict"
	case CategoryPreconditionFailed:
		return "CategoryPreconditionFailed"
	case CategoryRateLimited:
		return "CategoryRateLimited"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError represents service specific type that is used all over the services.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// GeneralError returns a general service error; the message sent to the
// caller is "Internal Server Error" while the wrapped error is logged.
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "Internal Server Error",
		Err:      err,
	}
}

// ResourceNotFoundError returns an error with category ResourceNotFound
func ResourceNotFoundError(err error, message string) error {
	if err == nil {
		err = errors.New("resource not found:" + message)
	}
	return &ServiceError{
		Category: CategoryResourceNotFound,
		Message:  message,
		Err:      err,
	}
}

// BadRequestError returns an error with category DataError
func BadRequestError(err error, message string) error {
	if err == nil {
		err = errors.New("bad request:" + message)
	}
	return &ServiceError{
		Category: CategoryDataError,
		Message:  message,
		Err:      err,
	}
}

// ConflictError returns an error with category DataConflict
func ConflictError(err error, message string) error {
	if err == nil {
		err = errors.New("conflict")
	}
	return &ServiceError{
		Category: CategoryDataConflict,
		Message:  message,
		Err:      err,
	}
}

// PreconditionError returns an error with category PreconditionFailed
func PreconditionError(err error, message string) error {
	if err == nil {
		err = errors.New("precondition failed:" + message)
	}
	return &ServiceError{
		Category: CategoryPreconditionFailed,
		Message:  message,
		Err:      err,
	}
}

// RateLimitedError returns an error with category RateLimited
func RateLimitedError(err error, message string) error {
	if err == nil {
		err = errors.New("rate limited:" + message)
	}
	return &ServiceError{
		Category: CategoryRateLimited,
		Message:  message,
		Err:      err,
	}
}

// UnAuthorizedError returns an error with category Unauthorized
func UnAuthorizedError(err error, message string) error {
	if err == nil {
		err = errors.New("unauthorized")
	}
	return &ServiceError{
		Category: CategoryUnauthorized,
		Message:  message,
		Err:      err,
	}
}

// ForbiddenError returns an error with category Forbidden
func ForbiddenError(err error, message string) error {
	if err == nil {
		err = errors.New("request forbidden")
	}
	return &ServiceError{
		Category: CategoryForbidden,
		Message:  message,
		Err:      err,
	}
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryDataConflict:
		return http.StatusConflict
	case CategoryPreconditionFailed:
		return http.StatusUnprocessableEntity
	case CategoryRateLimited:
		return http.StatusTooManyRequests
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
