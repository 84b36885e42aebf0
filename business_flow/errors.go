// Package businessflow contains the core business logic and use cases for link management and redirects
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Link-related errors
	ErrLinkNotFound      = errors.New("link not found")
	ErrLinkInactive      = errors.New("link is inactive")
	ErrLinkExpired       = errors.New("link has expired")
	ErrShortCodeConflict = errors.New("short code already exists")

	// Creation/update validation errors
	ErrCustomCodeInvalid       = errors.New("custom code must be 3 to 10 alphanumeric characters")
	ErrCustomCodeTaken         = errors.New("custom code is already taken")
	ErrExpiryInPast            = errors.New("expiration time must be in the future")
	ErrNoFieldsToUpdate        = errors.New("at least one field must be provided for update")
	ErrCodeGenerationExhausted = errors.New("unable to generate a unique short code")

	// Analytics errors
	ErrInvalidAnalyticsRange = errors.New("analytics range must be between 1 and 365 days")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsLinkNotFound(err error) bool {
	return errors.Is(err, ErrLinkNotFound)
}

func IsLinkInactive(err error) bool {
	return errors.Is(err, ErrLinkInactive)
}

func IsLinkExpired(err error) bool {
	return errors.Is(err, ErrLinkExpired)
}

func IsShortCodeConflict(err error) bool {
	return errors.Is(err, ErrShortCodeConflict)
}

func IsCustomCodeInvalid(err error) bool {
	return errors.Is(err, ErrCustomCodeInvalid)
}

func IsCustomCodeTaken(err error) bool {
	return errors.Is(err, ErrCustomCodeTaken)
}

func IsExpiryInPast(err error) bool {
	return errors.Is(err, ErrExpiryInPast)
}

func IsNoFieldsToUpdate(err error) bool {
	return errors.Is(err, ErrNoFieldsToUpdate)
}

func IsCodeGenerationExhausted(err error) bool {
	return errors.Is(err, ErrCodeGenerationExhausted)
}

func IsInvalidAnalyticsRange(err error) bool {
	return errors.Is(err, ErrInvalidAnalyticsRange)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
