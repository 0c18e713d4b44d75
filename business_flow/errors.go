// Package businessflow contains the core business logic of the personnel directory
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Personnel errors
	ErrPersonnelNotFound       = errors.New("personnel not found")
	ErrDuplicatePersonnelCode  = errors.New("personnel code already exists")
	ErrDuplicateVoipNumber     = errors.New("voip number already exists")
	ErrPersonnelCodeImmutable  = errors.New("personnel code cannot be changed")
	ErrPersonnelUpdateRequired = errors.New("at least one field must be provided for update")
	ErrNoPersonnelCodes        = errors.New("no personnel codes provided")

	// Import errors
	ErrImportHeaderMissing  = errors.New("import file has no header or data rows")
	ErrImportColumnsMissing = errors.New("required import columns missing")
	ErrInvalidImportFile    = errors.New("invalid import file")

	// Paging
	ErrInvalidPage     = errors.New("invalid page")
	ErrInvalidPageSize = errors.New("invalid page size")

	// Settings errors
	ErrInvalidSettings = errors.New("invalid settings")
	ErrInvalidImage    = errors.New("invalid image")
)

// BusinessError carries a machine code and a user-facing message
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

// ValidationError reports a rejected input field; Message is user-facing
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// AsBusinessError unwraps err into a *BusinessError if it is one
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPersonnelNotFound(err error) bool {
	return errors.Is(err, ErrPersonnelNotFound)
}

func IsDuplicatePersonnelCode(err error) bool {
	return errors.Is(err, ErrDuplicatePersonnelCode)
}

func IsDuplicateVoipNumber(err error) bool {
	return errors.Is(err, ErrDuplicateVoipNumber)
}

// IsDuplicate reports either unique-key collision
func IsDuplicate(err error) bool {
	return IsDuplicatePersonnelCode(err) || IsDuplicateVoipNumber(err)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
