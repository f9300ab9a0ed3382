package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrTooLarge matches a ValidationError with reason TooLarge.
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType matches a ValidationError with reason UnsupportedType.
	ErrUnsupportedType = errors.New("file type not supported")
	// ErrDecode matches every DecodeError.
	ErrDecode = errors.New("decode failed")
	// ErrProcessing matches every ProcessingError.
	ErrProcessing = errors.New("processing failed")
	// ErrPreview matches every PreviewError.
	ErrPreview = errors.New("preview failed")
)

// ValidationReason tells why a file was rejected before any transform ran.
type ValidationReason string

const (
	TooLarge        ValidationReason = "too_large"
	UnsupportedType ValidationReason = "unsupported_type"
)

// ValidationError is returned by the validation gates. Message is meant for the user
// and is already localized.
type ValidationError struct {
	Reason  ValidationReason
	Message string
	Detail  string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}

	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Reason, e.Detail)
}

// Is matches ErrValidation and the sentinel of the error's reason.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrTooLarge:
		return e.Reason == TooLarge
	case ErrUnsupportedType:
		return e.Reason == UnsupportedType
	default:
		return false
	}
}

// DecodeError is returned when bytes are not a valid raster of a supported codec.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ProcessingError wraps any failure inside a normalize or rotate invocation.
type ProcessingError struct {
	Cause error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", ErrProcessing, e.Cause)
}

func (e *ProcessingError) Unwrap() error { return e.Cause }

func (e *ProcessingError) Is(target error) bool { return target == ErrProcessing }

// PreviewError is returned when no preview can be produced.
type PreviewError struct {
	Err error
}

func (e *PreviewError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPreview, e.Err)
}

func (e *PreviewError) Unwrap() error { return e.Err }

func (e *PreviewError) Is(target error) bool { return target == ErrPreview }
