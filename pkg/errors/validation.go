package errors

import "fmt"

type ValidationError struct {
	*baseError
	field    string
	provided any
	expected any
}

func NewValidationError(err error, code ErrorCode, msg string) *ValidationError {
	return &ValidationError{baseError: NewBaseError(err, code, msg)}
}

// NewRequiredFieldError reports a missing mandatory input.
func NewRequiredFieldError(field string) *ValidationError {
	return NewValidationError(
		nil, ErrValidationRequiredField, fmt.Sprintf("%s is required", field),
	).WithField(field)
}

func (ve *ValidationError) WithCode(code ErrorCode) *ValidationError {
	ve.baseError.WithCode(code)
	return ve
}

func (ve *ValidationError) WithDetail(key string, value any) *ValidationError {
	ve.baseError.WithDetail(key, value)
	return ve
}

func (ve *ValidationError) WithField(field string) *ValidationError {
	ve.field = field
	return ve
}

func (ve *ValidationError) WithProvided(value any) *ValidationError {
	ve.provided = value
	return ve
}

func (ve *ValidationError) WithExpected(value any) *ValidationError {
	ve.expected = value
	return ve
}

func (ve *ValidationError) Field() string {
	return ve.field
}

func (ve *ValidationError) Provided() any {
	return ve.provided
}

func (ve *ValidationError) Expected() any {
	return ve.expected
}
