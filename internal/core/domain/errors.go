package domain

import "fmt"

// ValidationError marks a domain precondition failure. Callers must reject
// the request before any persistence happens.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string { return e.msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ErrShareSum reports revenue shares that do not sum to 100 within tolerance.
type ErrShareSum struct {
	Sum float64
}

func (e ErrShareSum) Error() string {
	return fmt.Sprintf("revenue shares must sum to 100 (±0.01), got %.4f", e.Sum)
}
