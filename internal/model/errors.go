package model

import "strconv"

// ValidationError reports a single malformed input field.  Handlers turn it
// into a 400 response carrying Field and Message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

func indexed(field string, i int) string { return field + "[" + strconv.Itoa(i) + "]" }
