package validation

import (
	"fmt"
	"strings"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error collects field-keyed failures from one validation pass.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Add(field, rule, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: message})
}

func (e *Error) AddField(fe FieldError) {
	e.Fields = append(e.Fields, fe)
}

func (e *Error) Has(field string) bool {
	_, ok := e.Field(field)
	return ok
}

func (e *Error) Field(name string) (FieldError, bool) {
	if e == nil {
		return FieldError{}, false
	}

	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}

	return FieldError{}, false
}

// Err returns nil when nothing was collected, so callers can write
// `return verr.Err()` without a typed-nil surprise.
func (e *Error) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}

	return e
}

func Single(field, rule, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}
