package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTextLength bounds thought and reaction bodies.
const MaxTextLength = 280

// ValidationError reports a payload field that violates the model constraints.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func required(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &ValidationError{Field: field, Message: "is required"}
	}
	return trimmed, nil
}

func requiredText(field, value string) (string, error) {
	trimmed, err := required(field, value)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(trimmed) > MaxTextLength {
		return "", &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", MaxTextLength)}
	}
	return trimmed, nil
}

// Version returns a pointer to n, for populating the internal version field.
func Version(n int64) *int64 {
	return &n
}
