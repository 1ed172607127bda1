package kernel

import (
	"fmt"
	"strings"
)

// InitializationError reports dependencies that were not provided
type InitializationError struct {
	Message string
	Missing []string
}

// NewInitializationError creates an InitializationError
func NewInitializationError(message string, missing []string) *InitializationError {
	return &InitializationError{Message: message, Missing: missing}
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
}
