package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents the category of error
type ErrorCategory string

const (
	// ErrorCategoryAllocator represents failures of the cluster allocation tool
	ErrorCategoryAllocator ErrorCategory = "ALLOCATOR"
	// ErrorCategoryCluster represents failures talking to an allocated cluster
	ErrorCategoryCluster ErrorCategory = "CLUSTER"
	// ErrorCategoryVCS represents repository checkout failures
	ErrorCategoryVCS ErrorCategory = "VCS"
	// ErrorCategoryBuild represents build tool failures
	ErrorCategoryBuild ErrorCategory = "BUILD"
	// ErrorCategoryProperties represents properties file failures
	ErrorCategoryProperties ErrorCategory = "PROPERTIES"
	// ErrorCategoryValidation represents validation errors
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
	// ErrorCategoryConfiguration represents configuration errors
	ErrorCategoryConfiguration ErrorCategory = "CONFIGURATION"
	// ErrorCategoryCommand represents failures to run an external command at all
	ErrorCategoryCommand ErrorCategory = "COMMAND"
)

// HarnessError represents a structured error with context and troubleshooting information
type HarnessError struct {
	Category        ErrorCategory
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (e *HarnessError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message))

	if e.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nOperation: %s", e.Operation))
	}

	if len(e.Context) > 0 {
		sb.WriteString("\nContext:")
		for _, key := range e.contextKeys() {
			sb.WriteString(fmt.Sprintf("\n  %s: %v", key, e.Context[key]))
		}
	}

	if len(e.Troubleshooting) > 0 {
		sb.WriteString("\nTroubleshooting:")
		for i, step := range e.Troubleshooting {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nUnderlying error: %v", e.OriginalError))
	}

	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (e *HarnessError) Unwrap() error {
	return e.OriginalError
}

func (e *HarnessError) contextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewHarnessError creates a new harness error with the specified parameters
func NewHarnessError(category ErrorCategory, code, message, operation string) *HarnessError {
	return &HarnessError{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the error
func (e *HarnessError) WithContext(key string, value interface{}) *HarnessError {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *HarnessError) WithTroubleshooting(steps ...string) *HarnessError {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error to the harness error
func (e *HarnessError) WithOriginalError(err error) *HarnessError {
	e.OriginalError = err
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(code, message, operation string) *HarnessError {
	return NewHarnessError(ErrorCategoryValidation, code, message, operation)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(code, message, operation string) *HarnessError {
	return NewHarnessError(ErrorCategoryConfiguration, code, message, operation)
}
