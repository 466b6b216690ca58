package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// As returns the first HarnessError in err's chain
func As(err error) (*HarnessError, bool) {
	var hErr *HarnessError
	if stderrors.As(err, &hErr) {
		return hErr, true
	}
	return nil, false
}

// DisplayErrorSummary provides a brief summary of the error for logs
func DisplayErrorSummary(err error) string {
	if hErr, ok := As(err); ok {
		return fmt.Sprintf("%s-%s: %s", hErr.Category, hErr.Code, hErr.Message)
	}

	errStr := err.Error()
	if len(errStr) > 100 {
		return errStr[:97] + "..."
	}
	return errStr
}

// FormatForCLI formats an error for command-line display with proper spacing
func FormatForCLI(err error) string {
	hErr, ok := As(err)
	if !ok {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nError [%s-%s]\n", hErr.Category, hErr.Code))
	sb.WriteString(fmt.Sprintf("  %s\n", hErr.Message))

	if hErr.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nFailed Operation: %s\n", hErr.Operation))
	}

	if len(hErr.Context) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, key := range hErr.contextKeys() {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, hErr.Context[key]))
		}
	}

	if len(hErr.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range hErr.Troubleshooting {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	if hErr.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", hErr.OriginalError))
	}

	return sb.String()
}

// IsUserError determines if an error is due to user input/configuration
func IsUserError(err error) bool {
	if hErr, ok := As(err); ok {
		return hErr.Category == ErrorCategoryValidation ||
			hErr.Category == ErrorCategoryConfiguration
	}
	return false
}

// GetErrorCode extracts the error code for reporting
func GetErrorCode(err error) string {
	if hErr, ok := As(err); ok {
		return fmt.Sprintf("%s-%s", hErr.Category, hErr.Code)
	}
	return "UNKNOWN"
}
