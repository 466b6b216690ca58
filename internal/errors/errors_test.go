package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarnessError_ErrorIncludesSortedContext(t *testing.T) {
	err := NewCloneFailedError("http://github.com/couchbase/couchbase-jvm-core", "/work/6.0.0/couchbase-jvm-core", stderrors.New("exit status 128"))

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "VCS-001: Failed to clone"))
	assert.Less(t, strings.Index(msg, "dir:"), strings.Index(msg, "url:"), "context keys should be sorted")
	assert.Contains(t, msg, "Underlying error: exit status 128")
}

func TestHarnessError_UnwrapAndAs(t *testing.T) {
	root := stderrors.New("connection refused")
	wrapped := fmt.Errorf("step failed: %w", NewAdminRequestError("http://10.0.0.5:8091/pools/default", 0, root))

	hErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorCategoryCluster, hErr.Category)
	assert.ErrorIs(t, wrapped, root)
}

func TestFormatForCLI(t *testing.T) {
	err := NewValidationFailedError("cluster_versions", "6.0 0", "Parameter validation")

	out := FormatForCLI(err)
	assert.Contains(t, out, "Error [VALIDATION-001]")
	assert.Contains(t, out, "Failed Operation: Parameter validation")
	assert.Contains(t, out, "How to resolve:")
	assert.Contains(t, out, "field: cluster_versions")

	assert.Equal(t, "\nError: boom\n", FormatForCLI(stderrors.New("boom")))
}

func TestErrorHelpers(t *testing.T) {
	assert.Equal(t, "PROPERTIES-003", GetErrorCode(NewPropertiesRelocateError("a", "b", nil)))
	assert.Equal(t, "UNKNOWN", GetErrorCode(stderrors.New("x")))

	assert.True(t, IsUserError(NewValidationFailedError("f", "v", "op")))
	assert.True(t, IsUserError(NewConfigurationError(CodeConfigLoad, "bad", "op")))
	assert.False(t, IsUserError(NewBuildFailedError("r", 2)))

	assert.Equal(t, "BUILD-001: Build of 'r' failed with exit code 2", DisplayErrorSummary(NewBuildFailedError("r", 2)))
	long := strings.Repeat("a", 150)
	assert.Len(t, DisplayErrorSummary(stderrors.New(long)), 100)
}
