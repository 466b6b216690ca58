package errors

import (
	"fmt"
)

// Error codes, unique within a category
const (
	CodeAllocationFailed = "001"
	CodeEmptyClusterID   = "002"
	CodeEmptyNodeAddress = "003"
	CodeTeardownFailed   = "004"

	CodeClusterSetup = "001"
	CodeAdminRequest = "002"
	CodeAdminTimeout = "003"

	CodeCloneFailed = "001"
	CodeWorkspace   = "002"

	CodeBuildFailed = "001"

	CodePropertiesIncomplete = "001"
	CodePropertiesWrite      = "002"
	CodePropertiesRelocate   = "003"

	CodeValidationInput  = "001"
	CodeValidationConfig = "002"

	CodeConfigLoad = "001"

	CodeCommandStart = "001"
)

// NewAllocationFailedError creates an error for a cluster that could not be allocated
func NewAllocationFailedError(version string, originalErr error) *HarnessError {
	return NewHarnessError(ErrorCategoryAllocator, CodeAllocationFailed,
		fmt.Sprintf("Unable to allocate a cluster for server version '%s'", version),
		"Cluster allocation").
		WithContext("version", version).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Verify the allocator binary is on PATH and authenticated",
			"Check that the requested server version exists",
			"Run the allocator manually with the same arguments to see its output",
		)
}

// NewEmptyClusterIDError creates an error for an allocator that printed no identifier
func NewEmptyClusterIDError(version string) *HarnessError {
	return NewHarnessError(ErrorCategoryAllocator, CodeEmptyClusterID,
		fmt.Sprintf("Allocator returned no cluster identifier for version '%s'", version),
		"Cluster allocation").
		WithContext("version", version).
		WithTroubleshooting(
			"The allocator must print the cluster identifier on its first output line",
			"Check for quota or capacity messages in the allocator output",
		)
}

// NewEmptyNodeAddressError creates an error for a cluster without a reachable node
func NewEmptyNodeAddressError(clusterID string, originalErr error) *HarnessError {
	return NewHarnessError(ErrorCategoryAllocator, CodeEmptyNodeAddress,
		fmt.Sprintf("Unable to resolve a node address for cluster '%s'", clusterID),
		"Node address lookup").
		WithContext("cluster", clusterID).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check that the cluster is still alive in the allocator",
			"Run '<allocator> ips <cluster>' manually",
		)
}

// NewTeardownError creates an error for a cluster that could not be removed
func NewTeardownError(clusterID string, originalErr error) *HarnessError {
	return NewHarnessError(ErrorCategoryAllocator, CodeTeardownFailed,
		fmt.Sprintf("Failed to remove cluster '%s'", clusterID),
		"Cluster teardown").
		WithContext("cluster", clusterID).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Remove the cluster manually to release its resources",
		)
}

// NewClusterSetupError creates an error for a failed service/bucket setup
func NewClusterSetupError(clusterID, bucket string, originalErr error) *HarnessError {
	return NewHarnessError(ErrorCategoryCluster, CodeClusterSetup,
		fmt.Sprintf("Failed to set up services and bucket '%s' on cluster '%s'", bucket, clusterID),
		"Cluster setup").
		WithContext("cluster", clusterID).
		WithContext("bucket", bucket).
		WithOriginalError(originalErr)
}

// NewAdminRequestError creates an error for a failed administrative REST call
func NewAdminRequestError(url string, status int, originalErr error) *HarnessError {
	return NewHarnessError(ErrorCategoryCluster, CodeAdminRequest,
		fmt.Sprintf("Administrative request to %s failed", url),
		"Cluster REST configuration").
		WithContext("url", url).
		WithContext("status", status).
		WithOriginalError(originalErr)
}

// NewCloneFailedError creates an error for a repository that could not be cloned
func NewCloneFailedError(url, dir string, originalErr error) *HarnessError {
	return NewHarnessError(ErrorCategoryVCS, CodeCloneFailed,
		fmt.Sprintf("Failed to clone '%s'", url),
		"Repository checkout").
		WithContext("url", url).
		WithContext("dir", dir).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check network access to the repository host",
			"Make sure the target directory does not already exist",
		)
}

// NewWorkspaceError creates an error for a checkout directory that could not be prepared
func NewWorkspaceError(dir string, originalErr error) *HarnessError {
	return NewHarnessError(ErrorCategoryVCS, CodeWorkspace,
		fmt.Sprintf("Unable to prepare workspace '%s'", dir),
		"Workspace preparation").
		WithContext("dir", dir).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check permissions on the work directory",
		)
}

// NewBuildFailedError creates an error for a build that exited non-zero
func NewBuildFailedError(repository string, exitCode int) *HarnessError {
	return NewHarnessError(ErrorCategoryBuild, CodeBuildFailed,
		fmt.Sprintf("Build of '%s' failed with exit code %d", repository, exitCode),
		"Repository build").
		WithContext("repository", repository).
		WithContext("exit_code", exitCode)
}

// NewBuildFailuresError summarises the failed builds of a whole run
func NewBuildFailuresError(failed []string) *HarnessError {
	return NewHarnessError(ErrorCategoryBuild, CodeBuildFailed,
		fmt.Sprintf("%d build(s) failed", len(failed)),
		"Integration run").
		WithContext("failed", failed).
		WithTroubleshooting(
			"Scroll up to the Maven output of the failed builds",
			"Run without --fail-on-build-error to only report build failures",
		)
}

// NewPropertiesIncompleteError creates an error for a properties record with missing values
func NewPropertiesIncompleteError(keys []string) *HarnessError {
	return NewHarnessError(ErrorCategoryProperties, CodePropertiesIncomplete,
		"Test properties are incomplete",
		"Properties rendering").
		WithContext("missing", keys)
}

// NewPropertiesWriteError creates an error for a properties file that could not be written
func NewPropertiesWriteError(path string, originalErr error) *HarnessError {
	return NewHarnessError(ErrorCategoryProperties, CodePropertiesWrite,
		fmt.Sprintf("Unable to write properties file '%s'", path),
		"Properties rendering").
		WithContext("path", path).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check that the working directory is writable",
		)
}

// NewPropertiesRelocateError creates an error for a properties file that could not be moved into place
func NewPropertiesRelocateError(from, to string, originalErr error) *HarnessError {
	return NewHarnessError(ErrorCategoryProperties, CodePropertiesRelocate,
		"Unable to replace core test properties",
		"Properties relocation").
		WithContext("from", from).
		WithContext("to", to).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check that the repository was cloned and contains the test resources directory",
		)
}

// NewValidationFailedError creates an error for input validation failures
func NewValidationFailedError(field, value, operation string) *HarnessError {
	return NewValidationError(CodeValidationInput,
		fmt.Sprintf("Invalid value for %s: '%s'", field, value),
		operation).
		WithContext("field", field).
		WithContext("value", value).
		WithTroubleshooting(
			"Check the command syntax and parameter values",
			"Use --help to see available options and examples",
		)
}
