package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Version strings become directory names, so path separators are rejected.
var versionPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._+-]*$`)

// Couchbase bucket names: letters, digits, '.', '_', '-', '%', at most 100 characters
var bucketPattern = regexp.MustCompile(`^[A-Za-z0-9._%-]{1,100}$`)

// ValidateVersion validates a single server version
func ValidateVersion(version string) error {
	if strings.TrimSpace(version) == "" {
		return fmt.Errorf("cluster version cannot be empty")
	}
	if !versionPattern.MatchString(version) {
		return fmt.Errorf("invalid cluster version %q: only letters, digits, '.', '_', '+' and '-' are allowed", version)
	}
	return nil
}

// ValidateVersions validates the requested versions. Repeats are allowed.
func ValidateVersions(versions []string) error {
	if len(versions) == 0 {
		return fmt.Errorf("at least one cluster version is required")
	}
	for _, v := range versions {
		if err := ValidateVersion(v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBucketName validates a bucket name
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return fmt.Errorf("bucket name cannot be empty")
	}
	if !bucketPattern.MatchString(bucket) {
		return fmt.Errorf("invalid bucket name %q", bucket)
	}
	return nil
}

// ValidatePort validates a TCP port number
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// ValidateQuotas checks that the bucket fits into the node memory quota.
func ValidateQuotas(memoryQuotaMB, bucketQuotaMB int) error {
	if memoryQuotaMB < 256 {
		return fmt.Errorf("memory quota must be at least 256 MB, got %d", memoryQuotaMB)
	}
	if bucketQuotaMB < 100 {
		return fmt.Errorf("bucket RAM quota must be at least 100 MB, got %d", bucketQuotaMB)
	}
	if bucketQuotaMB > memoryQuotaMB {
		return fmt.Errorf("bucket RAM quota (%d MB) exceeds the memory quota (%d MB)", bucketQuotaMB, memoryQuotaMB)
	}
	return nil
}

// ValidateRepositoryURL accepts http(s), ssh, git and file URLs as well as scp-style git remotes.
func ValidateRepositoryURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("repository URL cannot be empty")
	}
	if strings.HasPrefix(raw, "git@") && strings.Contains(raw, ":") {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid repository URL %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ssh", "git", "file":
	default:
		return fmt.Errorf("unsupported repository URL scheme %q in %q", u.Scheme, raw)
	}
	if u.Scheme != "file" && u.Host == "" {
		return fmt.Errorf("repository URL %q has no host", raw)
	}
	return nil
}

// ValidateName validates a checkout directory name
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid repository name %q", name)
	}
	return nil
}
