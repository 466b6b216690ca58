package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"Release", "6.0.0", false},
		{"Build number", "6.5.0-4960", false},
		{"Two components", "5.5", false},
		{"Empty", "", true},
		{"Whitespace", "  ", true},
		{"Path traversal", "../6.0.0", true},
		{"Slash", "6.0/0", true},
		{"Leading dash", "-6.0.0", true},
		{"Shell metacharacters", "6.0.0;rm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVersion(tt.version)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateVersions(t *testing.T) {
	assert.NoError(t, ValidateVersions([]string{"5.5.0", "6.0.0"}))
	assert.NoError(t, ValidateVersions([]string{"6.0.0", "6.0.0"}), "repeats are allowed")
	assert.Error(t, ValidateVersions(nil))
	assert.Error(t, ValidateVersions([]string{"6.0.0", ""}))
}

func TestValidateBucketName(t *testing.T) {
	assert.NoError(t, ValidateBucketName("default"))
	assert.NoError(t, ValidateBucketName("travel-sample"))
	assert.Error(t, ValidateBucketName(""))
	assert.Error(t, ValidateBucketName("has space"))
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort(8091))
	assert.Error(t, ValidatePort(0))
	assert.Error(t, ValidatePort(70000))
}

func TestValidateQuotas(t *testing.T) {
	tests := []struct {
		name    string
		memory  int
		bucket  int
		wantErr bool
	}{
		{"Defaults", 2048, 100, false},
		{"Bucket uses everything", 1024, 1024, false},
		{"Bucket too large", 512, 1024, true},
		{"Bucket too small", 2048, 50, true},
		{"Memory too small", 128, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuotas(tt.memory, tt.bucket)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRepositoryURL(t *testing.T) {
	valid := []string{
		"http://github.com/couchbase/couchbase-jvm-core",
		"https://github.com/couchbase/couchbase-java-client.git",
		"git@github.com:couchbase/couchbase-jvm-core.git",
		"file:///srv/git/core",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateRepositoryURL(u), u)
	}

	invalid := []string{"", "ftp://example.com/repo", "https:///nohost", "couchbase-jvm-core"}
	for _, u := range invalid {
		assert.Error(t, ValidateRepositoryURL(u), u)
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("couchbase-jvm-core"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName(".."))
	assert.Error(t, ValidateName("a/b"))
}
