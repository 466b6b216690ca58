// Package properties renders the integration properties consumed by the
// core library's test suite.
package properties

import (
	"strings"

	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
)

const (
	KeySeedNode      = "seedNode"
	KeyBucket        = "bucket"
	KeyUsername      = "username"
	KeyPassword      = "password"
	KeyAdminUser     = "adminUser"
	KeyAdminPassword = "adminPassword"
	KeyCI            = "ci"
	KeyMockEnabled   = "mock.enabled"

	DefaultAdminUser     = "Administrator"
	DefaultAdminPassword = "password"

	// MockPlaceholder is written verbatim; the test runner resolves it.
	MockPlaceholder = "${useMock}"
)

// Entry is a single key=value pair.
type Entry struct {
	Key   string
	Value string
}

// Record is an ordered set of properties.
type Record struct {
	entries []Entry
}

// NewCoreTestProperties returns the eight properties the core test suite reads.
// The bucket name doubles as the username.
func NewCoreTestProperties(seedNode, bucket, password string) *Record {
	return &Record{entries: []Entry{
		{KeySeedNode, seedNode},
		{KeyBucket, bucket},
		{KeyUsername, bucket},
		{KeyPassword, password},
		{KeyAdminUser, DefaultAdminUser},
		{KeyAdminPassword, DefaultAdminPassword},
		{KeyCI, "true"},
		{KeyMockEnabled, MockPlaceholder},
	}}
}

// Entries returns a copy of the entries in render order.
func (r *Record) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Validate rejects records with empty values.
func (r *Record) Validate() error {
	var missing []string
	for _, e := range r.entries {
		if strings.TrimSpace(e.Value) == "" {
			missing = append(missing, e.Key)
		}
	}
	if len(missing) > 0 {
		return harnesserrors.NewPropertiesIncompleteError(missing)
	}
	return nil
}

// Render returns one "key=value" line per entry. Values are not escaped.
func (r *Record) Render() string {
	var sb strings.Builder
	for _, e := range r.entries {
		sb.WriteString(e.Key)
		sb.WriteByte('=')
		sb.WriteString(e.Value)
		sb.WriteByte('\n')
	}
	return sb.String()
}
