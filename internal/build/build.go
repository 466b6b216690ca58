package build

import (
	"context"
	"path/filepath"
	"time"
)

// VCS fetches source repositories.
type VCS interface {
	Clone(ctx context.Context, url, dir string) error
}

// BuildTool builds a checked out repository and runs its test suite.
type BuildTool interface {
	Build(ctx context.Context, dir string, params []Param) (*Outcome, error)
}

// Param is a named build parameter, passed in order.
type Param struct {
	Key   string
	Value string
}

// Outcome describes a build that ran to completion.
type Outcome struct {
	Dir      string
	ExitCode int
	Duration time.Duration
}

func (o *Outcome) Failed() bool {
	return o.ExitCode != 0
}

// Repository is a source repository built against the cluster.
type Repository struct {
	// Name is the checkout directory name.
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
	// PropertiesPath, relative to the checkout, receives the generated test
	// properties before the build. Empty means none.
	PropertiesPath string `mapstructure:"properties_path"`
	// ClusterParams passes seed node, bucket and password to the build.
	ClusterParams bool `mapstructure:"cluster_params"`
}

// CheckoutDir is where the repository is cloned under workspace.
func (r Repository) CheckoutDir(workspace string) string {
	return filepath.Join(workspace, r.Name)
}

// DefaultRepositories returns the core library followed by the client that depends on it.
func DefaultRepositories() []Repository {
	return []Repository{
		{
			Name:           "couchbase-jvm-core",
			URL:            "http://github.com/couchbase/couchbase-jvm-core",
			PropertiesPath: "src/test/resources/integration/integration.properties",
		},
		{
			Name:          "couchbase-java-client",
			URL:           "http://github.com/couchbase/couchbase-java-client",
			ClusterParams: true,
		},
	}
}

// ClusterParams are the parameters handed to builds that talk to the cluster.
func ClusterParams(seedNode, bucket, password string) []Param {
	return []Param{
		{Key: "seedNode", Value: seedNode},
		{Key: "bucket", Value: bucket},
		{Key: "password", Value: password},
		{Key: "ci", Value: "true"},
	}
}
