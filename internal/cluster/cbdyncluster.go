package cluster

import (
	"context"
	"strings"

	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/logger"
	"github.com/maxkimambo/cbci/internal/runner"
)

const (
	DefaultAllocatorBin = "cbdyncluster"
	setupServices       = "kv,index,n1ql"
	setupStorageMode    = "memory_optimized"
)

// CBDynCluster drives the cbdyncluster CLI.
type CBDynCluster struct {
	Bin    string
	Runner runner.Runner
}

func NewCBDynCluster(bin string, r runner.Runner) *CBDynCluster {
	if bin == "" {
		bin = DefaultAllocatorBin
	}
	return &CBDynCluster{Bin: bin, Runner: r}
}

// Allocate requests a single-node cluster and returns its identifier, which
// the tool prints on its first output line. When the tool exits non-zero
// after printing an identifier, that identifier is returned with the error.
func (c *CBDynCluster) Allocate(ctx context.Context, version string) (string, error) {
	cmd := runner.NewCommand(c.Bin, "allocate", "--num-nodes=1", "--server-version="+version)

	id, result, err := runner.Capture(ctx, c.Runner, cmd)
	if err != nil {
		return "", harnesserrors.NewAllocationFailedError(version, err)
	}
	if !result.Succeeded() {
		allocErr := harnesserrors.NewAllocationFailedError(version, result.Err())
		if !looksLikeClusterID(id) {
			return "", allocErr
		}
		// the cluster may exist anyway; hand the ID back so it can be removed
		return id, allocErr.WithContext("cluster", id)
	}
	if id == "" {
		return "", harnesserrors.NewEmptyClusterIDError(version)
	}

	logger.Op.WithFields(map[string]interface{}{
		"cluster": id,
		"version": version,
	}).Info("cluster allocated")
	return id, nil
}

// NodeAddress returns the first node address of the cluster.
func (c *CBDynCluster) NodeAddress(ctx context.Context, clusterID string) (string, error) {
	line, result, err := runner.Capture(ctx, c.Runner, runner.NewCommand(c.Bin, "ips", clusterID))
	if err != nil {
		return "", harnesserrors.NewEmptyNodeAddressError(clusterID, err)
	}
	if !result.Succeeded() {
		return "", harnesserrors.NewEmptyNodeAddressError(clusterID, result.Err())
	}

	address := firstAddress(line)
	if address == "" {
		return "", harnesserrors.NewEmptyNodeAddressError(clusterID, nil)
	}
	return address, nil
}

// Setup enables the kv, index and query services and creates bucket.
func (c *CBDynCluster) Setup(ctx context.Context, clusterID, bucket string) error {
	cmd := runner.NewCommand(c.Bin, "setup", clusterID,
		"--node="+setupServices,
		"--bucket="+bucket,
		"--storage-mode="+setupStorageMode,
	)

	result, err := c.Runner.Run(ctx, cmd)
	if err != nil {
		return harnesserrors.NewClusterSetupError(clusterID, bucket, err)
	}
	if !result.Succeeded() {
		return harnesserrors.NewClusterSetupError(clusterID, bucket, result.Err())
	}
	return nil
}

func (c *CBDynCluster) Remove(ctx context.Context, clusterID string) error {
	result, err := c.Runner.Run(ctx, runner.NewCommand(c.Bin, "rm", clusterID))
	if err != nil {
		return harnesserrors.NewTeardownError(clusterID, err)
	}
	if !result.Succeeded() {
		return harnesserrors.NewTeardownError(clusterID, result.Err())
	}
	return nil
}

// looksLikeClusterID rejects empty lines and error messages.
func looksLikeClusterID(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t:")
}

// firstAddress picks the first entry of a comma separated address list.
func firstAddress(line string) string {
	first, _, _ := strings.Cut(line, ",")
	return strings.TrimSpace(first)
}

var _ Allocator = (*CBDynCluster)(nil)
