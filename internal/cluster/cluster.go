package cluster

import (
	"context"
	"fmt"
	"time"
)

// Cluster is an allocated cluster. It is owned by a single run iteration.
type Cluster struct {
	ID      string
	Version string
	// Address is the first node's host as reported by the allocator.
	Address     string
	AllocatedAt time.Time
}

func (c *Cluster) String() string {
	return fmt.Sprintf("%s (%s @ %s)", c.ID, c.Version, c.Address)
}

// Allocator provisions and removes ephemeral clusters.
type Allocator interface {
	Allocate(ctx context.Context, version string) (string, error)
	NodeAddress(ctx context.Context, clusterID string) (string, error)
	Setup(ctx context.Context, clusterID, bucket string) error
	Remove(ctx context.Context, clusterID string) error
}

// AdminAPI configures a running cluster through its administrative REST endpoint.
type AdminAPI interface {
	WaitReady(ctx context.Context, address string) error
	SetPoolQuota(ctx context.Context, address string, memoryMB int) error
	UpdateBucket(ctx context.Context, address, bucket string, ramQuotaMB int) error
}
