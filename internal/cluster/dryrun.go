package cluster

import (
	"context"

	"github.com/maxkimambo/cbci/internal/logger"
)

// DryRunAdmin logs the administrative calls instead of sending them.
type DryRunAdmin struct {
	Port int
}

func (d DryRunAdmin) WaitReady(ctx context.Context, address string) error {
	logger.User.Infof("[dry-run] GET http://%s/pools", hostPort(address, d.port()))
	return nil
}

func (d DryRunAdmin) SetPoolQuota(ctx context.Context, address string, memoryMB int) error {
	logger.User.Infof("[dry-run] POST http://%s/pools/default memoryQuota=%d", hostPort(address, d.port()), memoryMB)
	return nil
}

func (d DryRunAdmin) UpdateBucket(ctx context.Context, address, bucket string, ramQuotaMB int) error {
	logger.User.Infof("[dry-run] POST http://%s/pools/default/buckets/%s flushEnabled=1&ramQuotaMB=%d",
		hostPort(address, d.port()), bucket, ramQuotaMB)
	return nil
}

func (d DryRunAdmin) port() int {
	if d.Port == 0 {
		return DefaultAdminPort
	}
	return d.Port
}

var _ AdminAPI = DryRunAdmin{}
