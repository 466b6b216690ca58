// Package mocks holds testify mocks for the external tool boundaries.
package mocks

import (
	"context"

	"github.com/maxkimambo/cbci/internal/build"
	"github.com/maxkimambo/cbci/internal/cluster"
	"github.com/maxkimambo/cbci/internal/runner"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// Runner is a mock of runner.Runner.
type Runner struct {
	mock.Mock
}

func NewRunner(t testingT) *Runner {
	m := &Runner{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Runner) Run(ctx context.Context, cmd runner.Command) (*runner.Result, error) {
	args := m.Called(ctx, cmd)
	var result *runner.Result
	if r := args.Get(0); r != nil {
		result = r.(*runner.Result)
	}
	return result, args.Error(1)
}

// Allocator is a mock of cluster.Allocator.
type Allocator struct {
	mock.Mock
}

func NewAllocator(t testingT) *Allocator {
	m := &Allocator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Allocator) Allocate(ctx context.Context, version string) (string, error) {
	args := m.Called(ctx, version)
	return args.String(0), args.Error(1)
}

func (m *Allocator) NodeAddress(ctx context.Context, clusterID string) (string, error) {
	args := m.Called(ctx, clusterID)
	return args.String(0), args.Error(1)
}

func (m *Allocator) Setup(ctx context.Context, clusterID, bucket string) error {
	return m.Called(ctx, clusterID, bucket).Error(0)
}

func (m *Allocator) Remove(ctx context.Context, clusterID string) error {
	return m.Called(ctx, clusterID).Error(0)
}

// AdminAPI is a mock of cluster.AdminAPI.
type AdminAPI struct {
	mock.Mock
}

func NewAdminAPI(t testingT) *AdminAPI {
	m := &AdminAPI{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *AdminAPI) WaitReady(ctx context.Context, address string) error {
	return m.Called(ctx, address).Error(0)
}

func (m *AdminAPI) SetPoolQuota(ctx context.Context, address string, memoryMB int) error {
	return m.Called(ctx, address, memoryMB).Error(0)
}

func (m *AdminAPI) UpdateBucket(ctx context.Context, address, bucket string, ramQuotaMB int) error {
	return m.Called(ctx, address, bucket, ramQuotaMB).Error(0)
}

// VCS is a mock of build.VCS.
type VCS struct {
	mock.Mock
}

func NewVCS(t testingT) *VCS {
	m := &VCS{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *VCS) Clone(ctx context.Context, url, dir string) error {
	return m.Called(ctx, url, dir).Error(0)
}

// BuildTool is a mock of build.BuildTool.
type BuildTool struct {
	mock.Mock
}

func NewBuildTool(t testingT) *BuildTool {
	m := &BuildTool{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BuildTool) Build(ctx context.Context, dir string, params []build.Param) (*build.Outcome, error) {
	args := m.Called(ctx, dir, params)
	var outcome *build.Outcome
	if o := args.Get(0); o != nil {
		outcome = o.(*build.Outcome)
	}
	return outcome, args.Error(1)
}

var (
	_ runner.Runner     = (*Runner)(nil)
	_ cluster.Allocator = (*Allocator)(nil)
	_ cluster.AdminAPI  = (*AdminAPI)(nil)
	_ build.VCS         = (*VCS)(nil)
	_ build.BuildTool   = (*BuildTool)(nil)
)
