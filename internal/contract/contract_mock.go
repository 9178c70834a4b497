package contract

import (
	"context"

	"github.com/huangsam/bundlesize/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetCurrentBranch implements the GitClient interface.
func (m *MockGitClient) GetCurrentBranch(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ StoreManager = &MockStoreManager{} // Compile-time check

// GetSnapshotStore implements the StoreManager interface.
func (m *MockStoreManager) GetSnapshotStore() SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(SnapshotStore)
	return store
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ SnapshotStore = &MockSnapshotStore{} // Compile-time check

// SaveSnapshot implements the SnapshotStore interface.
func (m *MockSnapshotStore) SaveSnapshot(ctx context.Context, snapshot schema.Snapshot) (int64, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).(int64), args.Error(1)
}

// LatestSnapshot implements the SnapshotStore interface.
func (m *MockSnapshotStore) LatestSnapshot(ctx context.Context, branch string) (schema.Snapshot, error) {
	args := m.Called(ctx, branch)
	return args.Get(0).(schema.Snapshot), args.Error(1)
}

// ListSnapshots implements the SnapshotStore interface.
func (m *MockSnapshotStore) ListSnapshots(ctx context.Context, branch string, limit int) ([]schema.SnapshotSummary, error) {
	args := m.Called(ctx, branch, limit)
	summaries, _ := args.Get(0).([]schema.SnapshotSummary)
	return summaries, args.Error(1)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockArtifactStore is a mock implementation of ArtifactStore for testing.
type MockArtifactStore struct {
	mock.Mock
}

var _ ArtifactStore = &MockArtifactStore{} // Compile-time check

// Upload implements the ArtifactStore interface.
func (m *MockArtifactStore) Upload(ctx context.Context, key string, routes *schema.RouteSizes) error {
	args := m.Called(ctx, key, routes)
	return args.Error(0)
}

// Download implements the ArtifactStore interface.
func (m *MockArtifactStore) Download(ctx context.Context, key string) (*schema.RouteSizes, error) {
	args := m.Called(ctx, key)
	routes, _ := args.Get(0).(*schema.RouteSizes)
	return routes, args.Error(1)
}

// MockCommentPoster is a mock implementation of CommentPoster for testing.
type MockCommentPoster struct {
	mock.Mock
}

var _ CommentPoster = &MockCommentPoster{} // Compile-time check

// Upsert implements the CommentPoster interface.
func (m *MockCommentPoster) Upsert(ctx context.Context, pullRequest int, body string) error {
	args := m.Called(ctx, pullRequest, body)
	return args.Error(0)
}

// MockMetricsPusher is a mock implementation of MetricsPusher for testing.
type MockMetricsPusher struct {
	mock.Mock
}

var _ MetricsPusher = &MockMetricsPusher{} // Compile-time check

// Push implements the MetricsPusher interface.
func (m *MockMetricsPusher) Push(ctx context.Context, branch string, routes *schema.RouteSizes) error {
	args := m.Called(ctx, branch, routes)
	return args.Error(0)
}
