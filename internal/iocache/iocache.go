// Package iocache persists route-size snapshots across CI runs.
package iocache

import (
	"sync"

	"github.com/huangsam/bundlesize/internal/contract"
)

// SnapshotStoreManager manages the SnapshotStore instance.
type SnapshotStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	snapshots    contract.SnapshotStore
}

var _ contract.StoreManager = &SnapshotStoreManager{} // Compile-time check

// GetSnapshotStore returns the SnapshotStore, or nil before InitStore.
func (mgr *SnapshotStoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}

// SetSnapshotStore replaces the managed store. Tests use it to inject fakes.
func (mgr *SnapshotStoreManager) SetSnapshotStore(store contract.SnapshotStore) {
	mgr.Lock()
	defer mgr.Unlock()
	mgr.snapshots = store
}
