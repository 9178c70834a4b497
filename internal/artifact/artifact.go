// Package artifact stores route-size snapshots as JSON objects so a pull
// request build can fetch the snapshot its base branch produced.
package artifact

import (
	"github.com/huangsam/bundlesize/internal/contract"
)

// New returns the artifact store described by cfg, or nil when none is configured.
// An S3 endpoint takes precedence over a local directory.
func New(cfg contract.ArtifactConfig) (contract.ArtifactStore, error) {
	switch {
	case cfg.Endpoint != "":
		store, err := NewS3Store(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case cfg.Dir != "":
		return NewLocalStore(cfg.Dir), nil
	default:
		return nil, nil
	}
}
