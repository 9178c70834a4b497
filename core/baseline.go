package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
	"github.com/rs/zerolog/log"
)

// Baseline sources, in resolution order.
const (
	BaselineFromFile     = "file"
	BaselineFromArtifact = "artifact"
	BaselineFromStore    = "store"
)

// ResolveBaseline finds the baseline routes for cfg.BaseBranch. It tries the explicit
// baseline file, then the artifact store, then the newest stored snapshot. It returns
// the routes with the name of the source that provided them, or contract.ErrNoBaseline.
// A failing artifact or store lookup falls through to the next source.
func ResolveBaseline(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, artifacts contract.ArtifactStore) (*schema.RouteSizes, string, error) {
	if cfg.BaselineFile != "" {
		routes, err := LoadRouteSizes(cfg.BaselineFile)
		if err != nil {
			return nil, "", err
		}
		return routes, BaselineFromFile, nil
	}

	if artifacts != nil {
		key := contract.ArtifactKey(cfg.Artifact.Prefix, cfg.BaseBranch)
		routes, err := artifacts.Download(ctx, key)
		switch {
		case err == nil:
			return routes, BaselineFromArtifact, nil
		case errors.Is(err, contract.ErrNoBaseline):
			log.Debug().Str("key", key).Msg("no baseline artifact")
		default:
			warn(ctx, "baseline artifact lookup failed", err)
		}
	}

	if mgr != nil {
		if store := mgr.GetSnapshotStore(); store != nil {
			snapshot, err := store.LatestSnapshot(ctx, cfg.BaseBranch)
			switch {
			case err == nil:
				log.Debug().Int64("snapshot_id", snapshot.ID).Str("branch", snapshot.Branch).Msg("baseline from store")
				return snapshot.Routes, BaselineFromStore, nil
			case errors.Is(err, contract.ErrNoBaseline):
				log.Debug().Str("branch", cfg.BaseBranch).Msg("no stored baseline")
			default:
				warn(ctx, "baseline store lookup failed", err)
			}
		}
	}

	return nil, "", fmt.Errorf("branch %s: %w", cfg.BaseBranch, contract.ErrNoBaseline)
}
