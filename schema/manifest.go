package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Top-level manifest keys holding per-route chunk groups, in order of preference.
const (
	NamedChunkGroupsKey = "namedChunkGroups"
	EntrypointsKey      = "entrypoints"
)

// StatsManifest is the subset of a webpack stats manifest that bundlesize reads.
// Missing or wrong-typed fields decode to empty values instead of failing.
type StatsManifest struct {
	Assets           []AssetRecord                              // Every emitted asset with its raw size
	NamedChunkGroups *orderedmap.OrderedMap[string, ChunkGroup] // nil when the manifest lacks the key
	Entrypoints      *orderedmap.OrderedMap[string, ChunkGroup] // nil when the manifest lacks the key
}

// ChunkGroup lists the assets that belong to one entrypoint.
type ChunkGroup struct {
	Assets []AssetRef
}

// AssetRef is a chunk group asset, given either as a BareAsset or as an AssetRecord.
type AssetRef interface {
	isAssetRef()
}

// BareAsset is an asset referenced only by its file name.
type BareAsset string

// AssetRecord is an asset given as an object. Size is only meaningful in the
// top-level assets list.
type AssetRecord struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (BareAsset) isAssetRef()   {}
func (AssetRecord) isAssetRef() {}

// UnmarshalJSON narrows each asset to a BareAsset or AssetRecord and drops anything else.
func (g *ChunkGroup) UnmarshalJSON(data []byte) error {
	*g = ChunkGroup{}
	var raw struct {
		Assets []json.RawMessage `json:"assets"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	for _, item := range raw.Assets {
		if ref, ok := narrowAssetRef(item); ok {
			g.Assets = append(g.Assets, ref)
		}
	}
	return nil
}

// narrowAssetRef decides between the two asset shapes by the first JSON token.
func narrowAssetRef(raw json.RawMessage) (AssetRef, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}
	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return nil, false
		}
		return BareAsset(name), true
	case '{':
		var rec struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, false
		}
		return AssetRecord{Name: rec.Name}, true
	default:
		return nil, false
	}
}

// ParseStatsManifest decodes a stats manifest. Only syntactically invalid JSON or a
// non-object document is an error; every field degrades to empty on its own.
func ParseStatsManifest(data []byte) (*StatsManifest, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("invalid stats manifest: %w", err)
	}
	return &StatsManifest{
		Assets:           decodeAssets(top["assets"]),
		NamedChunkGroups: decodeChunkGroups(top[NamedChunkGroupsKey]),
		Entrypoints:      decodeChunkGroups(top[EntrypointsKey]),
	}, nil
}

// decodeAssets reads the top-level assets list, skipping entries it cannot read.
func decodeAssets(raw json.RawMessage) []AssetRecord {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	assets := make([]AssetRecord, 0, len(items))
	for _, item := range items {
		var rec AssetRecord
		if err := json.Unmarshal(item, &rec); err != nil || rec.Name == "" {
			continue
		}
		assets = append(assets, rec)
	}
	return assets
}

// decodeChunkGroups reads a chunk group mapping in document order.
// It returns nil when the key is absent, null or not an object.
func decodeChunkGroups(raw json.RawMessage) *orderedmap.OrderedMap[string, ChunkGroup] {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	groups := orderedmap.New[string, ChunkGroup]()
	if err := groups.UnmarshalJSON(trimmed); err != nil {
		return nil
	}
	return groups
}
