package core

import (
	"strings"

	"github.com/huangsam/bundlesize/schema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// GzipSizeFunc returns the gzip-compressed size of a named asset.
type GzipSizeFunc func(assetName string) int64

// ProcessStats sums the JavaScript asset sizes of every route chunk group in stats.
// gzipSize may be nil, in which case every gzip size is 0. It is called once per
// JavaScript asset, sequentially, in manifest order. Routes with no raw bytes are omitted.
func ProcessStats(stats *schema.StatsManifest, gzipSize GzipSizeFunc) *schema.RouteSizes {
	routes := schema.NewRouteSizes()
	if stats == nil {
		return routes
	}

	rawSizes := make(map[string]int64, len(stats.Assets))
	for _, asset := range stats.Assets {
		rawSizes[asset.Name] = asset.Size
	}

	for pair := selectChunkGroups(stats).Oldest(); pair != nil; pair = pair.Next() {
		if isInternalChunk(pair.Key) {
			continue
		}

		var total schema.RouteSize
		for _, ref := range pair.Value.Assets {
			name := assetName(ref)
			if !strings.HasSuffix(name, ".js") {
				continue
			}
			total.Raw += rawSizes[name]
			if gzipSize != nil {
				total.Gzip += gzipSize(name)
			}
		}

		if total.Raw == 0 {
			continue
		}
		routes.Set(NormalizeRoute(pair.Key), total)
	}
	return routes
}

// selectChunkGroups prefers named chunk groups over the legacy entrypoints key.
func selectChunkGroups(stats *schema.StatsManifest) *orderedmap.OrderedMap[string, schema.ChunkGroup] {
	if stats.NamedChunkGroups != nil {
		return stats.NamedChunkGroups
	}
	if stats.Entrypoints != nil {
		return stats.Entrypoints
	}
	return orderedmap.New[string, schema.ChunkGroup]()
}

// assetName narrows an asset reference to its file name.
func assetName(ref schema.AssetRef) string {
	switch a := ref.(type) {
	case schema.BareAsset:
		return string(a)
	case schema.AssetRecord:
		return a.Name
	default:
		return ""
	}
}

// isInternalChunk reports whether a chunk group name contains a runtime chunk identifier.
// Matching is plain substring containment, so "/main-app-info" is filtered too.
func isInternalChunk(name string) bool {
	for _, internal := range schema.InternalChunkNames {
		if strings.Contains(name, internal) {
			return true
		}
	}
	return false
}

// NormalizeRoute turns an entrypoint name such as "app/about/page" into "/about".
func NormalizeRoute(name string) string {
	route := name
	if route == "app" || strings.HasPrefix(route, "app/") {
		route = strings.TrimPrefix(route, "app")
	}
	route = strings.TrimSuffix(route, "/page")
	if route == "" {
		return "/"
	}
	return route
}

// JSAssetNames lists the distinct JavaScript assets referenced by route chunk groups,
// in the order ProcessStats would visit them.
func JSAssetNames(stats *schema.StatsManifest) []string {
	if stats == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	for pair := selectChunkGroups(stats).Oldest(); pair != nil; pair = pair.Next() {
		if isInternalChunk(pair.Key) {
			continue
		}
		for _, ref := range pair.Value.Assets {
			name := assetName(ref)
			if !strings.HasSuffix(name, ".js") {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}
