package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatsManifest(t *testing.T) {
	doc := `{
		"assets": [
			{"name": "a.js", "size": 100},
			{"name": "", "size": 5},
			{"size": 7},
			"not-an-object",
			{"name": "b.js", "size": "big"},
			{"name": "c.css", "size": 50}
		],
		"namedChunkGroups": {
			"app/zeta/page": {"assets": ["a.js", {"name": "c.css", "size": 999}, 7, null]},
			"app/page": {"assets": []},
			"app/broken/page": {"assets": "nope"},
			"app/also-broken/page": 42
		},
		"entrypoints": null
	}`
	stats, err := ParseStatsManifest([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []AssetRecord{{Name: "a.js", Size: 100}, {Name: "c.css", Size: 50}}, stats.Assets)
	assert.Nil(t, stats.Entrypoints)
	require.NotNil(t, stats.NamedChunkGroups)

	var keys []string
	for pair := stats.NamedChunkGroups.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"app/zeta/page", "app/page", "app/broken/page", "app/also-broken/page"}, keys)

	zeta, _ := stats.NamedChunkGroups.Get("app/zeta/page")
	assert.Equal(t, []AssetRef{BareAsset("a.js"), AssetRecord{Name: "c.css"}}, zeta.Assets)

	broken, _ := stats.NamedChunkGroups.Get("app/broken/page")
	assert.Empty(t, broken.Assets)
}

func TestParseStatsManifest_MissingKeys(t *testing.T) {
	stats, err := ParseStatsManifest([]byte(`{"entrypoints": {"app/page": {"assets": ["a.js"]}}}`))
	require.NoError(t, err)
	assert.Empty(t, stats.Assets)
	assert.Nil(t, stats.NamedChunkGroups)
	require.NotNil(t, stats.Entrypoints)
	assert.Equal(t, 1, stats.Entrypoints.Len())
}

func TestParseStatsManifest_NonObjectGroups(t *testing.T) {
	for _, doc := range []string{
		`{"namedChunkGroups": []}`,
		`{"namedChunkGroups": "x"}`,
		`{"namedChunkGroups": null}`,
		`{"namedChunkGroups": 3}`,
	} {
		stats, err := ParseStatsManifest([]byte(doc))
		require.NoError(t, err, doc)
		assert.Nil(t, stats.NamedChunkGroups, doc)
	}
}

func TestParseStatsManifest_Invalid(t *testing.T) {
	for _, doc := range []string{``, `{`, `[]`, `"stats"`, `42`} {
		_, err := ParseStatsManifest([]byte(doc))
		assert.Error(t, err, doc)
	}
}
