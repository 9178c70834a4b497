// Package schema has configs, models and global variables for all parts of bundlesize.
package schema

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RouteSize holds the byte sizes of all JavaScript assets of one route.
type RouteSize struct {
	Raw  int64 `json:"raw" yaml:"raw"`   // Uncompressed bytes
	Gzip int64 `json:"gzip" yaml:"gzip"` // Gzip-compressed bytes
}

// RouteSizes maps a normalized route to its sizes, remembering insertion order.
// The zero value and a nil pointer both behave as an empty map for reads.
type RouteSizes struct {
	m *orderedmap.OrderedMap[string, RouteSize]
}

// NewRouteSizes returns an empty RouteSizes.
func NewRouteSizes() *RouteSizes {
	return &RouteSizes{m: orderedmap.New[string, RouteSize]()}
}

// Set stores the sizes for a route. Re-setting a route keeps its original position.
func (r *RouteSizes) Set(route string, size RouteSize) {
	if r.m == nil {
		r.m = orderedmap.New[string, RouteSize]()
	}
	r.m.Set(route, size)
}

// Get returns the sizes for a route and whether it exists.
func (r *RouteSizes) Get(route string) (RouteSize, bool) {
	if r == nil || r.m == nil {
		return RouteSize{}, false
	}
	return r.m.Get(route)
}

// Len returns the number of routes.
func (r *RouteSizes) Len() int {
	if r == nil || r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Routes returns the route keys in insertion order.
func (r *RouteSizes) Routes() []string {
	if r == nil || r.m == nil {
		return nil
	}
	routes := make([]string, 0, r.m.Len())
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		routes = append(routes, pair.Key)
	}
	return routes
}

// Totals returns the summed raw and gzip sizes across all routes.
func (r *RouteSizes) Totals() RouteSize {
	var total RouteSize
	if r == nil || r.m == nil {
		return total
	}
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		total.Raw += pair.Value.Raw
		total.Gzip += pair.Value.Gzip
	}
	return total
}

// MarshalJSON writes the routes as a JSON object in insertion order.
func (r *RouteSizes) MarshalJSON() ([]byte, error) {
	if r == nil || r.m == nil {
		return []byte("{}"), nil
	}
	return r.m.MarshalJSON()
}

// UnmarshalJSON reads a JSON object of routes, keeping the document order.
func (r *RouteSizes) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, RouteSize]()
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := m.UnmarshalJSON(trimmed); err != nil {
			return err
		}
	}
	r.m = m
	return nil
}

// MarshalYAML writes the routes as an ordered list, since YAML mappings lose order on decode.
func (r *RouteSizes) MarshalYAML() (any, error) {
	type entry struct {
		Route string `yaml:"route"`
		Raw   int64  `yaml:"raw"`
		Gzip  int64  `yaml:"gzip"`
	}
	entries := make([]entry, 0, r.Len())
	for _, route := range r.Routes() {
		size, _ := r.Get(route)
		entries = append(entries, entry{Route: route, Raw: size.Raw, Gzip: size.Gzip})
	}
	return entries, nil
}

// ParseRouteSizes decodes a route snapshot previously written with MarshalJSON.
func ParseRouteSizes(data []byte) (*RouteSizes, error) {
	routes := NewRouteSizes()
	if err := json.Unmarshal(data, routes); err != nil {
		return nil, err
	}
	return routes, nil
}
