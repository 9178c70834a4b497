package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/huangsam/bundlesize/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoutes() *schema.RouteSizes {
	routes := schema.NewRouteSizes()
	routes.Set("/", schema.RouteSize{Raw: 4000, Gzip: 1200})
	routes.Set("/blog/[slug]", schema.RouteSize{Raw: 2500, Gzip: 800})
	return routes
}

func TestCollectors(t *testing.T) {
	raw, gzip := Collectors(sampleRoutes())

	assert.Equal(t, 2, testutil.CollectAndCount(raw))
	assert.InDelta(t, 4000.0, testutil.ToFloat64(raw.WithLabelValues("/")), 0)
	assert.InDelta(t, 800.0, testutil.ToFloat64(gzip.WithLabelValues("/blog/[slug]")), 0)
}

func TestCollectors_Empty(t *testing.T) {
	raw, gzip := Collectors(nil)
	assert.Zero(t, testutil.CollectAndCount(raw))
	assert.Zero(t, testutil.CollectAndCount(gzip))
}

func TestPush(t *testing.T) {
	var method, path, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, NewPusher(server.URL).Push(context.Background(), "main", sampleRoutes()))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/bundlesize/branch/main", path)
	assert.NotEmpty(t, body)
}

func TestPush_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewPusher(server.URL).Push(context.Background(), "main", sampleRoutes())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to push metrics"))
}
