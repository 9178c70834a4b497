// Package metrics pushes per-route bundle sizes to a Prometheus Pushgateway
// so size trends can be graphed across builds.
package metrics

import (
	"context"
	"fmt"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job all route gauges are grouped under.
const JobName = "bundlesize"

// RouteLabels are the variable labels of every route gauge.
var RouteLabels = []string{"route"}

// Pusher publishes route sizes to a Pushgateway.
type Pusher struct {
	URL string
}

var _ contract.MetricsPusher = &Pusher{} // Compile-time check

// NewPusher creates a Pusher for the Pushgateway at url.
func NewPusher(url string) *Pusher {
	return &Pusher{URL: url}
}

// Collectors builds the route gauges for one snapshot.
func Collectors(routes *schema.RouteSizes) (raw, gzip *prometheus.GaugeVec) {
	raw = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "bundlesize",
			Subsystem: "route",
			Name:      "raw_bytes",
			Help:      "Uncompressed JavaScript bytes loaded by a route",
		},
		RouteLabels,
	)
	gzip = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "bundlesize",
			Subsystem: "route",
			Name:      "gzip_bytes",
			Help:      "Gzip-compressed JavaScript bytes loaded by a route",
		},
		RouteLabels,
	)
	for _, route := range routes.Routes() {
		size, _ := routes.Get(route)
		raw.WithLabelValues(route).Set(float64(size.Raw))
		gzip.WithLabelValues(route).Set(float64(size.Gzip))
	}
	return raw, gzip
}

// Push replaces the branch's metric group with the given routes.
func (p *Pusher) Push(ctx context.Context, branch string, routes *schema.RouteSizes) error {
	raw, gzip := Collectors(routes)
	err := push.New(p.URL, JobName).
		Grouping("branch", branch).
		Collector(raw).
		Collector(gzip).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", p.URL, err)
	}
	return nil
}
