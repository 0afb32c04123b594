package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	RouteRequests *prometheus.CounterVec // outcome label: found|not_found|error
	RouteDuration prometheus.Histogram

	LiveRequests        *prometheus.CounterVec // outcome label: ok|no_assignments|not_found|error
	SimulatedVehicles   prometheus.Counter
	CheckpointConflicts prometheus.Counter
	SimulationDuration  prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		RouteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "urbantransit_route_requests_total",
			Help: "Route requests by outcome.",
		}, []string{"outcome"}),
		RouteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "urbantransit_route_duration_seconds",
			Help:    "Time taken to compose a route.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		LiveRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "urbantransit_live_requests_total",
			Help: "Live position requests by outcome.",
		}, []string{"outcome"}),
		SimulatedVehicles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "urbantransit_simulated_vehicles_total",
			Help: "Vehicle positions computed by the simulator.",
		}),
		CheckpointConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "urbantransit_checkpoint_conflicts_total",
			Help: "Checkpoint writes skipped because another request updated the vehicle first.",
		}),
		SimulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "urbantransit_simulation_duration_seconds",
			Help:    "Time taken to compute live positions for a line.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
	}

	reg.MustRegister(
		c.RouteRequests, c.RouteDuration,
		c.LiveRequests, c.SimulatedVehicles, c.CheckpointConflicts, c.SimulationDuration,
		collectors.NewGoCollector(),
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }
