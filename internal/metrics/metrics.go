package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Progress prometheus.Gauge
	Delayed  prometheus.Gauge

	Ticks           prometheus.Counter
	Loops           prometheus.Counter
	DelaysTriggered prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	Searches *prometheus.CounterVec // target label: origin|destination|none

	TickDuration    prometheus.Histogram
	PublishDuration prometheus.Histogram

	TickInterval   prometheus.Gauge // seconds
	RouteWaypoints prometheus.Gauge
}

func NewCollector(tickInterval time.Duration, waypoints int) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_trip_progress_percent",
			Help: "Current simulated trip progress (0-100).",
		}),
		Delayed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_trip_delayed",
			Help: "1 if the bus is flagged as delayed, 0 otherwise.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_ticks_total",
			Help: "Total simulator ticks.",
		}),
		Loops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_trip_loops_total",
			Help: "Times the trip wrapped from the destination back to the start.",
		}),
		DelaysTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_delays_triggered_total",
			Help: "Transitions of the delay flag from false to true.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_searches_total",
			Help: "Location searches by resolved target.",
		}, []string{"target"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_tick_duration_seconds",
			Help:    "Duration of tick handling (interpolation and publish).",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		TickInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_tick_interval_seconds",
			Help: "Simulator tick interval in seconds.",
		}),
		RouteWaypoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_route_waypoints",
			Help: "Number of waypoints in the active route.",
		}),
	}

	reg.MustRegister(
		c.Progress, c.Delayed,
		c.Ticks, c.Loops, c.DelaysTriggered,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.Searches, c.TickDuration, c.PublishDuration,
		c.TickInterval, c.RouteWaypoints,
	)

	c.TickInterval.Set(tickInterval.Seconds())
	c.RouteWaypoints.Set(float64(waypoints))

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
