// Package telemetry exports Prometheus metrics for HTTP traffic and for the
// constitution, concern and nutrition derivations.
package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "ahara"

// Provider owns the registry and every metric the service exports.
type Provider struct {
	namespace string
	registry  *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	derivations       *prometheus.CounterVec
	derivationSeconds *prometheus.HistogramVec
	dominant          *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
}

// NewProvider registers all metrics on a fresh registry along with the Go
// runtime and process collectors.
func NewProvider(namespace string) (*Provider, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	reg := prometheus.NewRegistry()
	p := &Provider{namespace: namespace, registry: reg}

	var err error
	if p.httpRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})); err != nil {
		return nil, err
	}
	if p.httpDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})); err != nil {
		return nil, err
	}
	if p.httpInFlight, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Requests currently being served.",
	})); err != nil {
		return nil, err
	}
	if p.derivations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "derivations_total",
		Help:      "Constitution scores, concern classifications and calorie plans by outcome.",
	}, []string{"operation", "outcome"})); err != nil {
		return nil, err
	}
	if p.derivationSeconds, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "derivation_duration_seconds",
		Help:      "Time spent deriving and persisting a result.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"operation"})); err != nil {
		return nil, err
	}
	if p.dominant, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "dominant_category_total",
		Help:      "Dominant constitution category of each recorded analysis.",
	}, []string{"category"})); err != nil {
		return nil, err
	}
	if p.cacheLookups, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "summary_cache",
		Name:      "lookups_total",
		Help:      "Patient summary cache lookups by result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}

	if _, err := register[prometheus.Collector](reg, collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if _, err := register[prometheus.Collector](reg, collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	return p, nil
}

// register adds c to reg, reusing an identical collector that is already
// registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// Registerer lets other packages add their own collectors.
func (p *Provider) Registerer() prometheus.Registerer { return p.registry }

func (p *Provider) Gatherer() prometheus.Gatherer { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry}))
}

// Middleware records request counts and latency keyed by the route pattern,
// so path parameters do not explode label cardinality.
func (p *Provider) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.httpInFlight.Inc()
			start := time.Now()

			err := next(c)

			p.httpInFlight.Dec()
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			p.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// RecordDerivation counts one engine call. outcome is "ok" or the kind of
// validation failure.
func (p *Provider) RecordDerivation(operation, outcome string, took time.Duration) {
	if p == nil {
		return
	}
	p.derivations.WithLabelValues(operation, outcome).Inc()
	p.derivationSeconds.WithLabelValues(operation).Observe(took.Seconds())
}

func (p *Provider) RecordDominant(category string) {
	if p == nil {
		return
	}
	p.dominant.WithLabelValues(category).Inc()
}

func (p *Provider) RecordCacheLookup(hit bool) {
	if p == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}

// RegisterPoolStats exports connection pool gauges read from stats on
// every scrape.
func (p *Provider) RegisterPoolStats(stats func() (total, idle, acquired int32)) error {
	gauge := func(name, help string, pick func(total, idle, acquired int32) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(pick(stats()))
		})
	}
	for _, c := range []prometheus.Collector{
		gauge("total_conns", "Open connections.", func(t, _, _ int32) int32 { return t }),
		gauge("idle_conns", "Idle connections.", func(_, i, _ int32) int32 { return i }),
		gauge("acquired_conns", "Connections checked out.", func(_, _, a int32) int32 { return a }),
	} {
		if _, err := register(p.registry, c); err != nil {
			return err
		}
	}
	return nil
}
