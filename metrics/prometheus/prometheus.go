// Copyright 2019 The go-ledgerd Authors
// This file is part of the go-ledgerd library.
//
// The go-ledgerd library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ledgerd library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ledgerd library. If not, see <http://www.gnu.org/licenses/>.

// Package prometheusmetrics republishes the go-metrics registry as Prometheus
// gauges so promhttp can serve them.
package prometheusmetrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	gometrics "github.com/rcrowley/go-metrics"

	"github.com/ledgerd/go-ledgerd/log"
)

var logger = log.NewModuleLogger(log.Metrics)

// PrometheusProvider mirrors a go-metrics registry into a Prometheus registerer.
type PrometheusProvider struct {
	registry      gometrics.Registry
	namespace     string
	subsystem     string
	registerer    prometheus.Registerer
	flushInterval time.Duration

	mu     sync.Mutex
	gauges map[string]prometheus.Gauge
}

// NewPrometheusProvider wires a go-metrics registry to a Prometheus registerer,
// refreshing every flushInterval.
func NewPrometheusProvider(registry gometrics.Registry, namespace, subsystem string,
	registerer prometheus.Registerer, flushInterval time.Duration) *PrometheusProvider {
	return &PrometheusProvider{
		registry:      registry,
		namespace:     namespace,
		subsystem:     subsystem,
		registerer:    registerer,
		flushInterval: flushInterval,
		gauges:        make(map[string]prometheus.Gauge),
	}
}

// UpdatePrometheusMetrics republishes the registry forever. It blocks and is
// meant to run in its own goroutine.
func (p *PrometheusProvider) UpdatePrometheusMetrics() {
	for range time.Tick(p.flushInterval) {
		p.UpdatePrometheusMetricsOnce()
	}
}

// UpdatePrometheusMetricsOnce walks the registry and pushes a snapshot of
// every metric into Prometheus.
func (p *PrometheusProvider) UpdatePrometheusMetricsOnce() {
	p.registry.Each(func(name string, i interface{}) {
		switch metric := i.(type) {
		case gometrics.Counter:
			p.gauge(name).Set(float64(metric.Count()))
		case gometrics.Gauge:
			p.gauge(name).Set(float64(metric.Value()))
		case gometrics.GaugeFloat64:
			p.gauge(name).Set(metric.Value())
		case gometrics.Meter:
			p.gauge(name).Set(float64(metric.Snapshot().Count()))
		case gometrics.Timer:
			p.gauge(name).Set(float64(metric.Snapshot().Count()))
		case gometrics.Histogram:
			p.gauge(name).Set(float64(metric.Snapshot().Count()))
		}
	})
}

func (p *PrometheusProvider) gauge(name string) prometheus.Gauge {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.gauges[name]; ok {
		return g
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: flattenKey(p.namespace),
		Subsystem: flattenKey(p.subsystem),
		Name:      flattenKey(name),
	})
	if err := p.registerer.Register(g); err != nil {
		logger.Error("Failed to register prometheus gauge", "name", name, "err", err)
	}
	p.gauges[name] = g
	return g
}

func flattenKey(key string) string {
	r := strings.NewReplacer("/", "_", ".", "_", "-", "_", " ", "_")
	return r.Replace(key)
}
