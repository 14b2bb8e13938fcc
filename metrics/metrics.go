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

// Package metrics centralizes the go-metrics registry of the node and the
// runtime collectors feeding it.
package metrics

import (
	"runtime"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Enabled is the flag gating metric collection, set from the command line.
var Enabled = false

// EnabledPrometheusExport turns on the Prometheus exporter endpoint.
var EnabledPrometheusExport = false

// DefaultRegistry holds every metric registered through go-metrics'
// package-level constructors.
var DefaultRegistry = gometrics.DefaultRegistry

// CollectProcessMetrics periodically samples runtime memory statistics into
// the default registry. It blocks and is meant to run in its own goroutine.
func CollectProcessMetrics(refresh time.Duration) {
	if !Enabled {
		return
	}
	memAlloc := gometrics.GetOrRegisterGauge("system/memory/alloc", DefaultRegistry)
	memPauses := gometrics.GetOrRegisterMeter("system/memory/pauses", DefaultRegistry)
	memFrees := gometrics.GetOrRegisterMeter("system/memory/frees", DefaultRegistry)
	goroutines := gometrics.GetOrRegisterGauge("system/goroutines", DefaultRegistry)

	stats := make([]*runtime.MemStats, 2)
	for i := 0; i < len(stats); i++ {
		stats[i] = new(runtime.MemStats)
	}
	for i := 1; ; i++ {
		location1 := i % 2
		location2 := (i - 1) % 2

		runtime.ReadMemStats(stats[location1])
		memAlloc.Update(int64(stats[location1].Alloc))
		memPauses.Mark(int64(stats[location1].PauseTotalNs - stats[location2].PauseTotalNs))
		memFrees.Mark(int64(stats[location1].Frees - stats[location2].Frees))
		goroutines.Update(int64(runtime.NumGoroutine()))

		time.Sleep(refresh)
	}
}
