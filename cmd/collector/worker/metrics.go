// Copyright 2024 NextCare Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nextcare_collector_cycles_total",
		Help: "Acquisition cycles run",
	})

	cycleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nextcare_collector_cycle_failures_total",
		Help: "Cycles that failed as a whole (point load, commit or panic)",
	})

	cycleOverruns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nextcare_collector_cycle_overruns_total",
		Help: "Cycles that took longer than the configured interval",
	})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nextcare_collector_cycle_duration_seconds",
		Help:    "Duration of one full acquisition cycle",
		Buckets: prometheus.DefBuckets,
	})

	readingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nextcare_collector_readings_total",
		Help: "Readings produced, by quality",
	}, []string{"quality"})

	alertsRaised = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nextcare_collector_alerts_raised_total",
		Help: "Alert events created by threshold evaluation",
	})
)
