// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exports synchronizer fetch events as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sirseerhq/listsync/internal/apierror"
	"github.com/sirseerhq/listsync/internal/listsync"
)

const namespace = "listsync"

// Result label values on listsync_fetch_total.
const (
	ResultOK    = "ok"
	ResultStale = "stale"
)

// Collector turns FetchEvents into counters and a latency histogram.
// Failed fetches are labelled with their apierror.Kind.
type Collector struct {
	fetches    *prometheus.CounterVec
	added      *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ listsync.Observer = (*Collector)(nil)

// NewCollector builds the metric vectors without registering them.
func NewCollector() *Collector {
	return &Collector{
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Page fetches completed, by list, operation and result.",
			},
			[]string{"list", "op", "result"},
		),
		added: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_added_total",
				Help:      "Items appended to a list after deduplication.",
			},
			[]string{"list"},
		),
		duplicates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicates_dropped_total",
				Help:      "Fetched items dropped because their key was already present.",
			},
			[]string{"list"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Time spent waiting for a page, including stale and failed fetches.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"list", "op"},
		),
	}
}

// Register adds every metric to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{c.fetches, c.added, c.duplicates, c.duration} {
		if err := reg.Register(col); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveFetch implements listsync.Observer.
func (c *Collector) ObserveFetch(ev listsync.FetchEvent) {
	op := string(ev.Op)
	c.duration.WithLabelValues(ev.List, op).Observe(ev.Duration.Seconds())

	switch {
	case ev.Stale:
		c.fetches.WithLabelValues(ev.List, op, ResultStale).Inc()
	case ev.Err != nil:
		c.fetches.WithLabelValues(ev.List, op, string(apierror.KindOf(ev.Err))).Inc()
	default:
		c.fetches.WithLabelValues(ev.List, op, ResultOK).Inc()
		c.added.WithLabelValues(ev.List).Add(float64(ev.Added))
		c.duplicates.WithLabelValues(ev.List).Add(float64(ev.Duplicates()))
	}
}

// Handler serves the metrics gathered by g in the text exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
