// metrics/prometheus.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus collectors
type Metrics struct {
	DocumentsParsed *prometheus.CounterVec
	ItemsExtracted  *prometheus.CounterVec
	ParseDuration   prometheus.Histogram
	FetchAttempts   *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in the server and a fresh prometheus.NewRegistry() in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DocumentsParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_parsed_total",
			Help:      "Schedule documents run through an extractor",
		}, []string{"engine"}),
		ItemsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_extracted_total",
			Help:      "Trips and activities extracted from schedule documents",
		}, []string{"kind"}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time taken to extract one schedule document",
			Buckets:   prometheus.DefBuckets,
		}),
		FetchAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Portal requests by outcome",
		}, []string{"outcome"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Schedule cache lookups by result",
		}, []string{"result"}),
	}
}

// NewNop returns collectors registered nowhere.
func NewNop() *Metrics {
	return NewMetrics("crewsched", prometheus.NewRegistry())
}
