// Package metrics holds the Prometheus collectors shared by the connector.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the connector.
	Registry = prometheus.NewRegistry()

	// APIRequests counts DropInBlog API calls by method, endpoint template and
	// status code. Transport failures are recorded with code "error".
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropinblog_api_requests_total",
			Help: "DropInBlog API requests by method, endpoint and status code.",
		},
		[]string{"method", "endpoint", "code"},
	)

	// APIDuration records API call latency in seconds.
	APIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dropinblog_api_request_duration_seconds",
			Help:    "DropInBlog API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// SubscriptionTransitions counts webhook lifecycle transitions.
	SubscriptionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropinblog_subscription_transitions_total",
			Help: "Webhook subscription lifecycle transitions by outcome.",
		},
		[]string{"transition", "outcome"},
	)

	// Deliveries counts inbound webhook deliveries by node and outcome.
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropinblog_webhook_deliveries_total",
			Help: "Inbound webhook deliveries by node and outcome.",
		},
		[]string{"node", "outcome"},
	)

	// PostItems counts executed post operation items.
	PostItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropinblog_post_items_total",
			Help: "Post operation items by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more
// than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(APIRequests)
		Registry.MustRegister(APIDuration)
		Registry.MustRegister(SubscriptionTransitions)
		Registry.MustRegister(Deliveries)
		Registry.MustRegister(PostItems)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
