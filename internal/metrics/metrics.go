package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CatalogLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_loads_total",
		Help: "Successful channel feed loads",
	})
	CatalogLoadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_load_errors_total",
		Help: "Failed channel feed loads",
	})
	FilterQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "filter_queries_total",
		Help: "Catalog filter queries served",
	})
	StorageErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storage_errors_total",
		Help: "Swallowed key-value store write failures",
	})
	NotificationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Program-start notifications fired",
	})
)

// MustRegister registers all collectors with the given registerer.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CatalogLoads,
		CatalogLoadErrors,
		FilterQueries,
		StorageErrors,
		NotificationsSent,
	)
}
