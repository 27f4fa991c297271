// Package exporters exposes collected metrics over HTTP.
package exporters

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler returns the Prometheus metrics handler for every
// promauto-registered metric.
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}
