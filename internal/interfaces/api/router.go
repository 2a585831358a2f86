package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the HTTP surface: on-demand price lookups, liveness and
// the Prometheus scrape endpoint.
func NewRouter(prices PriceSource) *mux.Router {
	r := mux.NewRouter()

	h := &priceHandler{prices: prices}
	r.HandleFunc("/api/v1/price", h.getPrice).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
