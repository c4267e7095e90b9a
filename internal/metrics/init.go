package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Handler returns the http handler exposing the registered metrics.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve exposes the metrics endpoint on the given address.
// It blocks until the server fails.
func Serve(addr string) error {
	log.Info().Str("addr", addr).Msg("serving metrics")
	return http.ListenAndServe(addr, Handler())
}
