package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const port = 6021

// Serve exposes the metrics endpoint on the default port.
func Serve() {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil); err != nil {
			log.Warn().Err(err).Int("port", port).Msg("could not serve metrics")
		}
	}()
}
