package observability

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafesync_records_total",
			Help: "Total de registros processados por fluxo e resultado",
		},
		[]string{"flow", "result"},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cafesync_run_duration_seconds",
			Help:    "Duração das execuções de sincronização",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"flow"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafesync_http_requests_total",
			Help: "Total de requisições HTTP na API de consulta",
		},
		[]string{"route", "status"},
	)

	ImagesChecked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafesync_images_checked_total",
			Help: "Imagens verificadas, por resultado",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RecordsTotal, RunDuration, HTTPRequestsTotal, ImagesChecked)
	})
}

// Handler serve as métricas registradas.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// ObserveRun adds one run's counters under flow.
func ObserveRun(flow string, counts map[string]int, elapsed time.Duration) {
	for result, n := range counts {
		if n > 0 {
			RecordsTotal.WithLabelValues(flow, result).Add(float64(n))
		}
	}
	RunDuration.WithLabelValues(flow).Observe(elapsed.Seconds())
}

// Start expõe /metrics numa porta própria, para as execuções da CLI.
func Start(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Printf("[Metrics] servidor parou: %v", err)
		}
	}()
}
