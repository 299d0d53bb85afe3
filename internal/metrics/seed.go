package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del seed. El proceso es one-shot: no hay endpoint /metrics,
// el registry se vuelca a un archivo para el textfile collector de node_exporter.

var (
	SeedRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seed_runs_total",
		Help: "Corridas de seed por target y resultado (seeded|skipped|failed)",
	}, []string{"target", "outcome"})

	SeedDocumentsInserted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seed_documents_inserted_total",
		Help: "Documentos/filas insertados por el seed",
	}, []string{"target"})

	SeedStepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seed_step_duration_seconds",
		Help:    "Duración de cada paso del seed",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"step"})

	SeedLastRunTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "seed_last_run_timestamp_seconds",
		Help: "Unix time de la última corrida por target",
	}, []string{"target"})
)

// Outcomes válidos para SeedRuns.
const (
	OutcomeSeeded  = "seeded"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Register registra las métricas del seed en el registry dado (o el default si nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{SeedRuns, SeedDocumentsInserted, SeedStepDuration, SeedLastRunTimestamp} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// WriteTextfile vuelca el gatherer (o el default si nil) en formato de texto
// de Prometheus. La escritura es atómica (tmp + rename) por el propio client.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("metrics: write textfile %s: %w", path, err)
	}
	return nil
}
