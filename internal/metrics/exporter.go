package metrics

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/kubev2v/taskd/pkg/scheduler"
)

const namespace = "taskd"

var _ scheduler.Metrics = (*Exporter)(nil)

// Exporter publishes scheduler occupancy and job outcomes as Prometheus collectors.
type Exporter struct {
	running       prom.Gauge
	pending       prom.Gauge
	admittedTotal prom.Counter
	rejectedTotal prom.Counter

	jobsFinishedTotal  *prom.CounterVec
	jobDurationSeconds *prom.HistogramVec
}

// NewExporter registers the collectors on reg, or on the default registerer
// when reg is nil. Collectors already registered by a previous exporter are reused.
func NewExporter(reg prom.Registerer) (*Exporter, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	e := &Exporter{
		running: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "running",
			Help:      "Number of tasks currently holding a scheduler slot.",
		}),
		pending: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "pending",
			Help:      "Number of tasks waiting for a scheduler slot.",
		}),
		admittedTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "admitted_total",
			Help:      "Tasks handed to the thread pool.",
		}),
		rejectedTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "rejected_total",
			Help:      "Tasks the thread pool refused.",
		}),
		jobsFinishedTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Jobs that reached a terminal status.",
		}, []string{"kind", "status"}),
		jobDurationSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time from job submission to its terminal status.",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
	}

	var err error
	if e.running, err = registerCollector(reg, e.running); err != nil {
		return nil, err
	}
	if e.pending, err = registerCollector(reg, e.pending); err != nil {
		return nil, err
	}
	if e.admittedTotal, err = registerCollector(reg, e.admittedTotal); err != nil {
		return nil, err
	}
	if e.rejectedTotal, err = registerCollector(reg, e.rejectedTotal); err != nil {
		return nil, err
	}
	if e.jobsFinishedTotal, err = registerCollector(reg, e.jobsFinishedTotal); err != nil {
		return nil, err
	}
	if e.jobDurationSeconds, err = registerCollector(reg, e.jobDurationSeconds); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Exporter) TaskAdmitted() {
	e.admittedTotal.Inc()
}

func (e *Exporter) TaskRejected() {
	e.rejectedTotal.Inc()
}

func (e *Exporter) Occupancy(running, pending int) {
	e.running.Set(float64(running))
	e.pending.Set(float64(pending))
}

// JobFinished records a job reaching status after d.
func (e *Exporter) JobFinished(kind, status string, d time.Duration) {
	e.jobsFinishedTotal.WithLabelValues(kind, status).Inc()
	e.jobDurationSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
