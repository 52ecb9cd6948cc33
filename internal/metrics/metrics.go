// Package metrics exports pipeline pass and task timings as Prometheus collectors.
package metrics

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Options controls collector configuration.
type Options struct {
	// PassBuckets and TaskBuckets default to exponential buckets from 10µs.
	PassBuckets []float64
	TaskBuckets []float64
}

// Exporter owns the collectors shared by every pipeline.
type Exporter struct {
	passesTotal         *prom.CounterVec
	passDurationSeconds *prom.HistogramVec
	taskDurationSeconds *prom.HistogramVec
}

// NewExporter creates and registers the collectors on reg. Registering twice
// on the same registry reuses the existing collectors.
func NewExporter(namespace string, reg prom.Registerer, opts Options) (*Exporter, error) {
	if namespace == "" {
		namespace = "celerity"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	passBuckets := opts.PassBuckets
	if len(passBuckets) == 0 {
		passBuckets = prom.ExponentialBuckets(0.00001, 4, 10)
	}
	taskBuckets := opts.TaskBuckets
	if len(taskBuckets) == 0 {
		taskBuckets = prom.ExponentialBuckets(0.00001, 4, 10)
	}

	passesVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_passes_total",
		Help:      "Total number of completed pipeline passes.",
	}, []string{"pipeline", "type"})
	passVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_pass_duration_seconds",
		Help:      "Wall time of one pipeline pass in seconds.",
		Buckets:   passBuckets,
	}, []string{"pipeline", "type"})
	taskVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task body execution time in seconds.",
		Buckets:   taskBuckets,
	}, []string{"pipeline", "task"})

	var err error
	if passesVec, err = registerCollector(reg, passesVec); err != nil {
		return nil, err
	}
	if passVec, err = registerCollector(reg, passVec); err != nil {
		return nil, err
	}
	if taskVec, err = registerCollector(reg, taskVec); err != nil {
		return nil, err
	}

	return &Exporter{
		passesTotal:         passesVec,
		passDurationSeconds: passVec,
		taskDurationSeconds: taskVec,
	}, nil
}

// Pipeline returns the observer for one pipeline. A nil Exporter yields a
// nil observer, which records nothing.
func (e *Exporter) Pipeline(id, kind string) *PipelineObserver {
	if e == nil {
		return nil
	}
	return &PipelineObserver{
		exporter: e,
		id:       normalizeLabel(id, "unknown"),
		passes:   e.passesTotal.WithLabelValues(normalizeLabel(id, "unknown"), normalizeLabel(kind, "unknown")),
		duration: e.passDurationSeconds.WithLabelValues(normalizeLabel(id, "unknown"), normalizeLabel(kind, "unknown")),
	}
}

// PipelineObserver records passes and tasks of a single pipeline.
type PipelineObserver struct {
	exporter *Exporter
	id       string
	passes   prom.Counter
	duration prom.Observer
}

// ObservePass records one completed pass.
func (o *PipelineObserver) ObservePass(d time.Duration) {
	if o == nil {
		return
	}
	o.passes.Inc()
	o.duration.Observe(d.Seconds())
}

// ObserveTask records one task body execution.
func (o *PipelineObserver) ObserveTask(name string, d time.Duration) {
	if o == nil {
		return
	}
	o.exporter.taskDurationSeconds.WithLabelValues(o.id, normalizeLabel(name, "unknown")).Observe(d.Seconds())
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
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
