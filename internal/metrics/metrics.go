// Package metrics exports sequencer activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "animplay"

// Recorder implements anim.StepObserver.
type Recorder struct {
	steps        prometheus.Counter
	stepDuration prometheus.Histogram
	trackTime    prometheus.Gauge
	targets      prometheus.Gauge
	cleared      prometheus.Counter
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "steps_total",
			Help:      "Number of sequencer steps that sampled and applied a pose.",
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "step_duration_seconds",
			Help:      "Time spent updating all targets and listeners in one step.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		trackTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "track_time_seconds",
			Help:      "Track time sampled by the most recent step.",
		}),
		targets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "targets",
			Help:      "Number of targets updated by the most recent step.",
		}),
		cleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "targets_cleared_total",
			Help:      "Number of times a play-once sequence finished and dropped its targets.",
		}),
	}

	for _, c := range []prometheus.Collector{r.steps, r.stepDuration, r.trackTime, r.targets, r.cleared} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// StepCompleted records one sequencer step.
func (r *Recorder) StepCompleted(trackTime float32, targets int, took time.Duration) {
	r.steps.Inc()
	r.stepDuration.Observe(took.Seconds())
	r.trackTime.Set(float64(trackTime))
	r.targets.Set(float64(targets))
}

// TargetsCleared records the end of a play-once sequence.
func (r *Recorder) TargetsCleared() {
	r.cleared.Inc()
	r.targets.Set(0)
}

// Serve exposes gatherer on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
