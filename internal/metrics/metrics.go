// Package metrics counts transaction, chain-switch and projector outcomes.
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

const namespace = "bnbpanel"

// Recorder owns a private registry so tests and multiple sessions never
// collide on the global one.
type Recorder struct {
	reg *prometheus.Registry

	TxOutcomes        *prometheus.CounterVec
	ChainSwitches     *prometheus.CounterVec
	ProjectorFailures *prometheus.CounterVec
	ProjectorRuns     *prometheus.HistogramVec
}

// New builds a Recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		TxOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_outcomes_total",
			Help:      "Contract writes by feature, method and outcome.",
		}, []string{"feature", "method", "outcome"}),
		ChainSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_switch_total",
			Help:      "Wallet chain alignment attempts by outcome.",
		}, []string{"outcome"}),
		ProjectorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projector_failures_total",
			Help:      "View refreshes that failed, by feature.",
		}, []string{"feature"}),
		ProjectorRuns: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "projector_duration_seconds",
			Help:      "Time spent reading contract state for one view refresh.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feature"}),
	}
	r.reg.MustRegister(r.TxOutcomes, r.ChainSwitches, r.ProjectorFailures, r.ProjectorRuns)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Tx counts one write outcome. A nil Recorder is a no-op.
func (r *Recorder) Tx(feature, method, outcome string) {
	if r == nil {
		return
	}
	r.TxOutcomes.WithLabelValues(feature, method, outcome).Inc()
}

// ChainSwitch counts one chain alignment outcome.
func (r *Recorder) ChainSwitch(outcome string) {
	if r == nil {
		return
	}
	r.ChainSwitches.WithLabelValues(outcome).Inc()
}

// Projection records a view refresh and whether it failed.
func (r *Recorder) Projection(feature string, took time.Duration, err error) {
	if r == nil {
		return
	}
	r.ProjectorRuns.WithLabelValues(feature).Observe(took.Seconds())
	if err != nil {
		r.ProjectorFailures.WithLabelValues(feature).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
