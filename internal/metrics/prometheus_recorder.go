package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg               *prom.Registry
	stageDuration     *prom.HistogramVec
	buildDuration     prom.Histogram
	stageResults      *prom.CounterVec
	buildOutcome      *prom.CounterVec
	toolchainDuration *prom.HistogramVec
	lastRun           prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "buildproj",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual orchestration stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "buildproj",
		Name:      "build_duration_seconds",
		Help:      "Total orchestration run duration",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "buildproj",
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "buildproj",
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.toolchainDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "buildproj",
		Name:      "toolchain_duration_seconds",
		Help:      "Time spent inside the external toolchain",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"toolchain", "result"})
	pr.lastRun = prom.NewGauge(prom.GaugeOpts{
		Namespace: "buildproj",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome, pr.toolchainDuration, pr.lastRun)
	return pr
}

// Registry returns the registry the collectors are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveToolchainDuration(toolchain string, d time.Duration, success bool) {
	if p == nil || p.toolchainDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.toolchainDuration.WithLabelValues(toolchain, res).Observe(d.Seconds())
}

// WriteTextfile writes the registry in the Prometheus text exposition format
// to path, replacing it atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
