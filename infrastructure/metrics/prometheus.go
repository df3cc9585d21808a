package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipscan_frames_analyzed_total",
		Help: "Total number of frames scored across all sessions",
	})

	FrameScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clipscan_frame_score",
		Help:    "Distribution of per-frame anomaly scores",
		Buckets: []float64{0.01, 0.02, 0.04, 0.06, 0.08, 0.1, 0.15, 0.2, 0.3, 0.5, 1},
	})

	VerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipscan_verdicts_total",
		Help: "Total number of analysed clips, by label",
	}, []string{"label"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clipscan_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"stage"})

	FailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipscan_failures_total",
		Help: "Total number of aborted sessions, by stage",
	}, []string{"stage"})
)
