package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodlens_analyses_total",
			Help: "Total number of label analyses",
		},
		[]string{"outcome"}, // outcome: ok, scoring_invalid, no_text, decode_error
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodlens_stage_duration_seconds",
			Help:    "Per-stage processing duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 25, 50},
		},
		[]string{"stage"}, // stage: preprocess, detect, ocr
	)

	textsPooled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodlens_texts_pooled_total",
			Help: "Total OCR detections kept above the confidence floor",
		},
	)

	tableDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodlens_table_detections_total",
			Help: "Nutrition-table detection attempts",
		},
		[]string{"accepted"},
	)
)
