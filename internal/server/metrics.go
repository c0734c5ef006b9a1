package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	videosProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytchat_videos_processed_total",
		Help: "Videos successfully fetched, chunked and indexed",
	})
	questionsAnswered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytchat_questions_answered_total",
		Help: "Questions answered against the active transcript index",
	})
	upstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytchat_upstream_errors_total",
		Help: "Failures talking to external services",
	}, []string{"service"})
	videoProcessingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ytchat_video_processing_seconds",
		Help:    "End-to-end duration of the process-video pipeline",
		Buckets: prometheus.DefBuckets,
	})
)
