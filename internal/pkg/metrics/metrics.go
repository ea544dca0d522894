package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "video_upload_bytes_total",
		Help: "Bytes written to staging files by continue-upload calls",
	})

	UploadConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "video_upload_offset_conflicts_total",
		Help: "Continue-upload calls rejected because the offset did not match",
	})

	UploadsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "video_uploads_completed_total",
		Help: "Uploads that reached their declared size and were queued",
	})

	TranscodeJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_transcode_jobs_total",
		Help: "Transcode jobs by terminal status",
	}, []string{"status"})

	TranscodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "video_transcode_duration_seconds",
		Help:    "Wall time of a transcode job from claim to terminal status",
		Buckets: prometheus.ExponentialBuckets(5, 2, 10),
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "video_transcode_queue_depth",
		Help: "Jobs enqueued minus jobs dequeued by this process",
	})
)
