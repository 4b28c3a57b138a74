package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ScansRecorded counts successful self-scans by classification.
var ScansRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "attendance_scans_recorded_total",
	Help: "Self-scan attendance records written, by status.",
}, []string{"status"})

// ScansRejected counts rejected self-scans by rejection reason.
var ScansRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "attendance_scans_rejected_total",
	Help: "Self-scans rejected by the eligibility pipeline, by reason.",
}, []string{"reason"})

// SessionsIssued counts lecture sessions created by teachers.
var SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "attendance_sessions_issued_total",
	Help: "Lecture sessions issued with a QR credential.",
})
