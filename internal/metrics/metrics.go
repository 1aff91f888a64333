package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AccessRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partnerhub_access_requests_total",
			Help: "Partner access requests by outcome",
		},
		[]string{"outcome"},
	)

	AccessVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partnerhub_access_verifications_total",
			Help: "Partner token verifications by outcome",
		},
		[]string{"outcome"},
	)

	QuotaDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partnerhub_quota_decisions_total",
			Help: "Quota decisions by kind (subscribed, free, exceeded)",
		},
		[]string{"decision"},
	)

	WorkflowSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partnerhub_workflow_steps_total",
			Help: "Executed workflow steps by output kind",
		},
		[]string{"kind"},
	)

	WorkflowRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "partnerhub_workflow_run_duration_seconds",
			Help:    "Duration of a full workflow run",
			Buckets: prometheus.DefBuckets,
		},
	)
)
