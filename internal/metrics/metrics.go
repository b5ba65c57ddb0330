package metrics

import "github.com/prometheus/client_golang/prometheus"

const Namespace = "memoir"

const LabelStatus = "status"

var (
	StatusSucceeded = prometheus.Labels{LabelStatus: "succeeded"}
	StatusFailed    = prometheus.Labels{LabelStatus: "failed"}
)
