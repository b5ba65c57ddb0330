package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameConversions = "conversions"
)

var Conversions = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      NameConversions,
		Help:      "Markdown conversions",
		Namespace: Namespace,
	},
)
