package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameExports       = "exports"
	NameArtifactLoads = "artifact_loads"
	LabelKind         = "kind"
)

var Exports = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameExports,
		Help:      "Document exports",
		Namespace: Namespace,
	},
	[]string{LabelStatus},
)

var ArtifactLoads = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameArtifactLoads,
		Help:      "Artifact loads",
		Namespace: Namespace,
	},
	[]string{LabelKind, LabelStatus},
)
