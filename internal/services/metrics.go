package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cascadeOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cascade_operations_total",
		Help: "Cascade delete, soft delete and count runs per entity",
	},
	[]string{"entity", "operation"},
)
