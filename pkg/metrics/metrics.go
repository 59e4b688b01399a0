package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MovementsApplied counts successfully applied movements by type
var MovementsApplied = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_movements_applied_total",
		Help: "Number of stock movements applied, by movement type",
	},
	[]string{"movement_type"},
)

// MovementsRejected counts rejected movements by reason
var MovementsRejected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_movements_rejected_total",
		Help: "Number of stock movements rejected, by reason",
	},
	[]string{"reason"},
)

// ThresholdCrossings counts stock threshold crossings by direction
var ThresholdCrossings = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_threshold_crossings_total",
		Help: "Number of low/out-of-stock threshold crossings, by direction",
	},
	[]string{"direction"},
)
