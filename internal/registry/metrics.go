package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// recordsCreated counts records created by reconciliation, per bundle.
var recordsCreated = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "settings_records_created_total",
		Help: "Number of settings records created by reconciliation, differentiated by bundle.",
	},
	[]string{"bundle"},
)
