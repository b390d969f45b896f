package orm

import (
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TablesBuilt counts table definitions made by the registry.
	TablesBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyape_dynamic_tables_built_total",
			Help: "Total number of dynamic table definitions built",
		},
		[]string{"kind"},
	)

	// RegionalRebuilds counts rebuild passes triggered by a regional miss.
	RegionalRebuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyape_regional_rebuilds_total",
			Help: "Total number of regional table rebuild passes triggered by a lookup miss",
		},
		[]string{"prefix"},
	)
)

// RegisterMetrics registers the registry collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{TablesBuilt, RegionalRebuilds} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return errors.Trace(err)
		}
	}
	return nil
}
