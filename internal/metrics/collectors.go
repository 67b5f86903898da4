package metrics

import "github.com/prometheus/client_golang/prometheus"

// PoolStatFunc returns storage connection pool statistics without importing
// the driver packages.
type PoolStatFunc func() (total, idle, acquired int32)

// poolCollector implements prometheus.Collector for pool stats.
type poolCollector struct {
	statFunc PoolStatFunc

	totalDesc    *prometheus.Desc
	idleDesc     *prometheus.Desc
	acquiredDesc *prometheus.Desc
}

// NewPoolCollector creates a collector that exposes pool gauges.
func NewPoolCollector(statFunc PoolStatFunc) prometheus.Collector {
	return &poolCollector{
		statFunc: statFunc,
		totalDesc: prometheus.NewDesc(
			"fiveplanner_storage_pool_total_conns",
			"Total number of connections in the storage pool.",
			nil, nil,
		),
		idleDesc: prometheus.NewDesc(
			"fiveplanner_storage_pool_idle_conns",
			"Number of idle connections in the storage pool.",
			nil, nil,
		),
		acquiredDesc: prometheus.NewDesc(
			"fiveplanner_storage_pool_acquired_conns",
			"Number of connections in use.",
			nil, nil,
		),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalDesc
	ch <- c.idleDesc
	ch <- c.acquiredDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	total, idle, acquired := c.statFunc()
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(total))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(idle))
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(acquired))
}

// State is a point-in-time count of the planner's collections.
type State struct {
	Players        int
	Pitches        int
	ActiveSessions int
	History        int
}

// StateFunc reports the current planner contents.
type StateFunc func() State

type stateCollector struct {
	statFunc StateFunc
	desc     *prometheus.Desc
}

// NewStateCollector exposes collection sizes as one gauge labelled by
// collection name.
func NewStateCollector(statFunc StateFunc) prometheus.Collector {
	return &stateCollector{
		statFunc: statFunc,
		desc: prometheus.NewDesc(
			"fiveplanner_collection_items",
			"Number of items currently stored per collection.",
			[]string{"collection"}, nil,
		),
	}
}

func (c *stateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *stateCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.statFunc()
	for _, v := range []struct {
		name  string
		count int
	}{
		{"players", st.Players},
		{"pitches", st.Pitches},
		{"active_sessions", st.ActiveSessions},
		{"history", st.History},
	} {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(v.count), v.name)
	}
}
