package openmp

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors for one intrinsic surface. A
// nil *Metrics is valid and every method on it is a no-op, so callers
// that don't want metrics can skip registration entirely.
type Metrics struct {
	forksTotal       *prometheus.CounterVec
	teamSize         prometheus.Histogram
	barrierWait      prometheus.Histogram
	teamErrorsTotal  prometheus.Counter
	distributedJoin  prometheus.Histogram
}

// NewMetrics builds and registers a Metrics set against reg. Pass
// prometheus.NewRegistry() in tests to avoid polluting the default
// registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		forksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openmp_forks_total",
			Help: "Number of __kmpc_fork_call dispatches, by backend.",
		}, []string{"backend"}),
		teamSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "openmp_team_size",
			Help:    "Team sizes chosen for parallel regions.",
			Buckets: prometheus.LinearBuckets(1, 4, 8),
		}),
		barrierWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "openmp_barrier_wait_seconds",
			Help: "Time spent blocked in __kmpc_barrier.",
		}),
		teamErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "openmp_team_errors_total",
			Help: "Number of team members that reported a nonzero error code.",
		}),
		distributedJoin: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "openmp_distributed_join_seconds",
			Help: "Time spent waiting for a single distributed child result.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.forksTotal, m.teamSize, m.barrierWait, m.teamErrorsTotal, m.distributedJoin)
	}
	return m
}

func (m *Metrics) observeFork(backend string, numThreads int) {
	if m == nil {
		return
	}
	m.forksTotal.WithLabelValues(backend).Inc()
	m.teamSize.Observe(float64(numThreads))
}

func (m *Metrics) ObserveBarrierWaitSeconds(s float64) {
	if m == nil {
		return
	}
	m.barrierWait.Observe(s)
}

func (m *Metrics) observeTeamErrors(n int) {
	if m == nil || n == 0 {
		return
	}
	m.teamErrorsTotal.Add(float64(n))
}

func (m *Metrics) observeDistributedJoinSeconds(s float64) {
	if m == nil {
		return
	}
	m.distributedJoin.Observe(s)
}
