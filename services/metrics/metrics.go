// Package metricsvc exposes the Prometheus counters of the challenge lifecycle.
package metricsvc

import (
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

type EcoMetrics struct {
	joins               *prometheus.CounterVec
	awards              prometheus.Counter
	pointsAwarded       prometheus.Counter
	withdrawals         prometheus.Counter
	enrollmentsExpired  prometheus.Counter
	recordsLogged       *prometheus.CounterVec
	dashboardsComputed  prometheus.Counter
	leaderboardRequests prometheus.Counter
}

var (
	ecoOnce     sync.Once
	ecoRegistry *EcoMetrics
)

// Eco returns the process wide metrics, registering them on first use.
func Eco() *EcoMetrics {
	ecoOnce.Do(func() {
		ecoRegistry = &EcoMetrics{
			joins: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ecoplus_challenge_joins_total",
				Help: "Challenge join attempts by outcome.",
			}, []string{"outcome"}),
			awards: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ecoplus_challenge_awards_total",
				Help: "Enrollments completed with an award.",
			}),
			pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ecoplus_points_awarded_total",
				Help: "Sum of points awarded.",
			}),
			withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ecoplus_challenge_withdrawals_total",
				Help: "Enrollments withdrawn by their user.",
			}),
			enrollmentsExpired: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ecoplus_enrollments_expired_total",
				Help: "Joined enrollments failed after their challenge ended.",
			}),
			recordsLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ecoplus_consumption_records_total",
				Help: "Consumption records logged by resource.",
			}, []string{"resource"}),
			dashboardsComputed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ecoplus_dashboards_computed_total",
				Help: "Dashboards computed.",
			}),
			leaderboardRequests: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ecoplus_leaderboard_requests_total",
				Help: "Leaderboards computed.",
			}),
		}
		prometheus.MustRegister(
			ecoRegistry.joins,
			ecoRegistry.awards,
			ecoRegistry.pointsAwarded,
			ecoRegistry.withdrawals,
			ecoRegistry.enrollmentsExpired,
			ecoRegistry.recordsLogged,
			ecoRegistry.dashboardsComputed,
			ecoRegistry.leaderboardRequests,
		)
	})
	return ecoRegistry
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome labels an operation result by the kind of its error.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch errors.Cause(err).(type) {
	case *core.ValidationError:
		return "invalid"
	case *core.NotFoundError:
		return "not_found"
	case *core.ConflictError:
		return "conflict"
	case *core.StateError:
		return "state"
	default:
		return "error"
	}
}

func (m *EcoMetrics) ObserveJoin(err error) {
	if m == nil {
		return
	}
	m.joins.WithLabelValues(Outcome(err)).Inc()
}

func (m *EcoMetrics) ObserveAward(points int) {
	if m == nil {
		return
	}
	m.awards.Inc()
	if points > 0 {
		m.pointsAwarded.Add(float64(points))
	}
}

func (m *EcoMetrics) ObserveWithdrawal() {
	if m == nil {
		return
	}
	m.withdrawals.Inc()
}

func (m *EcoMetrics) ObserveExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.enrollmentsExpired.Add(float64(n))
}

func (m *EcoMetrics) ObserveRecord(resource string) {
	if m == nil {
		return
	}
	if resource == "" {
		resource = "unknown"
	}
	m.recordsLogged.WithLabelValues(resource).Inc()
}

func (m *EcoMetrics) ObserveDashboard() {
	if m == nil {
		return
	}
	m.dashboardsComputed.Inc()
}

func (m *EcoMetrics) ObserveLeaderboard() {
	if m == nil {
		return
	}
	m.leaderboardRequests.Inc()
}
