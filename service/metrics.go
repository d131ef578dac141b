package service

import (
	"github.com/billbatista/chama360/chama"
	"github.com/billbatista/chama360/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	commands     *prometheus.CounterVec
	ledgerCents  *prometheus.CounterVec
	adminChanges prometheus.Counter
	chamas       prometheus.Gauge
}

// NewMetrics registers the engine metrics with reg. A nil registry yields
// working but unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chama_commands_total",
			Help: "Commands handled, by command and result code",
		}, []string{"command", "result"}),
		ledgerCents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chama_ledger_approved_cents_total",
			Help: "Approved transaction volume in cents, by transaction type",
		}, []string{"type"}),
		adminChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "chama_admin_changes_total",
			Help: "Admin successions resolved by vote",
		}),
		chamas: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chama_groups",
			Help: "Chamas held by the engine",
		}),
	}
}

func (m *Metrics) observe(command string, err error) {
	result := "ok"
	if err != nil {
		result = string(chama.CodeOf(err))
	}
	m.commands.WithLabelValues(command, result).Inc()
}

func (m *Metrics) approved(tx ledger.Transaction) {
	if tx.Status != ledger.StatusApproved {
		return
	}
	m.ledgerCents.WithLabelValues(string(tx.Type)).Add(float64(tx.Amount))
}
