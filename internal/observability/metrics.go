package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	Reconciles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vtnotif_reconcile_total", Help: "Channel reconciliation results"},
		[]string{"result"},
	)
	ProvisionOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vtnotif_provision_total", Help: "Touchpoint provisioning outcomes"},
		[]string{"action", "result"},
	)
	ProvisionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "vtnotif_provision_latency_seconds", Help: "Provisioning call latency"},
	)
	SkippedChannels = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vtnotif_channel_skipped_total", Help: "Channels skipped for an alert"},
		[]string{"reason"},
	)
	LedgerAppends = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vtnotif_ledger_appends_total", Help: "Delivery status entries appended"},
		[]string{"status"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(Reconciles, ProvisionOps, ProvisionLatency, SkippedChannels, LedgerAppends)
}
