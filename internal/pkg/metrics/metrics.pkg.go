// Package metrics holds the Prometheus counters for ledger and invoice flows.
package metrics

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	AppendInsert   = "insert"
	AppendNewBlock = "new_block"
)

type Config struct {
	ServiceName string
	Environment string
}

type Metrics struct {
	itemsAppended        *prometheus.CounterVec
	invoicesCreated      prometheus.Counter
	paymentLinkFailures  *prometheus.CounterVec
	notificationFailures prometheus.Counter
	ledgerConflicts      *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide metrics registered on the default registry.
func Default(cfg Config) *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer, cfg)
	})
	return defaultMetrics
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func New(registerer prometheus.Registerer, cfg Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "order-ledger"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &Metrics{
		itemsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ledger_items_appended_total",
			Help:        "Item rows written to the ledger, by write mode.",
			ConstLabels: constLabels,
		}, []string{"mode"}),
		invoicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "invoices_created_total",
			Help:        "Invoices issued.",
			ConstLabels: constLabels,
		}),
		paymentLinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_link_failures_total",
			Help:        "Invoices issued without a payment link, by provider.",
			ConstLabels: constLabels,
		}, []string{"provider"}),
		notificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "notification_failures_total",
			Help:        "Invoice webhooks that were not accepted.",
			ConstLabels: constLabels,
		}),
		ledgerConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ledger_conflicts_total",
			Help:        "Concurrent modifications detected while writing a ledger block.",
			ConstLabels: constLabels,
		}, []string{"sheet"}),
	}

	registerer.MustRegister(
		m.itemsAppended,
		m.invoicesCreated,
		m.paymentLinkFailures,
		m.notificationFailures,
		m.ledgerConflicts,
	)
	return m
}

// All recorders accept a nil receiver.

func (m *Metrics) ItemsAppended(mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.itemsAppended.WithLabelValues(mode).Add(float64(n))
}

func (m *Metrics) InvoiceCreated() {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc()
}

func (m *Metrics) PaymentLinkFailed(provider string) {
	if m == nil {
		return
	}
	m.paymentLinkFailures.WithLabelValues(provider).Inc()
}

func (m *Metrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.notificationFailures.Inc()
}

func (m *Metrics) LedgerConflict(sheet string) {
	if m == nil {
		return
	}
	m.ledgerConflicts.WithLabelValues(sheet).Inc()
}
