// Package metrics exposes Prometheus instrumentation for the case engine.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lexmigra/caseops/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the business counters and gauges of the service.
type Metrics struct {
	TransitionsApplied  *prometheus.CounterVec
	TransitionsRejected *prometheus.CounterVec
	DocumentsReviewed   *prometheus.CounterVec
	InstallmentsIssued  prometheus.Counter
	ContractsSigned     prometheus.Counter
	AlertsRaised        *prometheus.CounterVec
	SuspendedCases      prometheus.Gauge

	registry *prometheus.Registry
}

// New registers the metric set under the caseops namespace.
func New(serviceName string) *Metrics {
	m := &Metrics{
		TransitionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caseops",
			Subsystem: serviceName,
			Name:      "case_transitions_total",
			Help:      "Case technical-status transitions applied",
		}, []string{"to_status"}),
		TransitionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caseops",
			Subsystem: serviceName,
			Name:      "case_transitions_rejected_total",
			Help:      "Case transitions rejected by kind",
		}, []string{"reason"}),
		DocumentsReviewed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caseops",
			Subsystem: serviceName,
			Name:      "documents_reviewed_total",
			Help:      "Document approvals and rejections",
		}, []string{"outcome"}),
		InstallmentsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "caseops",
			Subsystem: serviceName,
			Name:      "installments_issued_total",
			Help:      "Installments generated from signed contracts",
		}),
		ContractsSigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "caseops",
			Subsystem: serviceName,
			Name:      "contracts_signed_total",
			Help:      "Contracts signed",
		}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caseops",
			Subsystem: serviceName,
			Name:      "sla_alerts_total",
			Help:      "SLA alerts raised by kind",
		}, []string{"kind"}),
		SuspendedCases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "caseops",
			Subsystem: serviceName,
			Name:      "suspended_cases",
			Help:      "Cases currently suspended",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.TransitionsApplied,
		m.TransitionsRejected,
		m.DocumentsReviewed,
		m.InstallmentsIssued,
		m.ContractsSigned,
		m.AlertsRaised,
		m.SuspendedCases,
	)

	return m
}

// Serve exposes the registry on its own port; it blocks, callers run it in a
// goroutine.
func (m *Metrics) Serve(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	logger.Info(context.Background(), "metrics endpoint started", "port", port, "path", path)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
