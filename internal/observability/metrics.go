package observability

import (
	"fmt"
	"net"
	"strconv"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/fulmenhq/gofulmen/telemetry/exporters"
)

// DefaultMetricsPort is where the exporter listens when nothing else is configured.
const DefaultMetricsPort = 9090

var (
	// TelemetrySystem is the process-wide telemetry system. Nil means metrics are disabled.
	TelemetrySystem *telemetry.System

	// PrometheusExporter serves the Prometheus text format on its own port.
	PrometheusExporter *exporters.PrometheusExporter

	metricsPort int
)

// InitMetrics starts the Prometheus exporter on port (0 picks a free port)
// and installs a telemetry system that emits to it.
func InitMetrics(namespace string, port int) error {
	if port < 0 {
		port = 0
	}
	metricsPort = port

	PrometheusExporter = exporters.NewPrometheusExporter(namespace, fmt.Sprintf(":%d", port))
	if err := PrometheusExporter.Start(); err != nil {
		return fmt.Errorf("start prometheus exporter: %w", err)
	}

	if actual, err := resolvePort(PrometheusExporter.GetAddr()); err == nil {
		metricsPort = actual
	}

	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: PrometheusExporter,
	})
	if err != nil {
		return fmt.Errorf("create telemetry system: %w", err)
	}

	TelemetrySystem = sys
	return nil
}

// GetMetricsPort returns the port the Prometheus exporter is bound to.
func GetMetricsPort() int {
	return metricsPort
}

func resolvePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
