package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/lightspeedtech/lightspeed/internal/errors"
	"github.com/lightspeedtech/lightspeed/internal/observability"
)

// hopByHop headers are not forwarded from the exporter response.
var hopByHop = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// metricsProxy serves the exporter's Prometheus output on the main port, so a
// scraper only needs the public listener.
type metricsProxy struct {
	client *http.Client
}

func newMetricsProxy() *metricsProxy {
	return &metricsProxy{client: &http.Client{Timeout: 5 * time.Second}}
}

func (p *metricsProxy) exporterURL() string {
	port := observability.GetMetricsPort()
	if port == 0 {
		port = observability.DefaultMetricsPort
	}
	return fmt.Sprintf("http://127.0.0.1:%d/metrics", port)
}

func (p *metricsProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if observability.PrometheusExporter == nil {
		apperrors.RespondWithError(w, r, apperrors.NewServiceUnavailableError("Metrics exporter not initialized"))
		return
	}

	target := p.exporterURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapInternal(ctx, err, "Unable to construct metrics request"))
		return
	}
	if accept := r.Header.Get("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		envelope := apperrors.Wrap(ctx, apperrors.CodeExternalService, err, "Prometheus exporter unavailable")
		apperrors.RespondWithError(w, r, apperrors.WithContext(envelope, map[string]interface{}{"metrics_url": target}))
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for key, values := range resp.Header {
		if hopByHop[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	if resp.Header.Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil && observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Failed to write metrics response", zap.Error(err))
	}
}
