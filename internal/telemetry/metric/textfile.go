package metric

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
)

// DefaultExportInterval is used when the configured interval is zero.
const DefaultExportInterval = time.Minute

// WriteTextfile writes every metric in r to path in the text exposition
// format. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metric: write textfile: %w", err)
	}
	return nil
}

// Exporter periodically writes a registry to a textfile.
type Exporter struct {
	registry *Registry
	path     string
	interval time.Duration
	logger   logger.Logger
}

// NewExporter creates an exporter. An empty path disables it.
func NewExporter(r *Registry, path string, interval time.Duration, log logger.Logger) *Exporter {
	if interval <= 0 {
		interval = DefaultExportInterval
	}
	if log == nil {
		log = logger.Default()
	}
	return &Exporter{
		registry: r,
		path:     path,
		interval: interval,
		logger:   log.With("component", "metrics"),
	}
}

// Enabled reports whether a textfile path is configured.
func (e *Exporter) Enabled() bool {
	return e.path != ""
}

// Run writes the textfile every interval until ctx is done, then once
// more so the final counters survive shutdown.
func (e *Exporter) Run(ctx context.Context) {
	if !e.Enabled() {
		return
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.write()
			return
		case <-ticker.C:
			e.write()
		}
	}
}

func (e *Exporter) write() {
	if err := e.registry.WriteTextfile(e.path); err != nil {
		e.logger.Warn("metrics export failed", "path", e.path, "error", err)
	}
}
