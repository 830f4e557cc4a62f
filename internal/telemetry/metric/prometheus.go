package metric

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "tracklink"

// Registry holds all device metrics.
type Registry struct {
	registry *prometheus.Registry

	// Supervisor metrics
	Phase         *prometheus.GaugeVec
	PhaseChanges  *prometheus.CounterVec
	Deescalations prometheus.Counter
	Recoveries    prometheus.Counter

	// Pairing metrics
	AuthPhase       prometheus.Gauge
	PairingAttempts *prometheus.CounterVec

	// Transport metrics
	SMSSent       *prometheus.CounterVec
	SMSSendErrors *prometheus.CounterVec
	SMSReceived   prometheus.Counter
	SMSDuplicates prometheus.Counter
	SMSRateWaits  prometheus.Counter
	DialAttempts  prometheus.Counter

	// Battery metrics
	BatteryPercent prometheus.Gauge
	BatteryVoltage prometheus.Gauge

	// Task metrics
	TaskRunning *prometheus.GaugeVec
	TaskStarts  *prometheus.CounterVec
	TaskCancels *prometheus.CounterVec

	// Indicator metrics
	Signals *prometheus.CounterVec
}

// NewRegistry creates a registry with every device metric registered,
// plus the Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		Phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "phase",
			Help:      "1 for the current supervisor phase, 0 otherwise",
		}, []string{"phase"}),
		PhaseChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "phase_changes_total",
			Help:      "Supervisor phase transitions by target phase",
		}, []string{"phase"}),
		Deescalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "deescalations_total",
			Help:      "Low battery de-escalations",
		}),
		Recoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "recoveries_total",
			Help:      "Battery recoveries that resumed paused tasks",
		}),

		AuthPhase: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "auth_phase",
			Help:      "Pairing phase: 0 unauthenticated, 1 pending reply, 2 authenticated",
		}),
		PairingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "attempts_total",
			Help:      "Pairing steps by result",
		}, []string{"result"}),

		SMSSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sms",
			Name:      "sent_total",
			Help:      "Outbound SMS sent by message kind",
		}, []string{"kind"}),
		SMSSendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sms",
			Name:      "send_errors_total",
			Help:      "Outbound SMS send failures by message kind",
		}, []string{"kind"}),
		SMSReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sms",
			Name:      "received_total",
			Help:      "Inbound SMS read from the modem",
		}),
		SMSDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sms",
			Name:      "duplicates_total",
			Help:      "Inbound SMS dropped as duplicate deliveries",
		}),
		SMSRateWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sms",
			Name:      "rate_waits_total",
			Help:      "Outbound SMS delayed by the send rate limiter",
		}),
		DialAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "call",
			Name:      "dial_attempts_total",
			Help:      "Voice call dial attempts",
		}),

		BatteryPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "battery",
			Name:      "percent",
			Help:      "Last battery charge reading in percent",
		}),
		BatteryVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "battery",
			Name:      "voltage_volts",
			Help:      "Last battery voltage reading",
		}),

		TaskRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "running",
			Help:      "1 while the named task runs",
		}, []string{"task"}),
		TaskStarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "starts_total",
			Help:      "Task starts by task name",
		}, []string{"task"}),
		TaskCancels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "cancellations_total",
			Help:      "Task cancellations by task name",
		}, []string{"task"}),

		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indicator",
			Name:      "signals_total",
			Help:      "Blink codes shown by fault",
		}, []string{"code"}),
	}

	r.registry.MustRegister(
		r.Phase, r.PhaseChanges, r.Deescalations, r.Recoveries,
		r.AuthPhase, r.PairingAttempts,
		r.SMSSent, r.SMSSendErrors, r.SMSReceived, r.SMSDuplicates, r.SMSRateWaits, r.DialAttempts,
		r.BatteryPercent, r.BatteryVoltage,
		r.TaskRunning, r.TaskStarts, r.TaskCancels,
		r.Signals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Prometheus returns the underlying registry so other components (the
// journal's Badger engine) can register their own collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// SetPhase marks phase as current and counts the transition.
func (r *Registry) SetPhase(phase string, all []string) {
	for _, p := range all {
		v := 0.0
		if p == phase {
			v = 1
		}
		r.Phase.WithLabelValues(p).Set(v)
	}
	r.PhaseChanges.WithLabelValues(phase).Inc()
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry, created on first use.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}
