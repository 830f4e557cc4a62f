package metric

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// Snapshot is the daemon state recovered from an exported textfile.
type Snapshot struct {
	ExportedAt    time.Time          `json:"exported_at"`
	Phase         string             `json:"phase"`
	Auth          string             `json:"auth"`
	Battery       float64            `json:"battery_percent"`
	Tasks         []string           `json:"tasks"`
	Sent          map[string]float64 `json:"sent"`
	SendErrors    float64            `json:"send_errors"`
	Received      float64            `json:"received"`
	Deescalations float64            `json:"deescalations"`
	Recoveries    float64            `json:"recoveries"`
}

// authPhases names the values of the pairing auth_phase gauge.
var authPhases = []string{"unauthenticated", "pending", "authenticated"}

// ReadTextfile parses a textfile written by WriteTextfile. ExportedAt is
// the file's modification time.
func ReadTextfile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metric: open textfile: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("metric: stat textfile: %w", err)
	}

	snap, err := ParseSnapshot(f)
	if err != nil {
		return nil, err
	}
	snap.ExportedAt = info.ModTime()
	return snap, nil
}

// ParseSnapshot reads the device metrics from text exposition format.
// Metrics missing from the input keep their zero value.
func ParseSnapshot(r io.Reader) (*Snapshot, error) {
	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(r)
	if err != nil {
		return nil, fmt.Errorf("metric: parse textfile: %w", err)
	}

	snap := &Snapshot{
		Tasks: []string{},
		Sent:  make(map[string]float64),
	}

	for label, v := range labelled(families["tracklink_supervisor_phase"], "phase") {
		if v == 1 {
			snap.Phase = label
		}
	}
	if mf, ok := families["tracklink_pairing_auth_phase"]; ok {
		if i := int(single(mf)); i >= 0 && i < len(authPhases) {
			snap.Auth = authPhases[i]
		}
	}
	snap.Battery = single(families["tracklink_battery_percent"])

	for task, v := range labelled(families["tracklink_task_running"], "task") {
		if v == 1 {
			snap.Tasks = append(snap.Tasks, task)
		}
	}
	sort.Strings(snap.Tasks)

	for kind, v := range labelled(families["tracklink_sms_sent_total"], "kind") {
		snap.Sent[kind] = v
	}
	for _, v := range labelled(families["tracklink_sms_send_errors_total"], "kind") {
		snap.SendErrors += v
	}
	snap.Received = single(families["tracklink_sms_received_total"])
	snap.Deescalations = single(families["tracklink_supervisor_deescalations_total"])
	snap.Recoveries = single(families["tracklink_supervisor_recoveries_total"])

	return snap, nil
}

// TotalSent sums outbound messages over every kind.
func (s *Snapshot) TotalSent() float64 {
	var n float64
	for _, v := range s.Sent {
		n += v
	}
	return n
}

// single returns the value of an unlabelled gauge or counter.
func single(mf *dto.MetricFamily) float64 {
	if mf == nil || len(mf.GetMetric()) == 0 {
		return 0
	}
	return value(mf.GetMetric()[0])
}

// labelled returns the values of mf keyed by the named label.
func labelled(mf *dto.MetricFamily, name string) map[string]float64 {
	out := make(map[string]float64)
	if mf == nil {
		return out
	}
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == name {
				out[lp.GetValue()] = value(m)
			}
		}
	}
	return out
}

func value(m *dto.Metric) float64 {
	switch {
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetUntyped() != nil:
		return m.GetUntyped().GetValue()
	}
	return 0
}
