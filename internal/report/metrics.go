package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/obsidianstack/sensorfusion/internal/runner"
	"github.com/obsidianstack/sensorfusion/pkg/types"
)

const namespace = "sensorfusion_"

// MetricsWriter accumulates run totals and the most recent cycle.
// It is not safe for concurrent use.
type MetricsWriter struct {
	cycles   int
	failures map[string]int
	last     *runner.Cycle
}

// NewMetricsWriter returns an empty MetricsWriter.
func NewMetricsWriter() *MetricsWriter {
	return &MetricsWriter{failures: map[string]int{}}
}

// Emit records c as the latest cycle.
func (m *MetricsWriter) Emit(c *runner.Cycle) error {
	m.cycles++
	if c.Err != nil {
		m.failures[c.Reason()]++
	}
	m.last = c
	return nil
}

// Families builds the metric families for the current state, sorted by name.
func (m *MetricsWriter) Families() []*dto.MetricFamily {
	var fams []*dto.MetricFamily

	fams = append(fams, counter("cycles_total", "Fusion cycles closed in this run.",
		metric(float64(m.cycles))))

	var failed []*dto.Metric
	reasons := make([]string, 0, len(m.failures))
	for r := range m.failures {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		failed = append(failed, metric(float64(m.failures[r]), "reason", r))
	}
	if len(failed) > 0 {
		fams = append(fams, counter("cycles_failed_total", "Cycles that produced no fused value, by reason.", failed...))
	}

	if c := m.last; c != nil {
		fams = append(fams,
			gauge("run_info", "Identifies the run that produced this snapshot.", metric(1, "run_id", c.RunID)),
			gauge("cycle_timestamp_minutes", "Timestamp of the last cycle in minutes since midnight.", metric(float64(c.Time))),
		)
		if c.Result != nil {
			fams = append(fams,
				gauge("fused_value", "Fused sensor value of the last cycle.", metric(c.Result.Value)),
				gauge("components_used", "Principal components used in the last cycle.", metric(float64(c.Result.Components))),
			)
		}

		var counts, values, weights []*dto.Metric
		for _, g := range types.Groups {
			readings := c.Groups[g]
			counts = append(counts, metric(float64(len(readings)), "group", g.String()))
			for _, r := range readings {
				values = append(values, metric(r.Value, "group", g.String(), "sensor", r.Name))
				if w, ok := c.Result.Weight(r.Name); ok && g == types.Valid {
					weights = append(weights, metric(w, "sensor", r.Name))
				}
			}
		}
		fams = append(fams, gauge("group_sensors", "Sensors held in each group.", counts...))
		if len(values) > 0 {
			fams = append(fams, gauge("sensor_value", "Latest reading per sensor.", values...))
		}
		if len(weights) > 0 {
			fams = append(fams, gauge("sensor_weight", "Fusion weight per valid sensor in the last cycle.", weights...))
		}
	}

	sort.Slice(fams, func(i, j int) bool { return fams[i].GetName() < fams[j].GetName() })
	return fams
}

// Encode writes the snapshot to w in Prometheus text format.
func (m *MetricsWriter) Encode(w io.Writer) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range m.Families() {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("report: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile writes the snapshot to path atomically: a temp file in the same
// directory is renamed over path once fully written.
func (m *MetricsWriter) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("report: create temp: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := m.Encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("report: close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("report: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("report: rename: %w", err)
	}
	return nil
}

func gauge(name, help string, ms ...*dto.Metric) *dto.MetricFamily {
	return family(name, help, dto.MetricType_GAUGE, ms)
}

func counter(name, help string, ms ...*dto.Metric) *dto.MetricFamily {
	return family(name, help, dto.MetricType_COUNTER, ms)
}

func family(name, help string, typ dto.MetricType, ms []*dto.Metric) *dto.MetricFamily {
	for _, m := range ms {
		v := m.GetGauge().GetValue()
		if typ == dto.MetricType_COUNTER {
			m.Counter = &dto.Counter{Value: proto.Float64(v)}
			m.Gauge = nil
		}
	}
	return &dto.MetricFamily{
		Name:   proto.String(namespace + name),
		Help:   proto.String(help),
		Type:   typ.Enum(),
		Metric: ms,
	}
}

// metric builds a gauge-valued metric with label pairs given as name, value, ...
func metric(v float64, labels ...string) *dto.Metric {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(v)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(labels[i]),
			Value: proto.String(labels[i+1]),
		})
	}
	return m
}
