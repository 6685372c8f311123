package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Stats holds batch counters on a private registry so that parallel
// pipelines, and tests, do not collide.
type Stats struct {
	registry *prometheus.Registry

	CallsAudited       prometheus.Counter
	Flags              *prometheus.CounterVec
	MalformedIntervals prometheus.Counter
	OvertalkPct        prometheus.Histogram
	SilencePct         prometheus.Histogram
}

func NewStats() *Stats {
	pctBuckets := []float64{1, 5, 10, 20, 30, 50, 75, 100}
	s := &Stats{
		registry: prometheus.NewRegistry(),
		CallsAudited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auditor_calls_audited_total",
			Help: "Number of calls audited",
		}),
		Flags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditor_flags_total",
			Help: "Number of flagged utterances by issue",
		}, []string{"issue"}),
		MalformedIntervals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auditor_malformed_intervals_total",
			Help: "Utterances whose end preceded their start",
		}),
		OvertalkPct: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditor_call_overtalk_percent",
			Help:    "Per-call overtalk percentage",
			Buckets: pctBuckets,
		}),
		SilencePct: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditor_call_silence_percent",
			Help:    "Per-call silence percentage",
			Buckets: pctBuckets,
		}),
	}
	s.registry.MustRegister(s.CallsAudited, s.Flags, s.MalformedIntervals, s.OvertalkPct, s.SilencePct)
	return s
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (s *Stats) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, s.registry)
}
