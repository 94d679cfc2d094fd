package metrics

import "github.com/prometheus/client_golang/prometheus"

// TriageMetrics exposes counters for the analysis pipeline.
type TriageMetrics struct {
	analysesTotal   *prometheus.CounterVec
	redFlagTotal    prometheus.Counter
	redactionsTotal *prometheus.CounterVec
	ttsCacheTotal   *prometheus.CounterVec
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curesight",
			Subsystem: "triage",
			Name:      "analyses_total",
			Help:      "Total symptom analyses by input type, category and severity",
		}, []string{"input_type", "category", "severity"}),
		redFlagTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "curesight",
			Subsystem: "triage",
			Name:      "red_flag_total",
			Help:      "Analyses forced to emergency by a red-flag phrase",
		}),
		redactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curesight",
			Subsystem: "redact",
			Name:      "substitutions_total",
			Help:      "PII substitutions by pattern",
		}, []string{"pattern"}),
		ttsCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curesight",
			Subsystem: "tts",
			Name:      "cache_total",
			Help:      "TTS cache lookups by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.analysesTotal, m.redFlagTotal, m.redactionsTotal, m.ttsCacheTotal)
	return m
}

func (m *TriageMetrics) ObserveAnalysis(inputType, category, severity string, redFlag bool) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(inputType, category, severity).Inc()
	if redFlag {
		m.redFlagTotal.Inc()
	}
}

func (m *TriageMetrics) ObserveRedactions(counts map[string]int) {
	if m == nil {
		return
	}
	for pattern, n := range counts {
		m.redactionsTotal.WithLabelValues(pattern).Add(float64(n))
	}
}

func (m *TriageMetrics) ObserveTTSCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ttsCacheTotal.WithLabelValues(result).Inc()
}
