// Package metrics provides Prometheus metrics for the login client.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qqlogin"

// Metrics contains every Prometheus metric the login client exposes.
type Metrics struct {
	LoginAttempts  *prometheus.CounterVec
	LoginDuration  prometheus.Histogram
	FramesSent     *prometheus.CounterVec
	FramesReceived *prometheus.CounterVec
	CodecErrors    *prometheus.CounterVec
	SequenceWraps  prometheus.Counter
}

var (
	defaultMetrics *Metrics
	metricsOnce    sync.Once
)

// Default returns the default metrics instance, registered against
// prometheus.DefaultRegisterer exactly once.
func Default() *Metrics {
	metricsOnce.Do(func() {
		defaultMetrics = NewMetrics()
	})
	return defaultMetrics
}

// NewMetrics creates a new Metrics instance registered against the default
// registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a new Metrics instance registered against
// reg, so tests can use a private registry instead of the global one.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total login attempts by terminal result",
		}, []string{"result"}),
		LoginDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "login_duration_seconds",
			Help:      "Histogram of login duration from handshake start to terminal state",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		FramesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Total SSO frames sent, by cmd",
		}, []string{"cmd"}),
		FramesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Total SSO frames received, by cmd",
		}, []string{"cmd"}),
		CodecErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_errors_total",
			Help:      "Total codec errors by stage",
		}, []string{"stage"}),
		SequenceWraps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequence_wraps_total",
			Help:      "Total times request_seq or client_seq wrapped past 200 back to 0",
		}),
	}
}

// Login result labels used with LoginAttempts.
const (
	ResultSuccess        = "success"
	ResultCaptcha        = "captcha"
	ResultRejected       = "rejected"
	ResultTimeout        = "timeout"
	ResultTransportError = "transport_error"
)

// Codec error stage labels used with CodecErrors.
const (
	StageJCE = "jce"
	StageTLV = "tlv"
	StageWup = "wup"
	StageSSO = "sso"
)

// RecordLoginAttempt records a login attempt's terminal result.
func (m *Metrics) RecordLoginAttempt(result string) {
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// RecordLoginDuration records how long a login attempt took to reach a
// terminal state, in seconds.
func (m *Metrics) RecordLoginDuration(seconds float64) {
	m.LoginDuration.Observe(seconds)
}

// RecordFrameSent records an outbound SSO frame for cmd.
func (m *Metrics) RecordFrameSent(cmd string) {
	m.FramesSent.WithLabelValues(cmd).Inc()
}

// RecordFrameReceived records an inbound SSO frame for cmd.
func (m *Metrics) RecordFrameReceived(cmd string) {
	m.FramesReceived.WithLabelValues(cmd).Inc()
}

// RecordCodecError records a codec failure at stage.
func (m *Metrics) RecordCodecError(stage string) {
	m.CodecErrors.WithLabelValues(stage).Inc()
}

// RecordSequenceWrap records request_seq or client_seq wrapping past its
// modulus back to 0.
func (m *Metrics) RecordSequenceWrap() {
	m.SequenceWraps.Inc()
}
