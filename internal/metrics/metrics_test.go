package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	if m == nil {
		t.Fatal("NewMetricsWithRegistry returned nil")
	}
	if m.LoginAttempts == nil {
		t.Error("LoginAttempts metric is nil")
	}
	if m.LoginDuration == nil {
		t.Error("LoginDuration metric is nil")
	}
	if m.SequenceWraps == nil {
		t.Error("SequenceWraps metric is nil")
	}
}

func TestRecordLoginAttempt(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.RecordLoginAttempt(ResultSuccess)
	m.RecordLoginAttempt(ResultSuccess)
	m.RecordLoginAttempt(ResultCaptcha)

	if got := testutil.ToFloat64(m.LoginAttempts.WithLabelValues(ResultSuccess)); got != 2 {
		t.Errorf("LoginAttempts[success] = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.LoginAttempts.WithLabelValues(ResultCaptcha)); got != 1 {
		t.Errorf("LoginAttempts[captcha] = %v, want 1", got)
	}
}

func TestRecordLoginDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.RecordLoginDuration(0.42)

	if count := testutil.CollectAndCount(m.LoginDuration); count != 1 {
		t.Errorf("LoginDuration sample count = %d, want 1", count)
	}
}

func TestRecordFrameSentAndReceived(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.RecordFrameSent("2064")
	m.RecordFrameSent("2064")
	m.RecordFrameReceived("2064")

	if got := testutil.ToFloat64(m.FramesSent.WithLabelValues("2064")); got != 2 {
		t.Errorf("FramesSent[2064] = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.FramesReceived.WithLabelValues("2064")); got != 1 {
		t.Errorf("FramesReceived[2064] = %v, want 1", got)
	}
}

func TestRecordCodecError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.RecordCodecError(StageTLV)
	m.RecordCodecError(StageTLV)
	m.RecordCodecError(StageJCE)

	if got := testutil.ToFloat64(m.CodecErrors.WithLabelValues(StageTLV)); got != 2 {
		t.Errorf("CodecErrors[tlv] = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CodecErrors.WithLabelValues(StageJCE)); got != 1 {
		t.Errorf("CodecErrors[jce] = %v, want 1", got)
	}
}

func TestRecordSequenceWrap(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.RecordSequenceWrap()
	m.RecordSequenceWrap()

	if got := testutil.ToFloat64(m.SequenceWraps); got != 2 {
		t.Errorf("SequenceWraps = %v, want 2", got)
	}
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	m1 := Default()
	m2 := Default()
	if m1 != m2 {
		t.Error("Default() returned different instances across calls")
	}
}
