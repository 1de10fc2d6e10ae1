package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSlotsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSlots(reg)
	m.ObserveRequest("ok", 12*time.Millisecond)
	m.ObserveRequest("error", time.Millisecond)
}

func TestSlotsNilSafe(t *testing.T) {
	var m *Slots
	m.ObserveRequest("ok", time.Millisecond)
}

func TestUpstreamObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUpstream(reg)
	m.ObserveRequest("200")
	m.ObserveRetry()
}

func TestUpstreamNilSafe(t *testing.T) {
	var m *Upstream
	m.ObserveRequest("200")
	m.ObserveRetry()
}
