package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMatchingMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMatchingMetrics(reg)

	m.ObserveRank("urgent", 3, 0.002)
	m.ObserveTransition("accept", "ok")
	m.ObserveTransition("accept", "conflict")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"carebridge_matching_rank_total",
		"carebridge_matching_rank_eligible_providers",
		"carebridge_matching_rank_latency_seconds",
		"carebridge_lifecycle_transition_total",
	} {
		if !names[want] {
			t.Errorf("missing metric family %s", want)
		}
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *MatchingMetrics
	m.ObserveRank("low", 0, 0)
	m.ObserveTransition("cancel", "ok")
}
