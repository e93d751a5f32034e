package entity

import (
	"testing"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
)

func TestNewOEEResult_Rounding(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{85.5678, 85.6},
		{85.54, 85.5},
		{0.04, 0.0},
		{99.95, 100.0},
	}

	for _, tt := range tests {
		value := tt.input
		result := NewOEEResult("acme", "site-a", &value, OEEComponents{},
			valueobject.TierPrecomputed, "pre-computed OEE measurement", nil)
		if result.OEE == nil || *result.OEE != tt.expected {
			t.Errorf("NewOEEResult(%v): expected %v, got %v", tt.input, tt.expected, result.OEE)
		}
	}
}

func TestNewOEEResult_NilValueIsUnavailable(t *testing.T) {
	result := NewOEEResult("acme", "", nil, OEEComponents{},
		valueobject.TierInsufficient, "none", nil)

	if result.OEE != nil {
		t.Fatalf("expected nil OEE, got %v", *result.OEE)
	}
	if result.Quality.Status != OEEStatusUnavailable {
		t.Errorf("expected unavailable, got %v", result.Quality.Status)
	}
	if result.Quality.Confidence != 0.0 {
		t.Errorf("expected confidence 0.0, got %v", result.Quality.Confidence)
	}
	if result.Calculation.TierName != "insufficient-data" {
		t.Errorf("unexpected tier name %q", result.Calculation.TierName)
	}
}

func TestNewOEEResult_FixedTierConfidence(t *testing.T) {
	value := 85.0

	precomputed := NewOEEResult("acme", "site-a", &value, OEEComponents{},
		valueobject.TierPrecomputed, "pre-computed OEE measurement", &OEEResultMeta{Confidence: 0.1})
	if precomputed.Quality.Confidence != 0.95 {
		t.Errorf("tier 1 confidence must be fixed at 0.95, got %v", precomputed.Quality.Confidence)
	}
	if precomputed.Quality.Status != OEEStatusGood {
		t.Errorf("expected good status, got %v", precomputed.Quality.Status)
	}

	components := NewOEEResult("acme", "site-a", &value, OEEComponents{},
		valueobject.TierComponents, "A x P x Q composition", nil)
	if components.Quality.Confidence != 0.90 {
		t.Errorf("tier 2 confidence must be fixed at 0.90, got %v", components.Quality.Confidence)
	}
}

func TestNewOEEResult_MetaConfidenceAndDegradedStatus(t *testing.T) {
	value := 95.0

	degraded := NewOEEResult("acme", "site-a", &value, OEEComponents{},
		valueobject.TierRawCounters, "calculated from raw counters", &OEEResultMeta{Confidence: 0.60})
	if degraded.Quality.Confidence != 0.60 {
		t.Errorf("expected meta confidence 0.60, got %v", degraded.Quality.Confidence)
	}
	if degraded.Quality.Status != OEEStatusDegraded {
		t.Errorf("expected degraded status below 0.8, got %v", degraded.Quality.Status)
	}
}

func TestNewOEEResult_MetaFields(t *testing.T) {
	value := 68.4
	meta := &OEEResultMeta{
		MeasurementsUsed: []string{"line_availability", "line_performance", "line_quality"},
		DataPoints:       3,
	}

	result := NewOEEResult("acme", "site-a", &value, OEEComponents{},
		valueobject.TierComponents, "A x P x Q composition", meta)

	if len(result.Calculation.MeasurementsUsed) != 3 {
		t.Errorf("expected 3 measurements used, got %v", result.Calculation.MeasurementsUsed)
	}
	if result.Calculation.DataPoints != 3 {
		t.Errorf("expected 3 data points, got %d", result.Calculation.DataPoints)
	}
	if result.Calculation.TimeRange != DefaultOEEWindow {
		t.Errorf("expected default window %q, got %q", DefaultOEEWindow, result.Calculation.TimeRange)
	}
}
