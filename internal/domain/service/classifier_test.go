package service

import (
	"testing"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
)

func TestClassifier_KeywordMatching(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		expected valueobject.Category
	}{
		{"oee_availability", valueobject.CategoryOEEMetric},
		{"line_performance", valueobject.CategoryOEEMetric},
		{"quality_rate", valueobject.CategoryOEEMetric},
		{"spindle_speed", valueobject.CategorySensorReading},
		{"zone_temperature", valueobject.CategorySensorReading},
		{"hydraulic_pressure", valueobject.CategorySensorReading},
		{"machine_state", valueobject.CategoryStateStatus},
		{"fault_code", valueobject.CategoryStateStatus},
		{"parts_count", valueobject.CategoryCounter},
		{"total_produced", valueobject.CategoryCounter},
		{"cycle_duration", valueobject.CategoryTiming},
		{"downtime_minutes", valueobject.CategoryTiming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.name, valueobject.ValueTypeNumeric, nil)
			if got != tt.expected {
				t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestClassifier_CaseInsensitive(t *testing.T) {
	c := NewClassifier()

	if got := c.Classify("Machine_OEE", valueobject.ValueTypeNumeric, nil); got != valueobject.CategoryOEEMetric {
		t.Errorf("expected case-insensitive match, got %v", got)
	}
}

func TestClassifier_TieBreakOrder(t *testing.T) {
	c := NewClassifier()

	// "quality_count" matches both oee_metric and counter keywords;
	// the earlier table row wins.
	if got := c.Classify("quality_count", valueobject.ValueTypeNumeric, nil); got != valueobject.CategoryOEEMetric {
		t.Errorf("expected oee_metric to win tie-break, got %v", got)
	}

	// "speed_count" matches sensor_reading before counter.
	if got := c.Classify("speed_count", valueobject.ValueTypeNumeric, nil); got != valueobject.CategorySensorReading {
		t.Errorf("expected sensor_reading to win tie-break, got %v", got)
	}
}

func TestClassifier_Fallbacks(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name      string
		valueType valueobject.ValueType
		samples   []float64
		expected  valueobject.Category
	}{
		{"string values become description", valueobject.ValueTypeString, nil, valueobject.CategoryDescription},
		{"mean within percent range", valueobject.ValueTypeNumeric, []float64{42.5, 61.2}, valueobject.CategoryPercentageMetric},
		{"mean at range edge", valueobject.ValueTypeNumeric, []float64{100}, valueobject.CategoryPercentageMetric},
		{"large mean becomes counter", valueobject.ValueTypeNumeric, []float64{5400, 5600}, valueobject.CategoryCounter},
		{"mean between ranges", valueobject.ValueTypeNumeric, []float64{500}, valueobject.CategoryUnknown},
		{"negative mean", valueobject.ValueTypeNumeric, []float64{-40}, valueobject.CategoryUnknown},
		{"no samples", valueobject.ValueTypeNumeric, nil, valueobject.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify("xyz_metric_noise", tt.valueType, tt.samples)
			if got != tt.expected {
				t.Errorf("Classify() = %v, want %v", got, tt.expected)
			}
		})
	}
}
