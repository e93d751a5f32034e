package entity

import (
	"math"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
)

// DefaultOEEWindow - окно отчетности OEE по умолчанию
const DefaultOEEWindow = "24h"

// degradedConfidenceThreshold: результат с вычисленным значением, но
// уверенностью ниже порога, помечается как degraded.
const degradedConfidenceThreshold = 0.8

// OEEStatus - качество результата вычисления
type OEEStatus string

const (
	OEEStatusGood        OEEStatus = "good"
	OEEStatusDegraded    OEEStatus = "degraded"
	OEEStatusUnavailable OEEStatus = "unavailable"
)

// OEEComponents - процентные компоненты OEE; nil означает "не вычислено"
type OEEComponents struct {
	Availability *float64 `json:"availability"`
	Performance  *float64 `json:"performance"`
	Quality      *float64 `json:"quality"`
}

// OEECalculation - метаданные вычисления
type OEECalculation struct {
	Tier             valueobject.Tier `json:"tier"`
	TierName         string           `json:"tier_name"`
	Method           string           `json:"method"`
	MeasurementsUsed []string         `json:"measurements_used"`
	DataPoints       int              `json:"data_points"`
	TimeRange        string           `json:"time_range"`
}

// OEEQuality - оценка достоверности результата
type OEEQuality struct {
	Confidence float64   `json:"confidence"`
	Status     OEEStatus `json:"status"`
}

// OEEResult - результат вычисления OEE для пары (enterprise, site).
// Создается заново при каждом вычислении и не мутируется после создания.
type OEEResult struct {
	Enterprise  string         `json:"enterprise"`
	Site        string         `json:"site"`
	OEE         *float64       `json:"oee"`
	Components  OEEComponents  `json:"components"`
	Calculation OEECalculation `json:"calculation"`
	Quality     OEEQuality     `json:"quality"`
	Timestamp   time.Time      `json:"timestamp"`
}

// OEEResultMeta - необязательные метаданные вычисления
type OEEResultMeta struct {
	MeasurementsUsed []string
	DataPoints       int
	TimeRange        string
	Confidence       float64
}

// NewOEEResult создает OEEResult (Factory Method). Чистый конструктор без I/O.
// Значение OEE округляется до одного знака; уверенность для tier 1/2 фиксирована,
// для остальных берется из meta; при отсутствии значения результат unavailable.
func NewOEEResult(
	enterprise, site string,
	oeeValue *float64,
	components OEEComponents,
	tier valueobject.Tier,
	method string,
	meta *OEEResultMeta,
) *OEEResult {
	result := &OEEResult{
		Enterprise: enterprise,
		Site:       site,
		Components: components,
		Calculation: OEECalculation{
			Tier:             tier,
			TierName:         tier.Name(),
			Method:           method,
			MeasurementsUsed: []string{},
			DataPoints:       0,
			TimeRange:        DefaultOEEWindow,
		},
		Timestamp: time.Now().UTC(),
	}

	if meta != nil {
		if meta.MeasurementsUsed != nil {
			result.Calculation.MeasurementsUsed = append([]string(nil), meta.MeasurementsUsed...)
		}
		result.Calculation.DataPoints = meta.DataPoints
		if meta.TimeRange != "" {
			result.Calculation.TimeRange = meta.TimeRange
		}
	}

	if oeeValue != nil {
		rounded := RoundToOneDecimal(*oeeValue)
		result.OEE = &rounded
	}

	switch {
	case oeeValue == nil:
		result.Quality.Confidence = 0.0
		result.Quality.Status = OEEStatusUnavailable
	case tier == valueobject.TierPrecomputed || tier == valueobject.TierComponents:
		result.Quality.Confidence = tier.Confidence()
		result.Quality.Status = OEEStatusGood
	default:
		result.Quality.Confidence = 0.0
		if meta != nil {
			result.Quality.Confidence = meta.Confidence
		}
		if result.Quality.Confidence < degradedConfidenceThreshold {
			result.Quality.Status = OEEStatusDegraded
		} else {
			result.Quality.Status = OEEStatusGood
		}
	}

	return result
}

// RoundToOneDecimal округляет процентное значение до одного знака после запятой
func RoundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
