package entity

import (
	"strconv"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
)

// MaxSampleValues ограничивает число сохраняемых сырых значений на измерение
const MaxSampleValues = 3

// MeasurementDescriptor описывает одно обнаруженное измерение телеметрии.
// Создается заново на каждом успешном цикле обновления схемы и
// никогда не обновляется частично.
type MeasurementDescriptor struct {
	Name           string                `json:"name"`
	Count          int64                 `json:"count"`
	LastSeen       time.Time             `json:"last_seen"`
	ValueType      valueobject.ValueType `json:"value_type"`
	SampleValues   []string              `json:"sample_values"`
	Enterprises    []string              `json:"enterprises"`
	Sites          []string              `json:"sites"`
	Classification valueobject.Category  `json:"classification"`
}

// ObserveEnterprise добавляет метку предприятия (семантика множества)
func (d *MeasurementDescriptor) ObserveEnterprise(enterprise string) {
	d.Enterprises = appendUnique(d.Enterprises, enterprise)
}

// ObserveSite добавляет метку площадки (семантика множества)
func (d *MeasurementDescriptor) ObserveSite(site string) {
	d.Sites = appendUnique(d.Sites, site)
}

// ObserveTimestamp обновляет lastSeen, если новое время позже текущего
func (d *MeasurementDescriptor) ObserveTimestamp(t time.Time) {
	if t.After(d.LastSeen) {
		d.LastSeen = t
	}
}

// SetSamples сохраняет не более MaxSampleValues сырых значений
// и выводит тип значения: строковым измерение становится, как только
// хотя бы одно значение не парсится как число.
func (d *MeasurementDescriptor) SetSamples(raw []string) {
	if len(raw) > MaxSampleValues {
		raw = raw[:MaxSampleValues]
	}

	d.SampleValues = append([]string(nil), raw...)
	d.ValueType = valueobject.ValueTypeNumeric

	for _, v := range raw {
		if valueobject.InferValueType(v) == valueobject.ValueTypeString {
			d.ValueType = valueobject.ValueTypeString
			return
		}
	}
}

// NumericSamples возвращает значения выборки, которые парсятся как числа
func (d *MeasurementDescriptor) NumericSamples() []float64 {
	samples := make([]float64, 0, len(d.SampleValues))
	for _, raw := range d.SampleValues {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			samples = append(samples, v)
		}
	}
	return samples
}

// LatestNumericValue возвращает самое свежее числовое значение выборки
func (d *MeasurementDescriptor) LatestNumericValue() (float64, bool) {
	for _, raw := range d.SampleValues {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// Clone возвращает глубокую копию дескриптора
func (d *MeasurementDescriptor) Clone() *MeasurementDescriptor {
	clone := *d
	clone.SampleValues = append([]string(nil), d.SampleValues...)
	clone.Enterprises = append([]string(nil), d.Enterprises...)
	clone.Sites = append([]string(nil), d.Sites...)
	return &clone
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
