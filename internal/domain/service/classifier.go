package service

import (
	"strings"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
)

// categoryKeywords - пара категория/ключевые слова.
// Порядок пар фиксирован и служит tie-break'ом: выигрывает первая категория,
// ключевое слово которой встречается в имени измерения.
type categoryKeywords struct {
	category valueobject.Category
	keywords []string
}

var classificationTable = []categoryKeywords{
	{valueobject.CategoryOEEMetric, []string{"oee", "availability", "performance", "quality", "effectiveness"}},
	{valueobject.CategorySensorReading, []string{"speed", "temperature", "pressure", "vibration", "humidity", "flow", "level", "power", "current", "voltage"}},
	{valueobject.CategoryStateStatus, []string{"state", "status", "mode", "running", "fault", "alarm"}},
	{valueobject.CategoryCounter, []string{"count", "total", "produced", "rejected", "good", "scrap"}},
	{valueobject.CategoryTiming, []string{"time", "duration", "cycle", "uptime", "downtime"}},
}

// Classifier определяет семантическую категорию измерения по его имени
// и, опционально, по типу и выборке значений (Domain Service).
// Чистая функция без побочных эффектов.
type Classifier struct{}

// NewClassifier создает новый Classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify возвращает категорию для измерения.
// Сначала выполняется регистронезависимый поиск подстроки по упорядоченной
// таблице ключевых слов; если ни одно слово не совпало, категория выводится
// из типа значения и среднего по числовой выборке.
func (c *Classifier) Classify(
	name string,
	valueType valueobject.ValueType,
	numericSamples []float64,
) valueobject.Category {
	lowered := strings.ToLower(name)

	for _, row := range classificationTable {
		for _, keyword := range row.keywords {
			if strings.Contains(lowered, keyword) {
				return row.category
			}
		}
	}

	if valueType == valueobject.ValueTypeString {
		return valueobject.CategoryDescription
	}

	if len(numericSamples) > 0 {
		mean := meanOf(numericSamples)
		switch {
		case mean >= 0 && mean <= 100:
			return valueobject.CategoryPercentageMetric
		case mean > 1000:
			return valueobject.CategoryCounter
		}
	}

	return valueobject.CategoryUnknown
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
