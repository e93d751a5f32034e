package service

import (
	"math"
	"strings"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/entity"
	"github.com/google/uuid"
)

// oeeRelevantPatterns - фиксированный allow-list имен измерений.
// Детектор работает только по OEE-значимым метрикам, чтобы ограничить
// объем сигнала, уходящего в AI-анализ: произвольная сенсорная телеметрия
// игнорируется, даже если присутствует во входных трендах.
var oeeRelevantPatterns = []string{"oee", "availability", "performance", "quality"}

// ChangeDetector сравнивает текущие показания трендов со слепком предыдущего
// цикла и порождает события значимых изменений (Domain Service).
// Не владеет состоянием; историей слепков владеет вызывающий код.
type ChangeDetector struct{}

// NewChangeDetector создает новый ChangeDetector
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// DetectChanges возвращает события для показаний, изменившихся больше чем
// на thresholdPct процентов относительно предыдущего слепка.
// Отсутствие слепка (первый запуск) или ключа в нем - не ошибка: показание
// пропускается. Нулевое предыдущее значение тоже пропускается: скачок от нуля
// невыразим в процентах и здесь сознательно не флагируется.
func (cd *ChangeDetector) DetectChanges(
	current []entity.TrendReading,
	previous *entity.Snapshot,
	thresholdPct float64,
) []entity.ChangeEvent {
	if previous == nil || previous.Metrics == nil {
		return nil
	}

	var events []entity.ChangeEvent
	now := time.Now().UTC()

	for _, reading := range current {
		if !isOEERelevant(reading.Measurement) {
			continue
		}

		key := entity.SnapshotKey(reading.Enterprise, reading.Measurement)
		previousValue, ok := previous.Metrics[key]
		if !ok || previousValue == 0 {
			continue
		}

		// Изменение считается к модулю предыдущего значения: знак previous
		// не должен инвертировать сравнение с порогом.
		changePct := math.Abs(reading.Value-previousValue) / math.Abs(previousValue) * 100
		if changePct <= thresholdPct {
			continue
		}

		direction := entity.DirectionIncreased
		if reading.Value < previousValue {
			direction = entity.DirectionDecreased
		}

		events = append(events, entity.ChangeEvent{
			ID:          uuid.New().String(),
			Type:        entity.ChangeEventType,
			Enterprise:  reading.Enterprise,
			Measurement: reading.Measurement,
			Direction:   direction,
			ChangePct:   changePct,
			Previous:    previousValue,
			Current:     reading.Value,
			DetectedAt:  now,
		})
	}

	return events
}

func isOEERelevant(measurement string) bool {
	lowered := strings.ToLower(measurement)
	for _, pattern := range oeeRelevantPatterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}
