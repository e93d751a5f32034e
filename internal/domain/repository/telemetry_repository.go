package repository

import (
	"context"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
)

// MeasurementCountRow - строка агрегированного запроса по (measurement, enterprise, site)
type MeasurementCountRow struct {
	Measurement string
	Enterprise  string
	Site        string
	Count       int64
	LastSeen    time.Time
}

// TopologyCountRow - строка агрегированного запроса по пяти уровням топологии
type TopologyCountRow struct {
	Enterprise  string
	Site        string
	Area        string
	Machine     string
	Measurement string
	Count       int64
}

// SampleRow - одно сырое значение из выборочного запроса
type SampleRow struct {
	RawValue   string
	RecordedAt time.Time
}

// TelemetryRepository определяет интерфейс чтения хранилища телеметрии (Port)
// Хранилище трактуется как eventually consistent и read-only: движок не пишет.
// Реализация будет в Infrastructure слое.
type TelemetryRepository interface {
	// CountByMeasurement возвращает счетчики наблюдений за окно,
	// сгруппированные по (measurement, enterprise, site)
	CountByMeasurement(ctx context.Context, window valueobject.TimeRange) ([]MeasurementCountRow, error)

	// CountByTopology возвращает счетчики наблюдений за окно,
	// сгруппированные по (enterprise, site, area, machine, measurement)
	CountByTopology(ctx context.Context, window valueobject.TimeRange) ([]TopologyCountRow, error)

	// SampleValues возвращает не более limit свежих сырых значений измерения за окно
	SampleValues(ctx context.Context, measurement string, window valueobject.TimeRange, limit int) ([]SampleRow, error)
}
