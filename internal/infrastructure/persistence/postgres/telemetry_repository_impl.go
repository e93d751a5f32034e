package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/repository"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
	_ "github.com/lib/pq"
)

// PostgresTelemetryRepository реализует repository.TelemetryRepository для PostgreSQL.
// Хранилище только читается: движок никогда не пишет в телеметрию.
type PostgresTelemetryRepository struct {
	db *sql.DB
}

// NewPostgresTelemetryRepository создает новый PostgreSQL repository
func NewPostgresTelemetryRepository(db *sql.DB) *PostgresTelemetryRepository {
	return &PostgresTelemetryRepository{
		db: db,
	}
}

// CountByMeasurement возвращает счетчики наблюдений за окно,
// сгруппированные по (measurement, enterprise, site)
func (r *PostgresTelemetryRepository) CountByMeasurement(
	ctx context.Context,
	window valueobject.TimeRange,
) ([]repository.MeasurementCountRow, error) {
	query := `
		SELECT measurement, enterprise, site, COUNT(*) AS observations, MAX(recorded_at) AS last_seen
		FROM telemetry
		WHERE recorded_at BETWEEN $1 AND $2
		GROUP BY measurement, enterprise, site
	`

	rows, err := r.db.QueryContext(ctx, query, window.Start(), window.End())
	if err != nil {
		return nil, fmt.Errorf("failed to query measurement counts: %w", err)
	}
	defer rows.Close()

	var result []repository.MeasurementCountRow
	for rows.Next() {
		var row repository.MeasurementCountRow
		if err := rows.Scan(&row.Measurement, &row.Enterprise, &row.Site, &row.Count, &row.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan measurement count row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate measurement count rows: %w", err)
	}

	return result, nil
}

// CountByTopology возвращает счетчики наблюдений за окно,
// сгруппированные по пяти уровням топологии
func (r *PostgresTelemetryRepository) CountByTopology(
	ctx context.Context,
	window valueobject.TimeRange,
) ([]repository.TopologyCountRow, error) {
	query := `
		SELECT enterprise, site, area, machine, measurement, COUNT(*) AS observations
		FROM telemetry
		WHERE recorded_at BETWEEN $1 AND $2
		GROUP BY enterprise, site, area, machine, measurement
	`

	rows, err := r.db.QueryContext(ctx, query, window.Start(), window.End())
	if err != nil {
		return nil, fmt.Errorf("failed to query topology counts: %w", err)
	}
	defer rows.Close()

	var result []repository.TopologyCountRow
	for rows.Next() {
		var row repository.TopologyCountRow
		if err := rows.Scan(&row.Enterprise, &row.Site, &row.Area, &row.Machine, &row.Measurement, &row.Count); err != nil {
			return nil, fmt.Errorf("failed to scan topology count row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topology count rows: %w", err)
	}

	return result, nil
}

// SampleValues возвращает не более limit свежих сырых значений измерения за окно
func (r *PostgresTelemetryRepository) SampleValues(
	ctx context.Context,
	measurement string,
	window valueobject.TimeRange,
	limit int,
) ([]repository.SampleRow, error) {
	query := `
		SELECT value, recorded_at
		FROM telemetry
		WHERE measurement = $1 AND recorded_at BETWEEN $2 AND $3
		ORDER BY recorded_at DESC
		LIMIT $4
	`

	rows, err := r.db.QueryContext(ctx, query, measurement, window.Start(), window.End(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample values: %w", err)
	}
	defer rows.Close()

	var result []repository.SampleRow
	for rows.Next() {
		var row repository.SampleRow
		if err := rows.Scan(&row.RawValue, &row.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sample rows: %w", err)
	}

	return result, nil
}
