package dto

import (
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/entity"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/service"
)

// OEEReportDTO представляет результаты OEE-анализа одного цикла
type OEEReportDTO struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Results     []*entity.OEEResult     `json:"results"`
	Discoveries []*service.OEEDiscovery `json:"discoveries"`
}

// ChangeReportDTO представляет события значимых изменений одного цикла
type ChangeReportDTO struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	ThresholdPct float64              `json:"threshold_pct"`
	Events       []entity.ChangeEvent `json:"events"`
}
