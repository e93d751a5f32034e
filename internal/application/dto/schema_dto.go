package dto

import (
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/entity"
)

// MeasurementDTO представляет обнаруженное измерение для передачи между слоями
type MeasurementDTO struct {
	Name           string    `json:"name"`
	Count          int64     `json:"count"`
	LastSeen       time.Time `json:"last_seen"`
	ValueType      string    `json:"value_type"`
	SampleValues   []string  `json:"sample_values"`
	Enterprises    []string  `json:"enterprises"`
	Sites          []string  `json:"sites"`
	Classification string    `json:"classification"`
}

// SchemaDTO представляет состояние кеша обнаруженной схемы
type SchemaDTO struct {
	Measurements []*MeasurementDTO `json:"measurements"`
	Total        int               `json:"total"`
	LastRefresh  time.Time         `json:"last_refresh"`
}

// HierarchyDTO представляет состояние кеша топологии
type HierarchyDTO struct {
	Topology    *entity.Hierarchy `json:"topology"`
	LastRefresh time.Time         `json:"last_refresh"`
}

// FromMeasurement конвертирует Domain Entity в DTO
func FromMeasurement(d *entity.MeasurementDescriptor) *MeasurementDTO {
	return &MeasurementDTO{
		Name:           d.Name,
		Count:          d.Count,
		LastSeen:       d.LastSeen,
		ValueType:      d.ValueType.String(),
		SampleValues:   d.SampleValues,
		Enterprises:    d.Enterprises,
		Sites:          d.Sites,
		Classification: d.Classification.String(),
	}
}

// ToMeasurementDTOs конвертирует слайс Entity в слайс DTO
func ToMeasurementDTOs(descriptors []*entity.MeasurementDescriptor) []*MeasurementDTO {
	dtos := make([]*MeasurementDTO, len(descriptors))
	for i, d := range descriptors {
		dtos[i] = FromMeasurement(d)
	}
	return dtos
}
