package valueobject

import "errors"

// Category представляет семантическую категорию измерения (Value Object)
type Category string

const (
	CategoryOEEMetric        Category = "oee_metric"
	CategorySensorReading    Category = "sensor_reading"
	CategoryStateStatus      Category = "state_status"
	CategoryCounter          Category = "counter"
	CategoryTiming           Category = "timing"
	CategoryPercentageMetric Category = "percentage_metric"
	CategoryDescription      Category = "description"
	CategoryUnknown          Category = "unknown"
)

// Validate проверяет валидность категории
func (c Category) Validate() error {
	switch c {
	case CategoryOEEMetric, CategorySensorReading, CategoryStateStatus,
		CategoryCounter, CategoryTiming, CategoryPercentageMetric,
		CategoryDescription, CategoryUnknown:
		return nil
	default:
		return errors.New("invalid category")
	}
}

// String возвращает строковое представление категории
func (c Category) String() string {
	return string(c)
}

// AllCategories возвращает список всех допустимых категорий
func AllCategories() []Category {
	return []Category{
		CategoryOEEMetric,
		CategorySensorReading,
		CategoryStateStatus,
		CategoryCounter,
		CategoryTiming,
		CategoryPercentageMetric,
		CategoryDescription,
		CategoryUnknown,
	}
}
