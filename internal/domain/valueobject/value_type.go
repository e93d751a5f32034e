package valueobject

import (
	"errors"
	"strconv"
)

// ValueType представляет тип значения измерения (Value Object)
type ValueType string

const (
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeString  ValueType = "string"
)

// Validate проверяет валидность типа значения
func (vt ValueType) Validate() error {
	switch vt {
	case ValueTypeNumeric, ValueTypeString:
		return nil
	default:
		return errors.New("invalid value type")
	}
}

// String возвращает строковое представление типа значения
func (vt ValueType) String() string {
	return string(vt)
}

// InferValueType определяет тип значения по сырой строке.
// Значение считается строковым только если его не удалось распарсить как число.
func InferValueType(raw string) ValueType {
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return ValueTypeString
	}
	return ValueTypeNumeric
}
