package valueobject

import "errors"

// Tier представляет уровень каскада вычисления OEE (Value Object)
// Уровни упорядочены по полноте данных: чем ниже номер, тем выше уверенность.
type Tier int

const (
	// TierPrecomputed - найдено готовое измерение с общим значением OEE
	TierPrecomputed Tier = 1
	// TierComponents - все три компонента (A, P, Q) присутствуют
	TierComponents Tier = 2
	// TierRawCounters - OEE выводится из сырых счетчиков производства
	TierRawCounters Tier = 3
	// TierInsufficient - данных недостаточно для вычисления
	TierInsufficient Tier = 4
)

// Validate проверяет валидность tier
func (t Tier) Validate() error {
	if t < TierPrecomputed || t > TierInsufficient {
		return errors.New("invalid tier")
	}
	return nil
}

// Name возвращает человекочитаемое имя tier
func (t Tier) Name() string {
	switch t {
	case TierPrecomputed:
		return "pre-computed"
	case TierComponents:
		return "component-based"
	case TierRawCounters:
		return "raw-counter"
	default:
		return "insufficient-data"
	}
}

// Confidence возвращает базовую уверенность для tier.
// Для TierRawCounters уверенность зависит от набора счетчиков и задается вызывающим кодом.
func (t Tier) Confidence() float64 {
	switch t {
	case TierPrecomputed:
		return 0.95
	case TierComponents:
		return 0.90
	case TierRawCounters:
		return 0.70
	default:
		return 0.0
	}
}

// ValueFormat представляет формат значений кандидата на общее OEE
type ValueFormat string

const (
	// ValueFormatDecimal - все значения в диапазоне [0,1]
	ValueFormatDecimal ValueFormat = "decimal"
	// ValueFormatPercentage - значения в процентной шкале (самая частая конвенция)
	ValueFormatPercentage ValueFormat = "percentage"
	// ValueFormatUnknown - выборка значений отсутствует
	ValueFormatUnknown ValueFormat = "unknown"
)

// String возвращает строковое представление формата
func (vf ValueFormat) String() string {
	return string(vf)
}
