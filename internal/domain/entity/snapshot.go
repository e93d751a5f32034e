package entity

import "time"

// TrendReading - одно текущее показание тренда, подаваемое в детектор изменений
type TrendReading struct {
	Enterprise  string  `json:"enterprise"`
	Measurement string  `json:"measurement"`
	Value       float64 `json:"value"`
}

// Snapshot - иммутабельный слепок значений метрик предыдущего цикла.
// Движок не хранит историю сам: слепком владеет вызывающий код.
type Snapshot struct {
	TakenAt time.Time          `json:"taken_at"`
	Metrics map[string]float64 `json:"metrics"`
}

// NewSnapshot строит слепок из списка текущих показаний
func NewSnapshot(readings []TrendReading) *Snapshot {
	snapshot := &Snapshot{
		TakenAt: time.Now(),
		Metrics: make(map[string]float64, len(readings)),
	}
	for _, r := range readings {
		snapshot.Metrics[SnapshotKey(r.Enterprise, r.Measurement)] = r.Value
	}
	return snapshot
}

// SnapshotKey возвращает составной ключ слепка: enterprise::measurement
func SnapshotKey(enterprise, measurement string) string {
	return enterprise + "::" + measurement
}

// ChangeDirection - направление значимого изменения метрики
type ChangeDirection string

const (
	DirectionIncreased ChangeDirection = "increased"
	DirectionDecreased ChangeDirection = "decreased"
)

// ChangeEventType - единственный тип событий, которые порождает движок
const ChangeEventType = "metric_change"

// ChangeEvent - значимое изменение метрики между двумя циклами.
// События эфемерны: движок их не персистирует.
type ChangeEvent struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Enterprise  string          `json:"enterprise"`
	Measurement string          `json:"measurement"`
	Direction   ChangeDirection `json:"direction"`
	ChangePct   float64         `json:"change_pct"`
	Previous    float64         `json:"previous"`
	Current     float64         `json:"current"`
	DetectedAt  time.Time       `json:"detected_at"`
}
