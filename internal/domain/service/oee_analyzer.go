package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/entity"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
)

// Методы вычисления, попадающие в метаданные OEEResult
const (
	MethodPrecomputed = "pre-computed OEE measurement"
	MethodComponents  = "A x P x Q composition"
	MethodRawCounters = "calculated from raw counters"
	MethodNone        = "none"
)

// scheduledTime - плановое время работы для tier 3: окно отчетности целиком
const scheduledTime = 24 * time.Hour

// OEEMeasurements - имена измерений, выбранные каскадом для вычисления.
// Пустая строка означает, что измерение не найдено.
type OEEMeasurements struct {
	Overall      string `json:"overall,omitempty"`
	Availability string `json:"availability,omitempty"`
	Performance  string `json:"performance,omitempty"`
	Quality      string `json:"quality,omitempty"`
}

// OEEDiscovery - результат анализа доступности OEE-данных предприятия
type OEEDiscovery struct {
	Enterprise    string                  `json:"enterprise"`
	Tier          valueobject.Tier        `json:"tier"`
	Measurements  OEEMeasurements         `json:"measurements"`
	Confidence    float64                 `json:"confidence"`
	Reason        string                  `json:"reason"`
	ValueFormat   valueobject.ValueFormat `json:"value_format"`
	Sites         []string                `json:"sites"`
	LastDiscovery time.Time               `json:"last_discovery"`
}

// tierCheck - один шаг каскада "first match wins".
// Каскад реализован как явный упорядоченный список, а не вложенные условия,
// чтобы порядок tie-break'а был проверяем по одному tier за раз.
type tierCheck struct {
	tier  valueobject.Tier
	match func(descriptors []*entity.MeasurementDescriptor) (OEEMeasurements, float64, string, bool)
}

// OEEAnalyzer определяет применимый tier вычисления OEE и строит
// нормализованный результат из доступного подмножества данных (Domain Service).
// Не владеет состоянием, безопасен для конкурентных вызовов.
type OEEAnalyzer struct {
	cascade []tierCheck
}

// NewOEEAnalyzer создает новый OEEAnalyzer
func NewOEEAnalyzer() *OEEAnalyzer {
	a := &OEEAnalyzer{}
	a.cascade = []tierCheck{
		{valueobject.TierPrecomputed, a.matchPrecomputed},
		{valueobject.TierComponents, a.matchComponents},
		{valueobject.TierRawCounters, a.matchRawCounters},
	}
	return a
}

// AnalyzeEnterpriseOEE выбирает первый подходящий tier для предприятия.
// Пустой список дескрипторов - не ошибка, а легитимное состояние данных:
// результатом будет tier 4 с нулевой уверенностью.
func (a *OEEAnalyzer) AnalyzeEnterpriseOEE(
	enterprise string,
	descriptors []*entity.MeasurementDescriptor,
) *OEEDiscovery {
	discovery := &OEEDiscovery{
		Enterprise:    enterprise,
		Tier:          valueobject.TierInsufficient,
		Confidence:    0.0,
		Reason:        "Insufficient OEE data",
		ValueFormat:   valueobject.ValueFormatUnknown,
		Sites:         unionSites(descriptors),
		LastDiscovery: time.Now().UTC(),
	}

	for _, check := range a.cascade {
		measurements, confidence, reason, ok := check.match(descriptors)
		if !ok {
			continue
		}
		discovery.Tier = check.tier
		discovery.Measurements = measurements
		discovery.Confidence = confidence
		discovery.Reason = reason
		break
	}

	if discovery.Measurements.Overall != "" {
		if overall := findDescriptor(descriptors, discovery.Measurements.Overall); overall != nil {
			discovery.ValueFormat = DetectValueFormat(overall.NumericSamples())
		}
	}

	return discovery
}

// matchPrecomputed - tier 1: найдено готовое измерение с общим значением OEE
func (a *OEEAnalyzer) matchPrecomputed(descriptors []*entity.MeasurementDescriptor) (OEEMeasurements, float64, string, bool) {
	for _, d := range descriptors {
		if isOverallOEEName(d.Name) {
			reason := fmt.Sprintf("pre-computed OEE value found: %s", d.Name)
			return OEEMeasurements{Overall: d.Name}, valueobject.TierPrecomputed.Confidence(), reason, true
		}
	}
	return OEEMeasurements{}, 0, "", false
}

// matchComponents - tier 2: присутствуют все три компонента A, P, Q
func (a *OEEAnalyzer) matchComponents(descriptors []*entity.MeasurementDescriptor) (OEEMeasurements, float64, string, bool) {
	availability := findByKeyword(descriptors, "availability")
	performance := findByKeyword(descriptors, "performance")
	quality := findByKeyword(descriptors, "quality")

	if availability == nil || performance == nil || quality == nil {
		return OEEMeasurements{}, 0, "", false
	}

	measurements := OEEMeasurements{
		Availability: availability.Name,
		Performance:  performance.Name,
		Quality:      quality.Name,
	}
	reason := "availability, performance and quality components found; OEE composed as A x P x Q"
	return measurements, valueobject.TierComponents.Confidence(), reason, true
}

// matchRawCounters - tier 3: компонентов нет, но есть сырые счетчики,
// из которых OEE выводится вручную. Нужны счетчики good и total;
// счетчик простоя опционален, без него уверенность ниже.
func (a *OEEAnalyzer) matchRawCounters(descriptors []*entity.MeasurementDescriptor) (OEEMeasurements, float64, string, bool) {
	good := findByKeyword(descriptors, "good")
	total := findByKeyword(descriptors, "total")
	if total == nil {
		total = findByKeyword(descriptors, "produced")
	}
	downtime := findByKeyword(descriptors, "downtime")

	if good == nil || total == nil {
		return OEEMeasurements{}, 0, "", false
	}

	measurements := OEEMeasurements{
		Quality:      good.Name,
		Performance:  total.Name,
		Availability: "",
	}
	confidence := 0.60
	reason := fmt.Sprintf("raw production counters found: %s / %s", good.Name, total.Name)
	if downtime != nil {
		measurements.Availability = downtime.Name
		confidence = valueobject.TierRawCounters.Confidence()
		reason = fmt.Sprintf("raw production counters found: %s / %s with downtime %s", good.Name, total.Name, downtime.Name)
	}
	return measurements, confidence, reason, true
}

// ComputeResult строит OEEResult для пары (enterprise, site) по выбранному tier.
// Отсутствие пригодных значений выборки дает результат unavailable, а не ошибку.
func (a *OEEAnalyzer) ComputeResult(
	enterprise, site string,
	discovery *OEEDiscovery,
	descriptors []*entity.MeasurementDescriptor,
) *entity.OEEResult {
	switch discovery.Tier {
	case valueobject.TierPrecomputed:
		return a.computePrecomputed(enterprise, site, discovery, descriptors)
	case valueobject.TierComponents:
		return a.computeComponents(enterprise, site, discovery, descriptors)
	case valueobject.TierRawCounters:
		return a.computeRawCounters(enterprise, site, discovery, descriptors)
	default:
		return entity.NewOEEResult(enterprise, site, nil, entity.OEEComponents{},
			valueobject.TierInsufficient, MethodNone, nil)
	}
}

func (a *OEEAnalyzer) computePrecomputed(
	enterprise, site string,
	discovery *OEEDiscovery,
	descriptors []*entity.MeasurementDescriptor,
) *entity.OEEResult {
	overall := findDescriptor(descriptors, discovery.Measurements.Overall)
	meta := &entity.OEEResultMeta{
		MeasurementsUsed: []string{discovery.Measurements.Overall},
		Confidence:       discovery.Confidence,
	}

	if overall == nil {
		return entity.NewOEEResult(enterprise, site, nil, entity.OEEComponents{},
			discovery.Tier, MethodPrecomputed, meta)
	}

	value, ok := overall.LatestNumericValue()
	if !ok {
		return entity.NewOEEResult(enterprise, site, nil, entity.OEEComponents{},
			discovery.Tier, MethodPrecomputed, meta)
	}

	if discovery.ValueFormat == valueobject.ValueFormatDecimal {
		value *= 100
	}

	meta.DataPoints = len(overall.NumericSamples())
	return entity.NewOEEResult(enterprise, site, &value, entity.OEEComponents{},
		discovery.Tier, MethodPrecomputed, meta)
}

func (a *OEEAnalyzer) computeComponents(
	enterprise, site string,
	discovery *OEEDiscovery,
	descriptors []*entity.MeasurementDescriptor,
) *entity.OEEResult {
	meta := &entity.OEEResultMeta{
		MeasurementsUsed: []string{
			discovery.Measurements.Availability,
			discovery.Measurements.Performance,
			discovery.Measurements.Quality,
		},
		Confidence: discovery.Confidence,
	}

	avail, okA := latestPercent(descriptors, discovery.Measurements.Availability)
	perf, okP := latestPercent(descriptors, discovery.Measurements.Performance)
	qual, okQ := latestPercent(descriptors, discovery.Measurements.Quality)

	components := entity.OEEComponents{}
	if okA {
		components.Availability = &avail
	}
	if okP {
		components.Performance = &perf
	}
	if okQ {
		components.Quality = &qual
	}

	if !okA || !okP || !okQ {
		return entity.NewOEEResult(enterprise, site, nil, components,
			discovery.Tier, MethodComponents, meta)
	}

	meta.DataPoints = 3
	oee := avail * perf * qual / 10000
	return entity.NewOEEResult(enterprise, site, &oee, components,
		discovery.Tier, MethodComponents, meta)
}

func (a *OEEAnalyzer) computeRawCounters(
	enterprise, site string,
	discovery *OEEDiscovery,
	descriptors []*entity.MeasurementDescriptor,
) *entity.OEEResult {
	meta := &entity.OEEResultMeta{
		MeasurementsUsed: []string{discovery.Measurements.Quality, discovery.Measurements.Performance},
		Confidence:       discovery.Confidence,
	}

	goodDesc := findDescriptor(descriptors, discovery.Measurements.Quality)
	totalDesc := findDescriptor(descriptors, discovery.Measurements.Performance)
	if goodDesc == nil || totalDesc == nil {
		return entity.NewOEEResult(enterprise, site, nil, entity.OEEComponents{},
			discovery.Tier, MethodRawCounters, meta)
	}

	good, okG := goodDesc.LatestNumericValue()
	total, okT := totalDesc.LatestNumericValue()
	if !okG || !okT || total <= 0 {
		return entity.NewOEEResult(enterprise, site, nil, entity.OEEComponents{},
			discovery.Tier, MethodRawCounters, meta)
	}

	quality := clampRatio(good / total)

	// Без счетчика простоя считаем оборудование полностью доступным.
	availability := 1.0
	if discovery.Measurements.Availability != "" {
		if downtimeDesc := findDescriptor(descriptors, discovery.Measurements.Availability); downtimeDesc != nil {
			if downtime, ok := downtimeDesc.LatestNumericValue(); ok {
				meta.MeasurementsUsed = append(meta.MeasurementsUsed, discovery.Measurements.Availability)
				availability = clampRatio(1.0 - downtime/scheduledTime.Seconds())
			}
		}
	}

	// Performance из одних счетчиков не выводится; принимаем 1.0,
	// пониженная уверенность tier 3 это отражает.
	performance := 1.0

	availPct := availability * 100
	perfPct := performance * 100
	qualPct := quality * 100
	oee := availability * performance * quality * 100

	meta.DataPoints = 2
	components := entity.OEEComponents{
		Availability: &availPct,
		Performance:  &perfPct,
		Quality:      &qualPct,
	}
	return entity.NewOEEResult(enterprise, site, &oee, components,
		discovery.Tier, MethodRawCounters, meta)
}

// DetectValueFormat определяет формат значений кандидата на общее OEE.
// Все значения в [0,1] - decimal; хотя бы одно больше 1 - percentage
// (при смешанной выборке percentage как более частая и безопасная конвенция);
// пустая выборка - unknown.
func DetectValueFormat(samples []float64) valueobject.ValueFormat {
	if len(samples) == 0 {
		return valueobject.ValueFormatUnknown
	}
	for _, v := range samples {
		if v > 1 {
			return valueobject.ValueFormatPercentage
		}
	}
	return valueobject.ValueFormatDecimal
}

// isOverallOEEName распознает имена, обозначающие готовое общее значение OEE.
// Голое вхождение "oee" внутри имени компонента (oee_availability) не считается.
func isOverallOEEName(name string) bool {
	lowered := strings.ToLower(name)
	switch {
	case lowered == "oee":
		return true
	case strings.HasSuffix(lowered, "_oee"):
		return true
	case strings.Contains(lowered, "oee_overall"), strings.Contains(lowered, "overall_oee"):
		return true
	default:
		return false
	}
}

func findByKeyword(descriptors []*entity.MeasurementDescriptor, keyword string) *entity.MeasurementDescriptor {
	for _, d := range descriptors {
		if strings.Contains(strings.ToLower(d.Name), keyword) {
			return d
		}
	}
	return nil
}

func findDescriptor(descriptors []*entity.MeasurementDescriptor, name string) *entity.MeasurementDescriptor {
	for _, d := range descriptors {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// latestPercent возвращает свежее значение компонента, нормализованное
// в процентную шкалу: значения не больше единицы трактуются как доли.
func latestPercent(descriptors []*entity.MeasurementDescriptor, name string) (float64, bool) {
	d := findDescriptor(descriptors, name)
	if d == nil {
		return 0, false
	}
	v, ok := d.LatestNumericValue()
	if !ok {
		return 0, false
	}
	if v <= 1 {
		v *= 100
	}
	return v, true
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func unionSites(descriptors []*entity.MeasurementDescriptor) []string {
	var sites []string
	for _, d := range descriptors {
		for _, s := range d.Sites {
			sites = appendUniqueString(sites, s)
		}
	}
	return sites
}

func appendUniqueString(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
