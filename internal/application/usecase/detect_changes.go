package usecase

import (
	"context"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/application/dto"
	"github.com/briananderson1222/EdgeMind-sub003/internal/application/port"
	"github.com/briananderson1222/EdgeMind-sub003/internal/discovery"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/entity"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/service"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

// SubjectTrendChanges - subject для публикации событий изменений в AI-контур
const SubjectTrendChanges = "edgemind.trends.changes"

// snapshotCacheKey - ключ, под которым кеш хранит слепок предыдущего цикла.
// Ключ принадлежит application-слою: адаптеры кеша о нем не знают.
const snapshotCacheKey = "edgemind:trends:snapshot"

// DetectChangesUseCase сравнивает текущие тренды со слепком предыдущего цикла,
// публикует значимые изменения и сохраняет новый слепок
type DetectChangesUseCase struct {
	schema    *discovery.SchemaCache
	detector  *service.ChangeDetector
	cache     port.Cache
	publisher port.EventPublisher
	logger    *logger.Logger
}

// NewDetectChangesUseCase создает новый use case детектирования изменений.
// Кеш слепков и publisher опциональны: без них детектор работает только
// в пределах жизни процесса и не публикует события.
func NewDetectChangesUseCase(
	schema *discovery.SchemaCache,
	detector *service.ChangeDetector,
	cache port.Cache,
	publisher port.EventPublisher,
	logger *logger.Logger,
) *DetectChangesUseCase {
	return &DetectChangesUseCase{
		schema:    schema,
		detector:  detector,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute выполняет один цикл детектирования с указанным порогом значимости.
// Отсутствие предыдущего слепка (первый запуск) дает пустой список событий.
// Сбои кеша слепков и publisher'а деградируют цикл, но не роняют его.
func (uc *DetectChangesUseCase) Execute(ctx context.Context, thresholdPct float64) (*dto.ChangeReportDTO, error) {
	if err := uc.schema.RefreshIfStale(ctx); err != nil {
		return nil, err
	}

	readings := uc.currentReadings()
	previous := uc.loadPreviousSnapshot(ctx)

	events := uc.detector.DetectChanges(readings, previous, thresholdPct)

	for _, event := range events {
		if uc.publisher == nil {
			break
		}
		if err := uc.publisher.PublishEvent(ctx, SubjectTrendChanges, event); err != nil {
			uc.logger.Warn("Failed to publish change event",
				"enterprise", event.Enterprise,
				"measurement", event.Measurement,
				"error", err.Error(),
			)
		}
	}

	uc.storeSnapshot(ctx, entity.NewSnapshot(readings))

	return &dto.ChangeReportDTO{
		GeneratedAt:  time.Now().UTC(),
		ThresholdPct: thresholdPct,
		Events:       events,
	}, nil
}

// currentReadings строит текущие показания трендов из кеша схемы:
// по одному показанию на пару (enterprise, measurement) со свежим
// числовым значением выборки
func (uc *DetectChangesUseCase) currentReadings() []entity.TrendReading {
	var readings []entity.TrendReading
	for _, descriptor := range uc.schema.Measurements() {
		value, ok := descriptor.LatestNumericValue()
		if !ok {
			continue
		}
		for _, enterprise := range descriptor.Enterprises {
			readings = append(readings, entity.TrendReading{
				Enterprise:  enterprise,
				Measurement: descriptor.Name,
				Value:       value,
			})
		}
	}
	return readings
}

// loadPreviousSnapshot читает слепок предыдущего цикла.
// Любая ошибка чтения (включая cache miss) трактуется как "истории нет".
func (uc *DetectChangesUseCase) loadPreviousSnapshot(ctx context.Context) *entity.Snapshot {
	if uc.cache == nil {
		return nil
	}

	var snapshot entity.Snapshot
	if err := uc.cache.Get(ctx, snapshotCacheKey, &snapshot); err != nil {
		return nil
	}
	return &snapshot
}

func (uc *DetectChangesUseCase) storeSnapshot(ctx context.Context, snapshot *entity.Snapshot) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Set(ctx, snapshotCacheKey, snapshot); err != nil {
		uc.logger.Warn("Failed to store trend snapshot", "error", err.Error())
	}
}
