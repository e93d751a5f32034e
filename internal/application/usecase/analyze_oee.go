package usecase

import (
	"context"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/application/dto"
	"github.com/briananderson1222/EdgeMind-sub003/internal/discovery"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/entity"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/service"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

// AnalyzeOEEUseCase вычисляет OEE для каждого предприятия по данным,
// доступным в кеше схемы
type AnalyzeOEEUseCase struct {
	schema   *discovery.SchemaCache
	analyzer *service.OEEAnalyzer
	logger   *logger.Logger
}

// NewAnalyzeOEEUseCase создает новый use case анализа OEE
func NewAnalyzeOEEUseCase(
	schema *discovery.SchemaCache,
	analyzer *service.OEEAnalyzer,
	logger *logger.Logger,
) *AnalyzeOEEUseCase {
	return &AnalyzeOEEUseCase{
		schema:   schema,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Execute обновляет кеш схемы при необходимости и строит OEE-результаты
// для каждой пары (enterprise, site). Неполнота данных не является ошибкой:
// она кодируется в tier и уверенности результата.
func (uc *AnalyzeOEEUseCase) Execute(ctx context.Context) (*dto.OEEReportDTO, error) {
	if err := uc.schema.RefreshIfStale(ctx); err != nil {
		return nil, err
	}

	report := &dto.OEEReportDTO{
		GeneratedAt: time.Now().UTC(),
		Results:     []*entity.OEEResult{},
		Discoveries: []*service.OEEDiscovery{},
	}

	for _, enterprise := range uc.schema.Enterprises() {
		descriptors := uc.schema.MeasurementsByEnterprise(enterprise)
		found := uc.analyzer.AnalyzeEnterpriseOEE(enterprise, descriptors)
		report.Discoveries = append(report.Discoveries, found)

		sites := found.Sites
		if len(sites) == 0 {
			// Площадки не наблюдались - один результат на все предприятие
			sites = []string{""}
		}

		for _, site := range sites {
			siteDescriptors := descriptors
			if site != "" {
				siteDescriptors = filterBySite(descriptors, site)
			}
			result := uc.analyzer.ComputeResult(enterprise, site, found, siteDescriptors)
			report.Results = append(report.Results, result)
		}

		uc.logger.Debug("Enterprise OEE analyzed",
			"enterprise", enterprise,
			"tier", int(found.Tier),
			"confidence", found.Confidence,
			"sites", len(sites),
		)
	}

	return report, nil
}

// filterBySite оставляет дескрипторы, наблюдавшиеся на указанной площадке
func filterBySite(descriptors []*entity.MeasurementDescriptor, site string) []*entity.MeasurementDescriptor {
	var filtered []*entity.MeasurementDescriptor
	for _, d := range descriptors {
		for _, s := range d.Sites {
			if s == site {
				filtered = append(filtered, d)
				break
			}
		}
	}
	return filtered
}
