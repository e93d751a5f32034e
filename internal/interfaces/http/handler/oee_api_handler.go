package handler

import (
	"encoding/json"
	"net/http"

	"github.com/briananderson1222/EdgeMind-sub003/internal/application/dto"
	"github.com/briananderson1222/EdgeMind-sub003/internal/application/usecase"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/entity"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/service"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

// OEEAPIHandler обрабатывает API запросы для расчета OEE
type OEEAPIHandler struct {
	analyzeOEEUC *usecase.AnalyzeOEEUseCase
	logger       *logger.Logger
}

// NewOEEAPIHandler создает новый handler
func NewOEEAPIHandler(analyzeOEEUC *usecase.AnalyzeOEEUseCase, logger *logger.Logger) *OEEAPIHandler {
	return &OEEAPIHandler{
		analyzeOEEUC: analyzeOEEUC,
		logger:       logger,
	}
}

// GetOEE возвращает результаты каскадного расчета OEE по предприятиям
func (h *OEEAPIHandler) GetOEE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := h.analyzeOEEUC.Execute(r.Context())
	if err != nil {
		h.logger.Error("Failed to analyze OEE", err)
		http.Error(w, "Failed to analyze OEE", http.StatusInternalServerError)
		return
	}

	// Опциональный фильтр по предприятию
	if enterprise := r.URL.Query().Get("enterprise"); enterprise != "" {
		report = filterReport(report, enterprise)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("Failed to encode OEE response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func filterReport(report *dto.OEEReportDTO, enterprise string) *dto.OEEReportDTO {
	filtered := &dto.OEEReportDTO{
		GeneratedAt: report.GeneratedAt,
		Results:     make([]*entity.OEEResult, 0, len(report.Results)),
		Discoveries: make([]*service.OEEDiscovery, 0, 1),
	}

	for _, result := range report.Results {
		if result.Enterprise == enterprise {
			filtered.Results = append(filtered.Results, result)
		}
	}

	for _, discovery := range report.Discoveries {
		if discovery.Enterprise == enterprise {
			filtered.Discoveries = append(filtered.Discoveries, discovery)
		}
	}

	return filtered
}
