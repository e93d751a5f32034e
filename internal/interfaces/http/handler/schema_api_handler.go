package handler

import (
	"encoding/json"
	"net/http"

	"github.com/briananderson1222/EdgeMind-sub003/internal/application/dto"
	"github.com/briananderson1222/EdgeMind-sub003/internal/discovery"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

// SchemaAPIHandler обрабатывает API запросы для обнаруженной схемы
type SchemaAPIHandler struct {
	schema *discovery.SchemaCache
	logger *logger.Logger
}

// NewSchemaAPIHandler создает новый handler
func NewSchemaAPIHandler(schema *discovery.SchemaCache, logger *logger.Logger) *SchemaAPIHandler {
	return &SchemaAPIHandler{
		schema: schema,
		logger: logger,
	}
}

// GetMeasurements возвращает обнаруженные измерения
func (h *SchemaAPIHandler) GetMeasurements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.schema.RefreshIfStale(r.Context()); err != nil {
		h.logger.Error("Failed to refresh schema cache", err)
		http.Error(w, "Failed to refresh schema", http.StatusInternalServerError)
		return
	}

	// Опциональный фильтр по предприятию
	descriptors := h.schema.Measurements()
	if enterprise := r.URL.Query().Get("enterprise"); enterprise != "" {
		descriptors = h.schema.MeasurementsByEnterprise(enterprise)
	}

	response := dto.SchemaDTO{
		Measurements: dto.ToMeasurementDTOs(descriptors),
		Total:        len(descriptors),
		LastRefresh:  h.schema.LastRefresh(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode schema response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
