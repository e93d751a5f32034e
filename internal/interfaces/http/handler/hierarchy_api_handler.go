package handler

import (
	"encoding/json"
	"net/http"

	"github.com/briananderson1222/EdgeMind-sub003/internal/application/dto"
	"github.com/briananderson1222/EdgeMind-sub003/internal/discovery"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

// HierarchyAPIHandler обрабатывает API запросы для топологии производства
type HierarchyAPIHandler struct {
	hierarchy *discovery.HierarchyCache
	logger    *logger.Logger
}

// NewHierarchyAPIHandler создает новый handler
func NewHierarchyAPIHandler(hierarchy *discovery.HierarchyCache, logger *logger.Logger) *HierarchyAPIHandler {
	return &HierarchyAPIHandler{
		hierarchy: hierarchy,
		logger:    logger,
	}
}

// GetHierarchy возвращает дерево enterprise -> site -> area -> machine
func (h *HierarchyAPIHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.hierarchy.RefreshIfStale(r.Context()); err != nil {
		h.logger.Error("Failed to refresh hierarchy cache", err)
		http.Error(w, "Failed to refresh hierarchy", http.StatusInternalServerError)
		return
	}

	response := dto.HierarchyDTO{
		Topology:    h.hierarchy.Tree(),
		LastRefresh: h.hierarchy.LastRefresh(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode hierarchy response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
