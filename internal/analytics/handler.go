package analytics

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultTopProducts    = 10
	defaultTopPreferences = 3
	maxTop                = 100
)

type Handler struct {
	service AnalyticsService
	logger  *zap.SugaredLogger
}

func NewHandler(service AnalyticsService, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// GetTopProducts - GET /products/top?top=N
func (h *Handler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	topN := parseTop(r, defaultTopProducts)

	scores, err := h.service.GetTopProducts(r.Context(), topN)
	if err != nil {
		h.logger.Errorf("Failed to get top products: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if len(scores) == 0 {
		scores = []ProductScore{} // Пустой массив вместо null
	}

	h.writeJSON(w, scores)
}

// GetScopePreferences - GET /scope/{scope_id}/preferences?top=N
func (h *Handler) GetScopePreferences(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	scopeID := vars["scope_id"]
	if scopeID == "" {
		http.Error(w, "Scope ID is required", http.StatusBadRequest)
		return
	}

	topN := parseTop(r, defaultTopPreferences)

	products, err := h.service.GetScopePreferences(r.Context(), scopeID, topN)
	if err != nil {
		h.logger.Errorf("Failed to get scope preferences: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if len(products) == 0 {
		products = []string{}
	}

	h.writeJSON(w, products)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Errorf("Failed to encode response: %v", err)
	}
}

func parseTop(r *http.Request, def int) int {
	topN := def
	if topParam := r.URL.Query().Get("top"); topParam != "" {
		if n, err := strconv.Atoi(topParam); err == nil && n > 0 {
			topN = n
		}
	}
	if topN > maxTop {
		topN = maxTop
	}
	return topN
}
