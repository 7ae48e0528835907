package ranking

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		http.Error(w, "Unknown ranking period", http.StatusBadRequest)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	entries, err := h.service.Top(r.Context(), period, limit)
	if err != nil {
		http.Error(w, "Failed to load ranking", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"period":  period,
		"entries": entries,
	})
}
