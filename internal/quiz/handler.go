package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/auth"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetQuestions serves a shuffled question list for the requested filter.
// Correct answers are included: the session machine runs on the client and
// scores locally, matching the trust model of the result endpoint.
func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var category *models.Category
	if raw := query.Get("category"); raw != "" {
		c := models.Category(raw)
		if !c.Valid() {
			http.Error(w, "Unknown category", http.StatusBadRequest)
			return
		}
		category = &c
	}

	var difficulty *models.Difficulty
	if raw := query.Get("difficulty"); raw != "" {
		d := models.Difficulty(raw)
		if !d.Valid() {
			http.Error(w, "Unknown difficulty", http.StatusBadRequest)
			return
		}
		difficulty = &d
	}

	limit := 10
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	questions, err := h.service.RandomQuestions(category, difficulty, limit)
	if err != nil {
		if errors.Is(err, ErrNoQuestions) {
			http.Error(w, "No questions found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch questions", http.StatusInternalServerError)
		return
	}

	dtos := make([]models.QuestionDTO, len(questions))
	for i, q := range questions {
		dtos[i] = q.ToDTO(true)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"questions": dtos})
}

// GetDailyQuestions serves today's fixed question set.
func (h *Handler) GetDailyQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.DailyQuestions(r.Context(), h.service.now())
	if err != nil {
		if errors.Is(err, ErrNoQuestions) {
			http.Error(w, "No questions found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch daily questions", http.StatusInternalServerError)
		return
	}

	dtos := make([]models.QuestionDTO, len(questions))
	for i, q := range questions {
		dtos[i] = q.ToDTO(true)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"questions": dtos})
}

// SubmitResult records a finished session and returns the progression view.
func (h *Handler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var sub ResultSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	resp, err := h.service.SubmitResult(userID, sub)
	if err != nil {
		http.Error(w, "Invalid quiz result", http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(resp)
}

// GetRecentResults lists the caller's latest session summaries.
func (h *Handler) GetRecentResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	sessions, err := h.service.RecentResults(userID, limit)
	if err != nil {
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"results": sessions})
}
