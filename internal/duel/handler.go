package duel

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/auth"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/session"

	"github.com/gorilla/mux"
)

const defaultQuestionCount = 10

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type CreateRequest struct {
	Category      string `json:"category"`
	QuestionCount int    `json:"question_count"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	var category *models.Category
	if req.Category != "" && req.Category != "all" {
		c := models.Category(req.Category)
		if !c.Valid() {
			http.Error(w, "Unknown category", http.StatusBadRequest)
			return
		}
		category = &c
	}

	count := req.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}

	d, err := h.service.Create(userID, category, count)
	if err != nil {
		if errors.Is(err, ErrInsufficientQuestions) {
			http.Error(w, "Not enough questions for this duel", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create duel", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"id":        d.ID,
		"share_url": "/duelo/" + d.ID,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.service.Get(mux.Vars(r)["duelID"], userID)
	if err != nil {
		if errors.Is(err, ErrDuelNotFound) {
			http.Error(w, "Duel not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load duel", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(view)
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.service.Join(mux.Vars(r)["duelID"], userID)
	switch {
	case err == nil:
		json.NewEncoder(w).Encode(map[string]bool{"joined": true})
	case errors.Is(err, ErrDuelNotFound):
		http.Error(w, "Duel not found", http.StatusNotFound)
	case errors.Is(err, ErrSelfJoin):
		http.Error(w, "You cannot duel yourself", http.StatusConflict)
	case errors.Is(err, ErrAlreadyJoined):
		http.Error(w, "Duel already has an opponent", http.StatusConflict)
	default:
		http.Error(w, "Failed to join duel", http.StatusInternalServerError)
	}
}

type SubmitScoreRequest struct {
	Score   int                    `json:"score"`
	Answers []session.AnswerRecord `json:"answers"`
}

func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	d, err := h.service.SubmitScore(mux.Vars(r)["duelID"], userID, req.Score, req.Answers)
	switch {
	case err == nil:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":           d.Status,
			"challenger_score": d.ChallengerScore,
			"opponent_score":   d.OpponentScore,
			"is_complete":      d.Status == models.DuelCompleted,
			"winner":           Winner(d),
		})
	case errors.Is(err, ErrDuelNotFound):
		http.Error(w, "Duel not found", http.StatusNotFound)
	case errors.Is(err, ErrNotParticipant):
		http.Error(w, "You are not part of this duel", http.StatusForbidden)
	case errors.Is(err, ErrAlreadySubmitted):
		http.Error(w, "Score already submitted", http.StatusConflict)
	case errors.Is(err, ErrScoreMismatch):
		http.Error(w, "Score does not match the submitted answers", http.StatusBadRequest)
	default:
		http.Error(w, "Failed to submit score", http.StatusInternalServerError)
	}
}
