package profile

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/auth"
	"github.com/diogo-fc/quiz-copa-do-mundo/internal/scoring"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.service.Get(userID)
	if err != nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"profile":        profile.ToDTO(),
		"level_title":    scoring.LevelTitle(profile.Level),
		"level_progress": scoring.LevelProgressPercent(profile.XP),
		"current_streak": CurrentStreak(profile, time.Now()),
	})
}

type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	AvatarURL    *string `json:"avatar_url"`
	FavoriteTeam *string `json:"favorite_team"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.service.Update(userID, req.Name, req.AvatarURL, req.FavoriteTeam); err != nil {
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	profile, err := h.service.Get(userID)
	if err != nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(profile.ToDTO())
}

func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	views, err := h.service.Achievements(userID)
	if err != nil {
		http.Error(w, "Failed to load achievements", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"achievements": views})
}

func (h *Handler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.service.Get(userID)
	if err != nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"streak_days":    CurrentStreak(profile, time.Now()),
		"last_played_at": profile.LastPlayedAt,
	})
}

func (h *Handler) TouchStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	days, updated, err := h.service.TouchStreak(userID, now)
	if err != nil {
		http.Error(w, "Failed to update streak", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"streak_days":    days,
		"streak_updated": updated,
		"last_played_at": now,
	})
}
