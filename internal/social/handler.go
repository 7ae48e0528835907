package social

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/auth"

	"github.com/gorilla/mux"
)

const defaultFeedLimit = 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	friends, err := h.service.Friends(userID)
	if err != nil {
		http.Error(w, "Failed to load friends", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"friends": friends})
}

type AddFriendRequest struct {
	Email string `json:"email"`
}

func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req AddFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	friend, err := h.service.AddFriend(userID, req.Email)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(friend)
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, "No player with that email", http.StatusNotFound)
	case errors.Is(err, ErrSelfFriend):
		http.Error(w, "You cannot add yourself", http.StatusBadRequest)
	case errors.Is(err, ErrAlreadyFriends):
		http.Error(w, "Friendship already exists", http.StatusConflict)
	default:
		http.Error(w, "Failed to add friend", http.StatusInternalServerError)
	}
}

func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friendID, err := strconv.ParseUint(mux.Vars(r)["friendID"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid friend id", http.StatusBadRequest)
		return
	}

	err = h.service.RemoveFriend(userID, uint(friendID))
	switch {
	case err == nil:
		json.NewEncoder(w).Encode(map[string]bool{"removed": true})
	case errors.Is(err, ErrFriendshipNotFound):
		http.Error(w, "Friendship not found", http.StatusNotFound)
	default:
		http.Error(w, "Failed to remove friend", http.StatusInternalServerError)
	}
}

func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := defaultFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	items, err := h.service.Feed(userID, limit)
	if err != nil {
		http.Error(w, "Failed to load feed", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"feed": items})
}
