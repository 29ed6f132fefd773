package handlers

import (
	"encoding/json"
	"net/http"

	"mindguard/internal/auth"
)

type UserHandler struct {
	auth *auth.Provider
}

func NewUserHandler(auth *auth.Provider) *UserHandler {
	return &UserHandler{auth: auth}
}

// GetMe returns the authenticated user's profile.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)
	user, err := h.auth.LookupByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToUserDTO(*user))
}
