package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mindguard/internal/auth"
	"mindguard/internal/session"
)

type AuthHandler struct {
	auth *auth.Provider
	co   *session.Coordinator
}

func NewAuthHandler(auth *auth.Provider, co *session.Coordinator) *AuthHandler {
	return &AuthHandler{auth: auth, co: co}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers an account and migrates any guest data into it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if c.Name == "" || c.Email == "" || c.Password == "" {
		http.Error(w, "name, email and password required", http.StatusBadRequest)
		return
	}

	user, token, err := h.auth.Register(r.Context(), c.Name, c.Email, c.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			http.Error(w, "email already registered", http.StatusBadRequest)
			return
		}
		http.Error(w, "could not create account", http.StatusInternalServerError)
		return
	}

	if err := h.co.CompleteAuthentication(r.Context(), user); err != nil {
		// Guest data stays local for a later retry; the session itself is valid.
		http.Error(w, "could not migrate guest data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"token": token, "user": ToUserDTO(*user)})
}

// Login authenticates and migrates any guest data into the account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if c.Email == "" || c.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	user, token, err := h.auth.Login(r.Context(), c.Email, c.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	if err := h.co.CompleteAuthentication(r.Context(), user); err != nil {
		http.Error(w, "could not migrate guest data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"token": token, "user": ToUserDTO(*user)})
}

// Logout signs out and drops back to the guest scope.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.co.SignOut(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
