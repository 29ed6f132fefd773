package handlers

import (
	"encoding/json"
	"net/http"

	"mindguard/internal/notify"
)

type NotificationsHandler struct {
	feed *notify.Feed
}

func NewNotificationsHandler(feed *notify.Feed) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

// List drains pending notifications for the UI to display.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	pending := h.feed.Drain()
	if pending == nil {
		pending = []notify.Notification{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"granted":       h.feed.Granted(),
		"notifications": pending,
	})
}

type permissionRequest struct {
	Granted bool `json:"granted"`
}

// SetPermission records the user's notification permission decision.
func (h *NotificationsHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	h.feed.SetPermission(req.Granted)
	w.WriteHeader(http.StatusNoContent)
}
