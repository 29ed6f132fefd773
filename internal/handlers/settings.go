package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"mindguard/internal/models"
	"mindguard/internal/session"
)

type SettingsHandler struct {
	co *session.Coordinator
}

func NewSettingsHandler(co *session.Coordinator) *SettingsHandler {
	return &SettingsHandler{co: co}
}

// Get returns the active scope's reminder settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.co.ReminderState())
}

type settingsRequest struct {
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency"`
	Time      string `json:"time"`
}

// Update replaces the reminder settings. LastSent is owned by the scheduler
// and cannot be set here.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Frequency != models.FrequencyDaily && req.Frequency != models.FrequencyWeekly {
		http.Error(w, "frequency must be daily or weekly", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		http.Error(w, "time must be HH:MM", http.StatusBadRequest)
		return
	}

	h.co.UpdateSettings(r.Context(), models.ReminderSettings{
		Enabled:   req.Enabled,
		Frequency: req.Frequency,
		Time:      req.Time,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.co.ReminderState())
}
