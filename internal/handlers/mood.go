package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"mindguard/internal/session"
)

type MoodHandler struct {
	co *session.Coordinator
}

func NewMoodHandler(co *session.Coordinator) *MoodHandler {
	return &MoodHandler{co: co}
}

type analyzeRequest struct {
	Text        string `json:"text"`
	AudioBase64 string `json:"audioBase64,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// Analyze classifies a check-in and records it under the active scope.
func (h *MoodHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Text == "" && req.AudioBase64 == "" {
		http.Error(w, "text or audio required", http.StatusBadRequest)
		return
	}

	var audio []byte
	if req.AudioBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.AudioBase64)
		if err != nil {
			http.Error(w, "invalid audio encoding", http.StatusBadRequest)
			return
		}
		audio = decoded
	}

	result, entry := h.co.Analyze(r.Context(), req.Text, audio, req.MimeType)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"result":    result,
		"entryId":   entry.ID,
		"sosActive": h.co.SOSActive(),
	})
}

// History returns the in-memory history for the active scope, newest first.
func (h *MoodHandler) History(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"entries": h.co.History(),
		"loading": h.co.Loading(),
	})
}

type sosRequest struct {
	Active bool `json:"active"`
}

// SetSOS raises or dismisses the emergency display manually.
func (h *MoodHandler) SetSOS(w http.ResponseWriter, r *http.Request) {
	var req sosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	h.co.SetSOS(req.Active)
	w.WriteHeader(http.StatusNoContent)
}
