package handlers

import (
	"encoding/json"
	"net/http"

	"mindguard/internal/analysis"
)

type HealthHandler struct {
	ai *analysis.Client
}

func NewHealthHandler(ai *analysis.Client) *HealthHandler {
	return &HealthHandler{ai: ai}
}

type symptomsRequest struct {
	Symptoms string `json:"symptoms"`
}

// Symptoms runs the symptom checker.
func (h *HealthHandler) Symptoms(w http.ResponseWriter, r *http.Request) {
	var req symptomsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symptoms == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := h.ai.AnalyzeSymptoms(r.Context(), req.Symptoms)
	if err != nil {
		http.Error(w, "unable to analyze symptoms at this time", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

type workoutRequest struct {
	Preferences string `json:"preferences"`
}

// Workout generates a workout plan.
func (h *HealthHandler) Workout(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Preferences == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	plan, err := h.ai.GenerateWorkout(r.Context(), req.Preferences)
	if err != nil {
		http.Error(w, "unable to generate workout plan", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plan)
}
