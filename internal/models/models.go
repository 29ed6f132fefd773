package models

import "time"

// Emotion is the fixed set of primary emotions the analyzer may return.
type Emotion string

const (
	EmotionStress    Emotion = "Stress"
	EmotionSadness   Emotion = "Sadness"
	EmotionFear      Emotion = "Fear"
	EmotionAnger     Emotion = "Anger"
	EmotionHappiness Emotion = "Happiness"
	EmotionNeutral   Emotion = "Neutral"
	EmotionAnxiety   Emotion = "Anxiety"
)

// Emotions lists every valid Emotion value, in schema order.
var Emotions = []Emotion{
	EmotionStress, EmotionSadness, EmotionFear, EmotionAnger,
	EmotionHappiness, EmotionNeutral, EmotionAnxiety,
}

// Valid reports whether e is one of the known emotions.
func (e Emotion) Valid() bool {
	for _, v := range Emotions {
		if e == v {
			return true
		}
	}
	return false
}

// Recommendation categories.
const (
	CategoryBreathing  = "breathing"
	CategoryRelaxation = "relaxation"
	CategoryMotivation = "motivation"
	CategoryActivity   = "activity"
)

// ValidCategory reports whether c is a known recommendation category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryBreathing, CategoryRelaxation, CategoryMotivation, CategoryActivity:
		return true
	}
	return false
}

type Recommendation struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

// AnalysisResult is one classification returned by the inference service.
type AnalysisResult struct {
	PrimaryEmotion   Emotion          `json:"primaryEmotion"`
	StressScore      int              `json:"stressScore"` // 0-100
	EmotionalSummary string           `json:"emotionalSummary"`
	Recommendations  []Recommendation `json:"recommendations"`
	Timestamp        time.Time        `json:"timestamp"`
}

// Emergency reports whether the result must force the SOS display mode.
func (r AnalysisResult) Emergency() bool {
	return r.StressScore >= 85 || r.PrimaryEmotion == EmotionFear
}

// MoodEntry is one completed check-in. Entries are immutable after creation;
// the id is minted client-side and unique within a scope.
type MoodEntry struct {
	ID string `json:"id"`
	AnalysisResult
}

// ReminderSettings is the per-scope singleton controlling check-in reminders.
// LastSent only advances forward and is written exclusively by the scheduler.
type ReminderSettings struct {
	Enabled   bool       `json:"enabled"`
	Frequency string     `json:"frequency"` // "daily" or "weekly"
	Time      string     `json:"time"`      // "HH:MM", local wall clock
	LastSent  *time.Time `json:"lastSent,omitempty"`
}

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// DefaultReminderSettings returns the settings a fresh scope starts with.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{Enabled: false, Frequency: FrequencyDaily, Time: "09:00"}
}

// User is the authenticated identity. Owned by the auth provider and treated
// as read-only by everything else.
type User struct {
	ID       string    `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Email    string    `db:"email" json:"email"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
	Avatar   string    `db:"avatar" json:"avatar,omitempty"`
}

// HealthAnalysis is the symptom-checker response.
type HealthAnalysis struct {
	PossibleCauses         []string `json:"possibleCauses"`
	Severity               string   `json:"severity"` // low, moderate, high, emergency
	Advice                 string   `json:"advice"`
	DietaryRecommendations []string `json:"dietaryRecommendations"`
	Disclaimer             string   `json:"disclaimer"`
}

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s string) bool {
	switch s {
	case "low", "moderate", "high", "emergency":
		return true
	}
	return false
}

type Exercise struct {
	Name  string `json:"name"`
	Sets  string `json:"sets"`
	Reps  string `json:"reps"`
	Notes string `json:"notes,omitempty"`
}

type Meal struct {
	Meal       string `json:"meal"`
	Suggestion string `json:"suggestion"`
}

// WorkoutPlan is the workout-advisor response.
type WorkoutPlan struct {
	Goal       string     `json:"goal"`
	Duration   string     `json:"duration"`
	Difficulty string     `json:"difficulty"` // beginner, intermediate, advanced
	Exercises  []Exercise `json:"exercises"`
	DietPlan   []Meal     `json:"dietPlan"`
}
