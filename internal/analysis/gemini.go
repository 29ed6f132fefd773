// Package analysis calls the generative-AI service for mood classification,
// symptom triage, and workout generation. Every call requests JSON
// constrained by a response schema; the rest of the application only ever
// sees validated model types.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"mindguard/internal/models"
)

const defaultModel = "gemini-2.5-flash"

const fallbackSummary = "We couldn't analyze your input at this moment. Please try again."

// ErrNoInput is returned when neither text nor audio was provided.
var ErrNoInput = errors.New("analysis: no input provided")

const moodSystemPrompt = `You are MindGuard, an empathetic AI mental health companion.
Analyze the user's input (text and/or voice) to detect their emotional state.
Be supportive, non-judgmental, and calm.
If the input indicates severe crisis or self-harm, categorize as 'Fear' or 'Sadness' but provide a high stress score (90-100) so the app can trigger SOS protocols.
Provide 3 actionable, short-term recommendations suitable for their current state.`

const healthSystemPrompt = `You are a helpful AI health assistant.
Analyze the user's described symptoms.
Provide potential causes (non-diagnostic), practical self-care advice, and a severity assessment.
Crucially, include DIETARY recommendations: specific foods that might help alleviate the symptoms or foods to avoid.
ALWAYS include a disclaimer that you are an AI and this is not medical advice.
If symptoms sound life-threatening (chest pain, stroke signs, severe bleeding), set severity to 'emergency'.`

const workoutSystemPrompt = `You are an expert fitness coach.
Create a structured, effective workout routine based on the user's goal, available equipment, or time constraints.
Include 4-6 exercises with set/rep ranges.
ALSO provide a simple 1-day diet plan (Breakfast, Lunch, Snack, Dinner) that aligns with their fitness goal (e.g., high protein for muscle gain, low cal for weight loss).`

func emotionEnum() []string {
	out := make([]string, len(models.Emotions))
	for i, e := range models.Emotions {
		out[i] = string(e)
	}
	return out
}

var moodSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"primaryEmotion": {
			Type:        genai.TypeString,
			Enum:        emotionEnum(),
			Description: "The dominant emotion detected in the user's input.",
		},
		"stressScore": {
			Type:        genai.TypeInteger,
			Description: "A calculated mental stress score from 0 (completely calm) to 100 (severe distress).",
		},
		"emotionalSummary": {
			Type:        genai.TypeString,
			Description: "A brief, empathetic summary of the user's state based on their input (max 2 sentences).",
		},
		"recommendations": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":       {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
					"category": {
						Type: genai.TypeString,
						Enum: []string{
							models.CategoryBreathing, models.CategoryRelaxation,
							models.CategoryMotivation, models.CategoryActivity,
						},
					},
					"durationMinutes": {Type: genai.TypeInteger},
				},
				Required: []string{"title", "description", "category"},
			},
		},
	},
	Required: []string{"primaryEmotion", "stressScore", "emotionalSummary", "recommendations"},
}

var healthSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"possibleCauses": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "List of 3 potential causes for the symptoms.",
		},
		"severity": {
			Type:        genai.TypeString,
			Enum:        []string{"low", "moderate", "high", "emergency"},
			Description: "Estimated severity level.",
		},
		"advice": {
			Type:        genai.TypeString,
			Description: "Actionable health advice or self-care steps.",
		},
		"dietaryRecommendations": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "List of foods to eat (beneficial) or avoid based on the symptoms.",
		},
		"disclaimer": {
			Type:        genai.TypeString,
			Description: "Standard medical disclaimer.",
		},
	},
	Required: []string{"possibleCauses", "severity", "advice", "dietaryRecommendations", "disclaimer"},
}

var workoutSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"goal":       {Type: genai.TypeString},
		"duration":   {Type: genai.TypeString},
		"difficulty": {Type: genai.TypeString, Enum: []string{"beginner", "intermediate", "advanced"}},
		"exercises": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":  {Type: genai.TypeString},
					"sets":  {Type: genai.TypeString},
					"reps":  {Type: genai.TypeString},
					"notes": {Type: genai.TypeString},
				},
				Required: []string{"name", "sets", "reps"},
			},
		},
		"dietPlan": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"meal":       {Type: genai.TypeString, Description: "e.g., Breakfast, Lunch, Dinner, Snack"},
					"suggestion": {Type: genai.TypeString, Description: "Recommended food item or meal description"},
				},
				Required: []string{"meal", "suggestion"},
			},
		},
	},
	Required: []string{"goal", "duration", "difficulty", "exercises", "dietPlan"},
}

// Client wraps the Gemini API.
type Client struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

// NewClient creates a Gemini-backed analysis client.
func NewClient(ctx context.Context, apiKey, model string, log *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("analysis: API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("analysis: create client: %w", err)
	}
	return &Client{client: client, model: model, log: log}, nil
}

func (c *Client) generate(ctx context.Context, system string, contents []*genai.Content, schema *genai.Schema, temperature float32) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
		Temperature:       genai.Ptr[float32](temperature),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("analysis: generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, errors.New("analysis: empty response")
	}
	return []byte(text), nil
}

// AnalyzeMood classifies text and/or recorded audio. It never fails:
// inference errors and schema-violating responses degrade to a neutral
// zero-score fallback so the caller is never blocked from retrying.
func (c *Client) AnalyzeMood(ctx context.Context, text string, audio []byte, mimeType string) models.AnalysisResult {
	now := time.Now()
	result, err := c.analyzeMood(ctx, text, audio, mimeType, now)
	if err != nil {
		c.log.Error("mood analysis failed", slog.Any("err", err))
		return Fallback(now)
	}
	return result
}

func (c *Client) analyzeMood(ctx context.Context, text string, audio []byte, mimeType string, now time.Time) (models.AnalysisResult, error) {
	var parts []*genai.Part
	if len(audio) > 0 && mimeType != "" {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{Data: audio, MIMEType: mimeType}})
		parts = append(parts, genai.NewPartFromText("Analyze the tone, pitch, and content of this audio voice recording to determine the user's emotional state."))
	}
	if text != "" {
		parts = append(parts, genai.NewPartFromText(fmt.Sprintf("User text input: %q. Analyze this text for emotional context.", text)))
	}
	if len(parts) == 0 {
		return models.AnalysisResult{}, ErrNoInput
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	raw, err := c.generate(ctx, moodSystemPrompt, contents, moodSchema, 0.7)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return DecodeAnalysis(raw, now)
}

// AnalyzeSymptoms runs the symptom checker.
func (c *Client) AnalyzeSymptoms(ctx context.Context, symptoms string) (*models.HealthAnalysis, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf("Analyze these symptoms: %q", symptoms), genai.RoleUser),
	}
	raw, err := c.generate(ctx, healthSystemPrompt, contents, healthSchema, 0.4)
	if err != nil {
		return nil, err
	}
	return DecodeHealth(raw)
}

// GenerateWorkout builds a workout plan from free-text preferences.
func (c *Client) GenerateWorkout(ctx context.Context, preferences string) (*models.WorkoutPlan, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf("Generate a workout plan based on these preferences: %q", preferences), genai.RoleUser),
	}
	raw, err := c.generate(ctx, workoutSystemPrompt, contents, workoutSchema, 0.7)
	if err != nil {
		return nil, err
	}
	var plan models.WorkoutPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("analysis: decode workout: %w", err)
	}
	if plan.Goal == "" || len(plan.Exercises) == 0 {
		return nil, errors.New("analysis: workout plan missing required fields")
	}
	return &plan, nil
}

// Fallback is the neutral result substituted when inference fails.
func Fallback(now time.Time) models.AnalysisResult {
	return models.AnalysisResult{
		PrimaryEmotion:   models.EmotionNeutral,
		StressScore:      0,
		EmotionalSummary: fallbackSummary,
		Recommendations:  []models.Recommendation{},
		Timestamp:        now,
	}
}

// DecodeAnalysis parses and validates a mood classification document. The
// schema is treated as a strict contract: any structural mismatch is
// rejected rather than trusted at the call site.
func DecodeAnalysis(raw []byte, now time.Time) (models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("analysis: decode: %w", err)
	}
	if !result.PrimaryEmotion.Valid() {
		return models.AnalysisResult{}, fmt.Errorf("analysis: unknown emotion %q", result.PrimaryEmotion)
	}
	if result.StressScore < 0 || result.StressScore > 100 {
		return models.AnalysisResult{}, fmt.Errorf("analysis: stress score %d out of range", result.StressScore)
	}
	if result.EmotionalSummary == "" {
		return models.AnalysisResult{}, errors.New("analysis: missing emotional summary")
	}
	for _, rec := range result.Recommendations {
		if !models.ValidCategory(rec.Category) {
			return models.AnalysisResult{}, fmt.Errorf("analysis: unknown recommendation category %q", rec.Category)
		}
	}
	if result.Recommendations == nil {
		result.Recommendations = []models.Recommendation{}
	}
	result.Timestamp = now
	return result, nil
}

// DecodeHealth parses and validates a symptom-checker document.
func DecodeHealth(raw []byte) (*models.HealthAnalysis, error) {
	var health models.HealthAnalysis
	if err := json.Unmarshal(raw, &health); err != nil {
		return nil, fmt.Errorf("analysis: decode health: %w", err)
	}
	if !models.ValidSeverity(health.Severity) {
		return nil, fmt.Errorf("analysis: unknown severity %q", health.Severity)
	}
	if health.Advice == "" || health.Disclaimer == "" {
		return nil, errors.New("analysis: health analysis missing required fields")
	}
	return &health, nil
}
