package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmergency(t *testing.T) {
	tests := []struct {
		name   string
		result AnalysisResult
		want   bool
	}{
		{"calm", AnalysisResult{PrimaryEmotion: EmotionNeutral, StressScore: 20}, false},
		{"just under threshold", AnalysisResult{PrimaryEmotion: EmotionStress, StressScore: 84}, false},
		{"at threshold", AnalysisResult{PrimaryEmotion: EmotionStress, StressScore: 85}, true},
		{"fear at low score", AnalysisResult{PrimaryEmotion: EmotionFear, StressScore: 10}, true},
		{"anxiety at low score", AnalysisResult{PrimaryEmotion: EmotionAnxiety, StressScore: 10}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.result.Emergency())
		})
	}
}

func TestEmotionValid(t *testing.T) {
	for _, e := range Emotions {
		require.True(t, e.Valid())
	}
	require.False(t, Emotion("Ecstatic").Valid())
	require.False(t, Emotion("").Valid())
}

func TestValidCategory(t *testing.T) {
	require.True(t, ValidCategory(CategoryBreathing))
	require.True(t, ValidCategory(CategoryActivity))
	require.False(t, ValidCategory("sleep"))
}

func TestDefaultReminderSettings(t *testing.T) {
	s := DefaultReminderSettings()
	require.False(t, s.Enabled)
	require.Equal(t, FrequencyDaily, s.Frequency)
	require.Equal(t, "09:00", s.Time)
	require.Nil(t, s.LastSent)
}
