package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"mindguard/internal/models"
)

func setupGuestStore(t *testing.T) *GuestStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewGuestStore(db)
	require.NoError(t, err)
	return s
}

func testEntry(id string, score int, at time.Time) models.MoodEntry {
	return models.MoodEntry{
		ID: id,
		AnalysisResult: models.AnalysisResult{
			PrimaryEmotion:   models.EmotionNeutral,
			StressScore:      score,
			EmotionalSummary: "steady",
			Recommendations: []models.Recommendation{
				{Title: "Box breathing", Description: "4-4-4-4", Category: models.CategoryBreathing, DurationMinutes: 5},
			},
			Timestamp: at,
		},
	}
}

func TestGuestStoreEmptyLoads(t *testing.T) {
	s := setupGuestStore(t)
	ctx := context.Background()

	history, err := s.LoadHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, history)

	settings, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	require.Nil(t, settings)
}

func TestGuestStoreHistoryRoundTrip(t *testing.T) {
	s := setupGuestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	e1 := testEntry("a", 10, at)
	e2 := testEntry("b", 40, at.Add(time.Hour))
	require.NoError(t, s.SaveHistory(ctx, []models.MoodEntry{e2, e1}))

	loaded, err := s.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "b", loaded[0].ID)
	require.Equal(t, "a", loaded[1].ID)
	require.Equal(t, e1.Recommendations, loaded[1].Recommendations)
	require.True(t, loaded[1].Timestamp.Equal(at))
}

func TestGuestStoreSaveHistoryOverwrites(t *testing.T) {
	s := setupGuestStore(t)
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.SaveHistory(ctx, []models.MoodEntry{testEntry("a", 10, at)}))
	require.NoError(t, s.SaveHistory(ctx, []models.MoodEntry{testEntry("b", 20, at)}))

	loaded, err := s.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "b", loaded[0].ID)
}

func TestGuestStoreSaveEntryPrependsAndReplacesByID(t *testing.T) {
	s := setupGuestStore(t)
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.SaveEntry(ctx, testEntry("a", 10, at)))
	require.NoError(t, s.SaveEntry(ctx, testEntry("b", 20, at)))

	loaded, err := s.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "b", loaded[0].ID)

	// Same id again: exactly one record, second write wins.
	require.NoError(t, s.SaveEntry(ctx, testEntry("b", 75, at)))
	loaded, err = s.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, 75, loaded[0].StressScore)
}

func TestGuestStoreClearHistory(t *testing.T) {
	s := setupGuestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveHistory(ctx, []models.MoodEntry{testEntry("a", 10, time.Now())}))
	require.NoError(t, s.ClearHistory(ctx))

	loaded, err := s.LoadHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)

	// Clearing an already-empty store is fine.
	require.NoError(t, s.ClearHistory(ctx))
}

func TestGuestStoreSettingsRoundTrip(t *testing.T) {
	s := setupGuestStore(t)
	ctx := context.Background()

	sent := time.Date(2026, 3, 9, 9, 2, 0, 0, time.UTC)
	in := models.ReminderSettings{Enabled: true, Frequency: models.FrequencyWeekly, Time: "08:30", LastSent: &sent}
	require.NoError(t, s.SaveSettings(ctx, in))

	out, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, in.Enabled, out.Enabled)
	require.Equal(t, in.Frequency, out.Frequency)
	require.Equal(t, in.Time, out.Time)
	require.NotNil(t, out.LastSent)
	require.True(t, out.LastSent.Equal(sent))

	require.NoError(t, s.ClearSettings(ctx))
	out, err = s.LoadSettings(ctx)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestGuestStoreSessionRoundTrip(t *testing.T) {
	s := setupGuestStore(t)
	ctx := context.Background()

	token, err := s.LoadSession(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	require.NoError(t, s.SaveSession(ctx, "tok-1"))
	token, err = s.LoadSession(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)

	require.NoError(t, s.ClearSession(ctx))
	token, err = s.LoadSession(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}
