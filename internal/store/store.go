// Package store provides the persistence adapter over the two backing
// stores: the local guest store (SQLite key/value, no identity) and the
// cloud store (Postgres, keyed by user id). Callers pick an implementation
// once per scope and never branch on the backend again.
package store

import (
	"context"

	"mindguard/internal/models"
)

// Guest store keys. These mirror the keys the browser client used, so a
// device that held guest data before sign-in is readable as-is.
const (
	GuestHistoryKey  = "mindguard_history_guest"
	GuestSettingsKey = "mindguard_settings_guest"
	SessionKey       = "mindguard_session"
)

// Store is the uniform read/write surface over one scope's mood history and
// reminder settings.
//
// LoadHistory returns entries newest-first; missing or empty data yields an
// empty slice, never an error. SaveEntry is an upsert keyed by the entry id,
// so retries are idempotent. SaveEntriesBatch is used by migration only;
// callers must treat a failed batch as wholly not-applied. LoadSettings
// returns nil when the scope has never saved settings.
type Store interface {
	LoadHistory(ctx context.Context) ([]models.MoodEntry, error)
	SaveEntry(ctx context.Context, entry models.MoodEntry) error
	SaveEntriesBatch(ctx context.Context, entries []models.MoodEntry) error
	LoadSettings(ctx context.Context) (*models.ReminderSettings, error)
	SaveSettings(ctx context.Context, settings models.ReminderSettings) error
}
