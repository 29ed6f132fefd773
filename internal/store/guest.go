package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mindguard/internal/models"
)

// GuestStore holds unauthenticated data in a local SQLite file: a string
// key/value table under fixed keys, the device-local analogue of browser
// storage. History and settings are serialized JSON blobs written whole;
// the last write wins.
type GuestStore struct {
	db *sql.DB
}

// NewGuestStore binds a guest store to db and creates its schema.
func NewGuestStore(db *sql.DB) (*GuestStore, error) {
	schema := `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create guest schema: %w", err)
	}
	return &GuestStore{db: db}, nil
}

func (s *GuestStore) get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *GuestStore) set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

func (s *GuestStore) delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// LoadHistory returns the guest history, newest first. A missing key is an
// empty history, not an error.
func (s *GuestStore) LoadHistory(ctx context.Context) ([]models.MoodEntry, error) {
	raw, ok, err := s.get(ctx, GuestHistoryKey)
	if err != nil {
		return nil, &PersistenceError{Op: "load history", Scope: GuestScope, Err: err}
	}
	if !ok {
		return []models.MoodEntry{}, nil
	}
	var entries []models.MoodEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, &PersistenceError{Op: "load history", Scope: GuestScope, Err: err}
	}
	if entries == nil {
		entries = []models.MoodEntry{}
	}
	return entries, nil
}

// SaveHistory overwrites the stored history with the full serialized slice.
func (s *GuestStore) SaveHistory(ctx context.Context, entries []models.MoodEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return &PersistenceError{Op: "save history", Scope: GuestScope, Err: err}
	}
	if err := s.set(ctx, GuestHistoryKey, string(raw)); err != nil {
		return &PersistenceError{Op: "save history", Scope: GuestScope, Err: err}
	}
	return nil
}

// SaveEntry prepends entry to the stored history, replacing any entry that
// already carries the same id.
func (s *GuestStore) SaveEntry(ctx context.Context, entry models.MoodEntry) error {
	existing, err := s.LoadHistory(ctx)
	if err != nil {
		return err
	}
	updated := make([]models.MoodEntry, 0, len(existing)+1)
	updated = append(updated, entry)
	for _, e := range existing {
		if e.ID != entry.ID {
			updated = append(updated, e)
		}
	}
	return s.SaveHistory(ctx, updated)
}

// SaveEntriesBatch prepends entries to the stored history in one write.
func (s *GuestStore) SaveEntriesBatch(ctx context.Context, entries []models.MoodEntry) error {
	existing, err := s.LoadHistory(ctx)
	if err != nil {
		return err
	}
	return s.SaveHistory(ctx, append(append([]models.MoodEntry{}, entries...), existing...))
}

// ClearHistory removes the guest history key. Used after a successful
// migration into an account.
func (s *GuestStore) ClearHistory(ctx context.Context) error {
	if err := s.delete(ctx, GuestHistoryKey); err != nil {
		return &PersistenceError{Op: "clear history", Scope: GuestScope, Err: err}
	}
	return nil
}

// LoadSettings returns the guest reminder settings, or nil if never saved.
func (s *GuestStore) LoadSettings(ctx context.Context) (*models.ReminderSettings, error) {
	raw, ok, err := s.get(ctx, GuestSettingsKey)
	if err != nil {
		return nil, &PersistenceError{Op: "load settings", Scope: GuestScope, Err: err}
	}
	if !ok {
		return nil, nil
	}
	var settings models.ReminderSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, &PersistenceError{Op: "load settings", Scope: GuestScope, Err: err}
	}
	return &settings, nil
}

// SaveSettings overwrites the stored settings blob.
func (s *GuestStore) SaveSettings(ctx context.Context, settings models.ReminderSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return &PersistenceError{Op: "save settings", Scope: GuestScope, Err: err}
	}
	if err := s.set(ctx, GuestSettingsKey, string(raw)); err != nil {
		return &PersistenceError{Op: "save settings", Scope: GuestScope, Err: err}
	}
	return nil
}

// ClearSettings removes the guest settings key.
func (s *GuestStore) ClearSettings(ctx context.Context) error {
	if err := s.delete(ctx, GuestSettingsKey); err != nil {
		return &PersistenceError{Op: "clear settings", Scope: GuestScope, Err: err}
	}
	return nil
}

// LoadSession returns the remembered session token, if any.
func (s *GuestStore) LoadSession(ctx context.Context) (string, error) {
	token, _, err := s.get(ctx, SessionKey)
	if err != nil {
		return "", &PersistenceError{Op: "load session", Scope: GuestScope, Err: err}
	}
	return token, nil
}

// SaveSession remembers the session token across restarts.
func (s *GuestStore) SaveSession(ctx context.Context, token string) error {
	if err := s.set(ctx, SessionKey, token); err != nil {
		return &PersistenceError{Op: "save session", Scope: GuestScope, Err: err}
	}
	return nil
}

// ClearSession forgets the remembered session token.
func (s *GuestStore) ClearSession(ctx context.Context) error {
	if err := s.delete(ctx, SessionKey); err != nil {
		return &PersistenceError{Op: "clear session", Scope: GuestScope, Err: err}
	}
	return nil
}
