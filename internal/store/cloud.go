package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"mindguard/internal/crypto"
	"mindguard/internal/models"
)

// CloudStore is the Postgres-backed document store holding every account's
// mood history and reminder settings. Call Scope to get a Store bound to a
// single user id.
type CloudStore struct {
	db     *sqlx.DB
	cipher *crypto.Cipher
}

// NewCloudStore creates a cloud store. cipher encrypts the emotional summary
// at rest; a nil cipher stores plaintext.
func NewCloudStore(db *sqlx.DB, cipher *crypto.Cipher) *CloudStore {
	return &CloudStore{db: db, cipher: cipher}
}

// Scope binds the cloud store to one user's records.
func (c *CloudStore) Scope(userID string) Store {
	return &accountStore{cloud: c, userID: userID}
}

// accountStore implements Store for a single authenticated scope.
type accountStore struct {
	cloud  *CloudStore
	userID string
}

func (s *accountStore) encryptSummary(plain string) (string, error) {
	if s.cloud.cipher == nil {
		return plain, nil
	}
	return s.cloud.cipher.Encrypt(plain)
}

func (s *accountStore) decryptSummary(stored string) (string, error) {
	if s.cloud.cipher == nil {
		return stored, nil
	}
	return s.cloud.cipher.Decrypt(stored)
}

const upsertEntryQuery = `INSERT INTO mood_entries (id, user_id, primary_emotion, stress_score, emotional_summary, recommendations, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		primary_emotion = EXCLUDED.primary_emotion,
		stress_score = EXCLUDED.stress_score,
		emotional_summary = EXCLUDED.emotional_summary,
		recommendations = EXCLUDED.recommendations
	WHERE mood_entries.user_id = EXCLUDED.user_id`

// SaveEntry upserts one entry keyed by its id. Writing twice with the same
// id leaves one record with the second write's values, so retries are safe.
func (s *accountStore) SaveEntry(ctx context.Context, entry models.MoodEntry) error {
	summary, err := s.encryptSummary(entry.EmotionalSummary)
	if err != nil {
		return &PersistenceError{Op: "save entry", Scope: s.userID, Err: err}
	}
	recs, err := json.Marshal(entry.Recommendations)
	if err != nil {
		return &PersistenceError{Op: "save entry", Scope: s.userID, Err: err}
	}
	_, err = s.cloud.db.ExecContext(ctx, upsertEntryQuery,
		entry.ID, s.userID, string(entry.PrimaryEmotion), entry.StressScore, summary, recs, entry.Timestamp)
	if err != nil {
		return &PersistenceError{Op: "save entry", Scope: s.userID, Err: err}
	}
	return nil
}

// SaveEntriesBatch writes entries as one transaction. A failed batch is
// rolled back and reported; callers treat it as wholly not-applied.
func (s *accountStore) SaveEntriesBatch(ctx context.Context, entries []models.MoodEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.cloud.db.BeginTxx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "batch save", Scope: s.userID, Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertEntryQuery)
	if err != nil {
		return &PersistenceError{Op: "batch save", Scope: s.userID, Err: err}
	}
	defer stmt.Close()

	for _, entry := range entries {
		summary, err := s.encryptSummary(entry.EmotionalSummary)
		if err != nil {
			return &PersistenceError{Op: "batch save", Scope: s.userID, Err: err}
		}
		recs, err := json.Marshal(entry.Recommendations)
		if err != nil {
			return &PersistenceError{Op: "batch save", Scope: s.userID, Err: err}
		}
		if _, err := stmt.ExecContext(ctx,
			entry.ID, s.userID, string(entry.PrimaryEmotion), entry.StressScore, summary, recs, entry.Timestamp); err != nil {
			return &PersistenceError{Op: "batch save", Scope: s.userID, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "batch save", Scope: s.userID, Err: err}
	}
	return nil
}

// LoadHistory returns all entries for the scope, newest first.
func (s *accountStore) LoadHistory(ctx context.Context) ([]models.MoodEntry, error) {
	query := `SELECT id, primary_emotion, stress_score, emotional_summary, recommendations, created_at
		FROM mood_entries WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.cloud.db.QueryxContext(ctx, query, s.userID)
	if err != nil {
		return nil, &PersistenceError{Op: "load history", Scope: s.userID, Err: err}
	}
	defer rows.Close()

	entries := []models.MoodEntry{}
	for rows.Next() {
		var (
			entry   models.MoodEntry
			emotion string
			summary string
			recs    []byte
			created time.Time
		)
		if err := rows.Scan(&entry.ID, &emotion, &entry.StressScore, &summary, &recs, &created); err != nil {
			return nil, &PersistenceError{Op: "load history", Scope: s.userID, Err: err}
		}
		plain, err := s.decryptSummary(summary)
		if err != nil {
			return nil, &PersistenceError{Op: "load history", Scope: s.userID, Err: err}
		}
		entry.PrimaryEmotion = models.Emotion(emotion)
		entry.EmotionalSummary = plain
		entry.Timestamp = created
		if len(recs) > 0 {
			if err := json.Unmarshal(recs, &entry.Recommendations); err != nil {
				return nil, &PersistenceError{Op: "load history", Scope: s.userID, Err: err}
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "load history", Scope: s.userID, Err: err}
	}
	return entries, nil
}

// LoadSettings returns the scope's reminder settings, or nil if never saved.
func (s *accountStore) LoadSettings(ctx context.Context) (*models.ReminderSettings, error) {
	var (
		settings models.ReminderSettings
		lastSent sql.NullTime
	)
	query := `SELECT enabled, frequency, remind_at, last_sent FROM user_settings WHERE user_id = $1`
	err := s.cloud.db.QueryRowxContext(ctx, query, s.userID).
		Scan(&settings.Enabled, &settings.Frequency, &settings.Time, &lastSent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load settings", Scope: s.userID, Err: err}
	}
	if lastSent.Valid {
		t := lastSent.Time
		settings.LastSent = &t
	}
	return &settings, nil
}

// SaveSettings upserts the scope's settings record. The record lives in its
// own row, so nothing else on the account is touched.
func (s *accountStore) SaveSettings(ctx context.Context, settings models.ReminderSettings) error {
	var lastSent sql.NullTime
	if settings.LastSent != nil {
		lastSent = sql.NullTime{Time: *settings.LastSent, Valid: true}
	}
	query := `INSERT INTO user_settings (user_id, enabled, frequency, remind_at, last_sent, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			frequency = EXCLUDED.frequency,
			remind_at = EXCLUDED.remind_at,
			last_sent = EXCLUDED.last_sent,
			updated_at = NOW()`
	_, err := s.cloud.db.ExecContext(ctx, query,
		s.userID, settings.Enabled, settings.Frequency, settings.Time, lastSent)
	if err != nil {
		return &PersistenceError{Op: "save settings", Scope: s.userID, Err: err}
	}
	return nil
}
