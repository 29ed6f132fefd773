// Package session binds authentication-state transitions to data loading
// and write routing. The coordinator owns all in-memory state the UI reads:
// history, reminder settings, the latest analysis result, and the SOS flag.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindguard/internal/migration"
	"mindguard/internal/models"
	"mindguard/internal/store"
)

// Analyzer classifies a check-in. Implementations never fail; inference
// errors degrade to a neutral fallback result.
type Analyzer interface {
	AnalyzeMood(ctx context.Context, text string, audio []byte, mimeType string) models.AnalysisResult
}

// AuthStream is the part of the auth provider the coordinator consumes.
type AuthStream interface {
	Updates() <-chan *models.User
	Logout(ctx context.Context) error
}

// CloudScoper hands out a Store bound to one user id.
type CloudScoper interface {
	Scope(userID string) store.Store
}

// Coordinator routes reads and writes to the active scope's backing store
// and reacts to sign-in/sign-out. Exactly one scope is active at a time:
// guest (local store) or account (cloud store keyed by user id).
type Coordinator struct {
	guest    *store.GuestStore
	cloud    CloudScoper
	auth     AuthStream
	analyzer Analyzer
	log      *slog.Logger

	mu         sync.Mutex
	user       *models.User
	history    []models.MoodEntry
	settings   models.ReminderSettings
	lastResult *models.AnalysisResult
	sosActive  bool
	loading    bool
}

func NewCoordinator(guest *store.GuestStore, cloud CloudScoper, auth AuthStream, analyzer Analyzer, log *slog.Logger) *Coordinator {
	return &Coordinator{
		guest:    guest,
		cloud:    cloud,
		auth:     auth,
		analyzer: analyzer,
		log:      log,
		settings: models.DefaultReminderSettings(),
		loading:  true,
	}
}

// Run consumes the auth provider's identity stream until ctx is cancelled.
// Every delivery, including the initial replay, triggers a full reload from
// the delivered scope.
func (c *Coordinator) Run(ctx context.Context) {
	updates := c.auth.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case user := <-updates:
			c.Reload(ctx, user)
		}
	}
}

// scopeStore returns the Store for the given identity.
func (c *Coordinator) scopeStore(user *models.User) store.Store {
	if user == nil {
		return c.guest
	}
	return c.cloud.Scope(user.ID)
}

// Reload replaces in-memory state from the scope's backing store. A load
// failure leaves prior state untouched and is logged, never fatal.
func (c *Coordinator) Reload(ctx context.Context, user *models.User) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	st := c.scopeStore(user)
	history, err := st.LoadHistory(ctx)
	if err != nil {
		c.log.Error("failed to load history", slog.Any("err", err))
		c.mu.Lock()
		c.user = user
		c.loading = false
		c.mu.Unlock()
		return
	}
	settings, err := st.LoadSettings(ctx)
	if err != nil {
		c.log.Error("failed to load settings", slog.Any("err", err))
		settings = nil
	}

	c.mu.Lock()
	c.user = user
	c.history = history
	if settings != nil {
		c.settings = *settings
	} else {
		c.settings = models.DefaultReminderSettings()
	}
	c.loading = false
	c.mu.Unlock()
}

// Analyze classifies the input, raises the SOS flag on an emergency result,
// and records the completed check-in.
func (c *Coordinator) Analyze(ctx context.Context, text string, audio []byte, mimeType string) (models.AnalysisResult, models.MoodEntry) {
	result := c.analyzer.AnalyzeMood(ctx, text, audio, mimeType)
	entry := models.MoodEntry{ID: uuid.NewString(), AnalysisResult: result}

	c.mu.Lock()
	c.lastResult = &result
	if result.Emergency() {
		c.sosActive = true
	}
	c.mu.Unlock()

	c.RecordAnalysis(ctx, entry)
	return result, entry
}

// RecordAnalysis prepends entry to the in-memory history (optimistic,
// immediate) and persists via the active scope. A persistence failure does
// not roll back the optimistic state; the entry stays visible locally.
func (c *Coordinator) RecordAnalysis(ctx context.Context, entry models.MoodEntry) {
	c.mu.Lock()
	c.history = append([]models.MoodEntry{entry}, c.history...)
	user := c.user
	c.mu.Unlock()

	if user != nil {
		if err := c.cloud.Scope(user.ID).SaveEntry(ctx, entry); err != nil {
			c.log.Error("failed to save entry to cloud", slog.Any("err", err))
		}
		return
	}
	c.guestAutoSave(ctx)
}

// UpdateSettings replaces the reminder settings for the active scope.
// LastSent is owned by the scheduler and carried over unchanged.
func (c *Coordinator) UpdateSettings(ctx context.Context, settings models.ReminderSettings) {
	c.mu.Lock()
	settings.LastSent = c.settings.LastSent
	c.settings = settings
	user := c.user
	c.mu.Unlock()

	if user != nil {
		if err := c.cloud.Scope(user.ID).SaveSettings(ctx, settings); err != nil {
			c.log.Error("failed to save settings to cloud", slog.Any("err", err))
		}
		return
	}
	c.guestAutoSave(ctx)
}

// ReminderState snapshots the active settings for the scheduler.
func (c *Coordinator) ReminderState() models.ReminderSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// ReminderSent advances LastSent after a dispatched notification. Cloud
// scopes persist immediately; guest scopes go through the auto-save path.
func (c *Coordinator) ReminderSent(ctx context.Context, at time.Time) {
	c.mu.Lock()
	if c.settings.LastSent != nil && at.Before(*c.settings.LastSent) {
		c.mu.Unlock()
		return
	}
	sent := at
	c.settings.LastSent = &sent
	settings := c.settings
	user := c.user
	c.mu.Unlock()

	if user != nil {
		if err := c.cloud.Scope(user.ID).SaveSettings(ctx, settings); err != nil {
			c.log.Error("failed to persist reminder time", slog.Any("err", err))
		}
		return
	}
	c.guestAutoSave(ctx)
}

// CompleteAuthentication migrates guest data into the account and switches
// the active scope. This is the only path from guest to account within a
// running session. On migration failure guest data stays intact and the
// error is surfaced; the scope does not switch.
func (c *Coordinator) CompleteAuthentication(ctx context.Context, user *models.User) error {
	if err := migration.Run(ctx, c.guest, c.cloud.Scope(user.ID)); err != nil {
		return err
	}
	c.Reload(ctx, user)
	return nil
}

// SignOut signs the provider out and resets to the guest scope, clearing
// transient result state.
func (c *Coordinator) SignOut(ctx context.Context) {
	if err := c.auth.Logout(ctx); err != nil {
		c.log.Error("sign out failed", slog.Any("err", err))
	}
	c.mu.Lock()
	c.lastResult = nil
	c.sosActive = false
	c.mu.Unlock()
	c.Reload(ctx, nil)
}

// guestAutoSave serializes the full current in-memory state into the guest
// store. Every guest-scope mutation triggers it unconditionally; the last
// write wins on the whole blob.
func (c *Coordinator) guestAutoSave(ctx context.Context) {
	c.mu.Lock()
	history := append([]models.MoodEntry{}, c.history...)
	settings := c.settings
	c.mu.Unlock()

	if err := c.guest.SaveHistory(ctx, history); err != nil {
		c.log.Error("guest auto-save failed", slog.Any("err", err))
	}
	if err := c.guest.SaveSettings(ctx, settings); err != nil {
		c.log.Error("guest auto-save failed", slog.Any("err", err))
	}
}

// History returns a copy of the in-memory history, newest first.
func (c *Coordinator) History() []models.MoodEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.MoodEntry{}, c.history...)
}

// CurrentUser returns the active identity, or nil in guest scope.
func (c *Coordinator) CurrentUser() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// CurrentResult returns the latest analysis result, or nil.
func (c *Coordinator) CurrentResult() *models.AnalysisResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// SOSActive reports whether the emergency display mode is raised.
func (c *Coordinator) SOSActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sosActive
}

// SetSOS lets the UI raise or dismiss the emergency display manually.
func (c *Coordinator) SetSOS(active bool) {
	c.mu.Lock()
	c.sosActive = active
	c.mu.Unlock()
}

// Loading reports whether a scope reload is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}
