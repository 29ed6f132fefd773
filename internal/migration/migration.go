// Package migration moves guest-held data into a freshly authenticated
// account. It runs exactly once per sign-in, before the UI reflects the
// authenticated scope.
package migration

import (
	"context"
	"fmt"

	"mindguard/internal/models"
	"mindguard/internal/store"
)

// Migration stages reported by Error.
const (
	StageHistory  = "history"
	StageSettings = "settings"
)

// Error is a failed guest-to-account transfer. Guest data for the failed
// stage is left in place, so a later attempt can retry it.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("migration: %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// GuestSource is the guest side of a migration: readable, clearable storage.
// *store.GuestStore satisfies it.
type GuestSource interface {
	LoadHistory(ctx context.Context) ([]models.MoodEntry, error)
	ClearHistory(ctx context.Context) error
	LoadSettings(ctx context.Context) (*models.ReminderSettings, error)
	ClearSettings(ctx context.Context) error
}

// Run transfers guest history and settings into account. History and
// settings move independently; each is cleared from guest storage only after
// its write succeeds, which makes Run a no-op when guest storage is already
// empty and safe to retry after a failure. Settings are written last-writer-
// wins over anything already on the account.
func Run(ctx context.Context, guest GuestSource, account store.Store) error {
	history, err := guest.LoadHistory(ctx)
	if err != nil {
		return &Error{Stage: StageHistory, Err: err}
	}
	if len(history) > 0 {
		if err := account.SaveEntriesBatch(ctx, history); err != nil {
			return &Error{Stage: StageHistory, Err: err}
		}
		if err := guest.ClearHistory(ctx); err != nil {
			return &Error{Stage: StageHistory, Err: err}
		}
	}

	settings, err := guest.LoadSettings(ctx)
	if err != nil {
		return &Error{Stage: StageSettings, Err: err}
	}
	if settings != nil {
		if err := account.SaveSettings(ctx, *settings); err != nil {
			return &Error{Stage: StageSettings, Err: err}
		}
		if err := guest.ClearSettings(ctx); err != nil {
			return &Error{Stage: StageSettings, Err: err}
		}
	}

	return nil
}
