// Package notify is the local notification sink. The UI grants or revokes
// permission and drains pending notifications over HTTP; nothing here blocks
// or retries.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Notification is one fire-and-forget system notification.
type Notification struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Tag   string    `json:"tag,omitempty"`
	At    time.Time `json:"at"`
}

// Sink accepts notifications for display.
type Sink interface {
	Notify(n Notification)
}

// Feed is an in-memory Sink gated by a permission flag. Pending
// notifications accumulate until the UI drains them.
type Feed struct {
	log *slog.Logger

	mu      sync.Mutex
	granted bool
	pending []Notification
}

func NewFeed(log *slog.Logger) *Feed {
	return &Feed{log: log}
}

// SetPermission records whether the user granted notification permission.
func (f *Feed) SetPermission(granted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.granted = granted
}

// Granted reports the current permission flag.
func (f *Feed) Granted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.granted
}

// Notify queues a notification for the UI to pick up.
func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	f.pending = append(f.pending, n)
	f.mu.Unlock()
	f.log.Info("notification dispatched", slog.String("title", n.Title), slog.String("tag", n.Tag))
}

// Drain returns and clears all pending notifications.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}
