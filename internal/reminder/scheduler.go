// Package reminder decides when a check-in notification is due and fires it.
// The check is a level-triggered poll: every period it re-derives state from
// the current settings and wall clock, so a process that slept through an
// eligible window still sends (late, never early) on the next wake.
package reminder

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"mindguard/internal/models"
	"mindguard/internal/notify"
)

const (
	notificationTitle = "MindGuard Check-in"
	notificationBody  = "It's time for your mental health check-in. How are you feeling right now?"
	notificationTag   = "mindguard-checkin"
)

// Clock abstracts wall-clock time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Source owns the reminder settings for the active scope. ReminderSent is
// the only path that advances LastSent; persistence follows the scope's
// rules (cloud writes immediately, guest defers to the auto-save path).
type Source interface {
	ReminderState() models.ReminderSettings
	ReminderSent(ctx context.Context, at time.Time)
}

// PermissionSource reports whether the user granted notification permission.
type PermissionSource interface {
	Granted() bool
}

// Scheduler runs the periodic due-condition check.
type Scheduler struct {
	src   Source
	perm  PermissionSource
	sink  notify.Sink
	clock Clock
	every time.Duration
	log   *slog.Logger
}

func NewScheduler(src Source, perm PermissionSource, sink notify.Sink, every time.Duration, log *slog.Logger) *Scheduler {
	if every <= 0 {
		every = time.Minute
	}
	return &Scheduler{
		src:   src,
		perm:  perm,
		sink:  sink,
		clock: SystemClock{},
		every: every,
		log:   log,
	}
}

// Run polls until ctx is cancelled. The first check happens immediately.
func (s *Scheduler) Run(ctx context.Context) {
	s.check(ctx)
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// check evaluates the due condition once and dispatches if it holds.
// Without permission it is a pure no-op: no transition, no write.
func (s *Scheduler) check(ctx context.Context) {
	if !s.perm.Granted() {
		return
	}
	settings := s.src.ReminderState()
	now := s.clock.Now()
	if !due(settings, now) {
		return
	}
	s.sink.Notify(notify.Notification{
		Title: notificationTitle,
		Body:  notificationBody,
		Tag:   notificationTag,
		At:    now,
	})
	s.src.ReminderSent(ctx, now)
	s.log.Info("check-in reminder sent", slog.String("frequency", settings.Frequency))
}

// due reports whether a reminder should fire at now, local time.
func due(settings models.ReminderSettings, now time.Time) bool {
	if !settings.Enabled {
		return false
	}
	hour, minute, ok := parseClockTime(settings.Time)
	if !ok {
		return false
	}

	passedToday := now.Hour() > hour || (now.Hour() == hour && now.Minute() >= minute)
	if !passedToday {
		return false
	}

	if settings.LastSent == nil {
		return true
	}

	if settings.Frequency == models.FrequencyWeekly {
		// Rolling 6x24h window, not calendar-week aligned.
		return now.Sub(*settings.LastSent) > 6*24*time.Hour
	}

	// Daily: due once per local calendar date.
	last := settings.LastSent.In(now.Location())
	return last.Year() != now.Year() || last.Month() != now.Month() || last.Day() != now.Day()
}

// parseClockTime splits "HH:MM" into its components.
func parseClockTime(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
