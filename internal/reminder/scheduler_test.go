package reminder

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mindguard/internal/models"
	"mindguard/internal/notify"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeSource struct {
	settings models.ReminderSettings
	sentAt   []time.Time
}

func (f *fakeSource) ReminderState() models.ReminderSettings { return f.settings }

func (f *fakeSource) ReminderSent(ctx context.Context, at time.Time) {
	f.sentAt = append(f.sentAt, at)
	f.settings.LastSent = &at
}

type fakePermission struct{ granted bool }

func (f fakePermission) Granted() bool { return f.granted }

type captureSink struct{ sent []notify.Notification }

func (c *captureSink) Notify(n notify.Notification) { c.sent = append(c.sent, n) }

func at(day, hour, min int) time.Time {
	return time.Date(2026, 3, day, hour, min, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestDue(t *testing.T) {
	tests := []struct {
		name     string
		settings models.ReminderSettings
		now      time.Time
		want     bool
	}{
		{
			name:     "disabled never fires",
			settings: models.ReminderSettings{Enabled: false, Frequency: models.FrequencyDaily, Time: "09:00"},
			now:      at(10, 12, 0),
			want:     false,
		},
		{
			name:     "before scheduled time today",
			settings: models.ReminderSettings{Enabled: true, Frequency: models.FrequencyDaily, Time: "09:00"},
			now:      at(10, 8, 59),
			want:     false,
		},
		{
			name:     "exact scheduled minute with no prior send",
			settings: models.ReminderSettings{Enabled: true, Frequency: models.FrequencyDaily, Time: "09:00"},
			now:      at(10, 9, 0),
			want:     true,
		},
		{
			name: "daily sent yesterday fires today",
			settings: models.ReminderSettings{
				Enabled: true, Frequency: models.FrequencyDaily, Time: "09:00",
				LastSent: ptr(at(9, 9, 5)),
			},
			now:  at(10, 9, 1),
			want: true,
		},
		{
			name: "daily already sent today",
			settings: models.ReminderSettings{
				Enabled: true, Frequency: models.FrequencyDaily, Time: "09:00",
				LastSent: ptr(at(10, 9, 0)),
			},
			now:  at(10, 9, 30),
			want: false,
		},
		{
			name: "weekly inside the window",
			settings: models.ReminderSettings{
				Enabled: true, Frequency: models.FrequencyWeekly, Time: "09:00",
				LastSent: ptr(at(10, 10, 0).Add(-(5*24 + 23) * time.Hour)),
			},
			now:  at(10, 10, 0),
			want: false,
		},
		{
			name: "weekly past the window",
			settings: models.ReminderSettings{
				Enabled: true, Frequency: models.FrequencyWeekly, Time: "09:00",
				LastSent: ptr(at(10, 10, 0).Add(-(6*24 + 1) * time.Hour)),
			},
			now:  at(10, 10, 0),
			want: true,
		},
		{
			name: "weekly past the window but before scheduled time",
			settings: models.ReminderSettings{
				Enabled: true, Frequency: models.FrequencyWeekly, Time: "09:00",
				LastSent: ptr(at(1, 9, 0)),
			},
			now:  at(10, 8, 30),
			want: false,
		},
		{
			name:     "malformed time never fires",
			settings: models.ReminderSettings{Enabled: true, Frequency: models.FrequencyDaily, Time: "9am"},
			now:      at(10, 12, 0),
			want:     false,
		},
		{
			name:     "out of range hour never fires",
			settings: models.ReminderSettings{Enabled: true, Frequency: models.FrequencyDaily, Time: "25:00"},
			now:      at(10, 12, 0),
			want:     false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, due(tc.settings, tc.now))
		})
	}
}

func newTestScheduler(src *fakeSource, perm fakePermission, sink *captureSink, now time.Time) *Scheduler {
	s := NewScheduler(src, perm, sink, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.clock = fixedClock{now: now}
	return s
}

func TestCheckFiresAndMarksSent(t *testing.T) {
	src := &fakeSource{settings: models.ReminderSettings{Enabled: true, Frequency: models.FrequencyDaily, Time: "09:00"}}
	sink := &captureSink{}
	now := at(10, 9, 1)

	s := newTestScheduler(src, fakePermission{granted: true}, sink, now)
	s.check(context.Background())

	require.Len(t, sink.sent, 1)
	require.Equal(t, "MindGuard Check-in", sink.sent[0].Title)
	require.Equal(t, "mindguard-checkin", sink.sent[0].Tag)
	require.True(t, sink.sent[0].At.Equal(now))
	require.Len(t, src.sentAt, 1)
	require.True(t, src.sentAt[0].Equal(now))

	// Second poll in the same window is a no-op.
	s.check(context.Background())
	require.Len(t, sink.sent, 1)
}

func TestCheckWithoutPermissionIsNoop(t *testing.T) {
	src := &fakeSource{settings: models.ReminderSettings{Enabled: true, Frequency: models.FrequencyDaily, Time: "09:00"}}
	sink := &captureSink{}

	s := newTestScheduler(src, fakePermission{granted: false}, sink, at(10, 9, 1))
	s.check(context.Background())

	require.Empty(t, sink.sent)
	require.Empty(t, src.sentAt)
	require.Nil(t, src.settings.LastSent)
}

func TestCheckNotDueIsNoop(t *testing.T) {
	src := &fakeSource{settings: models.ReminderSettings{Enabled: true, Frequency: models.FrequencyDaily, Time: "21:00"}}
	sink := &captureSink{}

	s := newTestScheduler(src, fakePermission{granted: true}, sink, at(10, 9, 0))
	s.check(context.Background())

	require.Empty(t, sink.sent)
	require.Empty(t, src.sentAt)
}
