package notify

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestFeed() *Feed {
	return NewFeed(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFeedPermission(t *testing.T) {
	f := newTestFeed()
	require.False(t, f.Granted())

	f.SetPermission(true)
	require.True(t, f.Granted())

	f.SetPermission(false)
	require.False(t, f.Granted())
}

func TestFeedQueueAndDrain(t *testing.T) {
	f := newTestFeed()
	require.Empty(t, f.Drain())

	now := time.Now()
	f.Notify(Notification{Title: "first", At: now})
	f.Notify(Notification{Title: "second", At: now.Add(time.Minute)})

	drained := f.Drain()
	require.Len(t, drained, 2)
	require.Equal(t, "first", drained[0].Title)

	// Drain clears the queue.
	require.Empty(t, f.Drain())
}
