package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const feedDoc = `[{
	"course_id": "ics111",
	"course_prefix": "ICS",
	"course_number": "111",
	"course_title": "Introduction to Computer Science I",
	"course_desc": "An introduction to programming.",
	"num_units": "4"
}]`

// Watch is a blocking loop. Callers that also need to serve traffic must
// run it on its own goroutine; this pins down that it only returns on
// context cancellation.
func TestWatchBlocksUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	feed := filepath.Join(dir, "feed.json")
	require.NoError(t, os.WriteFile(feed, []byte(feedDoc), 0644))

	ix, err := Open(":memory:", stubEngine{}, zap.NewNop())
	require.NoError(t, err)
	defer ix.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ix.Watch(ctx, feed) }()

	select {
	case err := <-done:
		t.Fatalf("Watch returned before cancellation: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}

func TestWatchReloadsOnFeedChange(t *testing.T) {
	dir := t.TempDir()
	feed := filepath.Join(dir, "feed.json")
	require.NoError(t, os.WriteFile(feed, []byte("[]"), 0644))

	ix, err := Open(":memory:", stubEngine{}, zap.NewNop())
	require.NoError(t, err)
	defer ix.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- ix.Watch(ctx, feed) }()

	// Give the watcher time to register before the write.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(feed, []byte(feedDoc), 0644))

	deadline := time.Now().Add(5 * time.Second)
	for {
		n, err := ix.Count(ctx)
		require.NoError(t, err)
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("index not reloaded from feed, count %d", n)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	require.NoError(t, <-done)
}
