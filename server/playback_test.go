package main

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mattermost/mattermost/server/public/plugin/plugintest"
	"github.com/mattermost/mattermost/server/public/pluginapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestLedger(t *testing.T) (*PlaybackLedger, *time.Time) {
	t.Helper()

	api := plugintest.NewAPI(t)
	api.On("LogDebug", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	client := pluginapi.NewClient(api, &plugintest.Driver{})

	ledger := NewPlaybackLedger(client)
	t.Cleanup(ledger.Stop)

	now := time.Date(2025, time.October, 7, 9, 5, 0, 0, time.UTC)
	ledger.now = func() time.Time { return now }
	return ledger, &now
}

func TestPlaybackLedger(t *testing.T) {
	t.Run("unknown notification has not played", func(t *testing.T) {
		ledger, _ := newTestLedger(t)

		assert.False(t, ledger.Played("user-1", "12"))
	})

	t.Run("checking does not record", func(t *testing.T) {
		ledger, _ := newTestLedger(t)

		assert.False(t, ledger.Played("user-1", "12"))
		assert.False(t, ledger.Played("user-1", "12"), "a check alone must leave the warning playable")
	})

	t.Run("recorded notification has played", func(t *testing.T) {
		ledger, _ := newTestLedger(t)

		ledger.RecordPlayed("user-1", "12")

		assert.True(t, ledger.Played("user-1", "12"))
	})

	t.Run("users are kept apart", func(t *testing.T) {
		ledger, _ := newTestLedger(t)

		ledger.RecordPlayed("user-1", "12")

		assert.False(t, ledger.Played("user-2", "12"))
		assert.False(t, ledger.Played("user-1", "13"))
	})

	t.Run("entry expires after the replay window", func(t *testing.T) {
		ledger, now := newTestLedger(t)

		ledger.RecordPlayed("user-1", "12")

		*now = now.Add(PlaybackReplayWindow)
		assert.True(t, ledger.Played("user-1", "12"))

		*now = now.Add(time.Minute)
		assert.False(t, ledger.Played("user-1", "12"))
	})

	t.Run("cleanup drops only expired entries", func(t *testing.T) {
		ledger, now := newTestLedger(t)

		ledger.RecordPlayed("user-1", "old")
		*now = now.Add(PlaybackReplayWindow + time.Hour)
		ledger.RecordPlayed("user-1", "recent")

		ledger.cleanup()

		ledger.mu.Lock()
		assert.Len(t, ledger.played, 1)
		_, ok := ledger.played[playbackKey{userID: "user-1", notificationID: "recent"}]
		ledger.mu.Unlock()
		assert.True(t, ok)
	})

	t.Run("stop waits for cleanup goroutine", func(t *testing.T) {
		api := plugintest.NewAPI(t)
		ledger := NewPlaybackLedger(pluginapi.NewClient(api, &plugintest.Driver{}))

		done := make(chan struct{})
		go func() {
			ledger.Stop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.Fatal("Stop() did not complete within timeout")
		}
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		ledger, _ := newTestLedger(t)

		var wg sync.WaitGroup
		for _, userID := range []string{"user-1", "user-2"} {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					id := fmt.Sprintf("%d", i)
					if !ledger.Played(userID, id) {
						ledger.RecordPlayed(userID, id)
					}
				}
			}(userID)
		}
		wg.Wait()

		assert.True(t, ledger.Played("user-1", "99"))
		assert.True(t, ledger.Played("user-2", "0"))
	})
}
