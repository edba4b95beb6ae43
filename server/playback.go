package main

import (
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/pluginapi"

	"github.com/cas-4/mattermost-plugin-cas4/server/escalation"
)

const (
	// PlaybackReplayWindow is how long a played audio warning is not replayed
	PlaybackReplayWindow = 24 * time.Hour

	// PlaybackCleanupInterval is how often expired playback entries are dropped
	PlaybackCleanupInterval = 10 * time.Minute
)

// playbackKey identifies the audio warning of one notification for one user.
type playbackKey struct {
	userID         string
	notificationID string
}

// PlaybackLedger records which audio warnings were actually played. It is
// shared by every agent so a restarted agent does not play the same warning
// again within PlaybackReplayWindow. Entries are written only after playback
// succeeded.
type PlaybackLedger struct {
	api *pluginapi.Client
	now func() time.Time

	mu     sync.Mutex
	played map[playbackKey]time.Time

	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

var _ escalation.Gate = (*PlaybackLedger)(nil)

// NewPlaybackLedger creates an empty ledger and starts its cleanup loop
func NewPlaybackLedger(api *pluginapi.Client) *PlaybackLedger {
	l := &PlaybackLedger{
		api:         api,
		now:         time.Now,
		played:      make(map[playbackKey]time.Time),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Played reports whether the warning of notificationID was played for userID
// within the replay window.
func (l *PlaybackLedger) Played(userID, notificationID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	playedAt, ok := l.played[playbackKey{userID: userID, notificationID: notificationID}]
	if !ok {
		return false
	}
	return l.now().Sub(playedAt) <= PlaybackReplayWindow
}

// RecordPlayed stamps the warning of notificationID as played for userID.
func (l *PlaybackLedger) RecordPlayed(userID, notificationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.played[playbackKey{userID: userID, notificationID: notificationID}] = l.now()
}

func (l *PlaybackLedger) cleanupLoop() {
	ticker := time.NewTicker(PlaybackCleanupInterval)
	defer ticker.Stop()
	defer close(l.cleanupDone)

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanup drops entries that fell out of the replay window
func (l *PlaybackLedger) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	expired := 0
	for key, playedAt := range l.played {
		if now.Sub(playedAt) > PlaybackReplayWindow {
			delete(l.played, key)
			expired++
		}
	}

	if expired > 0 {
		l.api.Log.Debug("Dropped expired audio playback entries",
			"expired", expired,
			"remaining", len(l.played))
	}
}

// Stop stops the cleanup goroutine and waits for it to finish
func (l *PlaybackLedger) Stop() {
	close(l.stopCleanup)
	<-l.cleanupDone
}
