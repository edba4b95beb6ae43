package cas4

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// UnseenCounter refreshes the unseen notification count on its own job
type UnseenCounter struct {
	userID  string
	remote  hazard.Remote
	session *hazard.Session
	logger  hazard.Logger
	job     *periodicJob

	mu    sync.RWMutex
	count int
}

// NewUnseenCounter creates a counter for one Mattermost user
func NewUnseenCounter(
	userID string,
	interval time.Duration,
	remote hazard.Remote,
	session *hazard.Session,
	scheduler JobScheduler,
	logger hazard.Logger,
) *UnseenCounter {
	c := &UnseenCounter{
		userID:  userID,
		remote:  remote,
		session: session,
		logger:  logger,
	}
	c.job = newPeriodicJob(scheduler, fmt.Sprintf("cas4_unseen_%s", userID), interval, c.run)
	return c
}

// Start schedules the count job
func (c *UnseenCounter) Start() error {
	return c.job.start()
}

// Stop cancels the count job and resets the count
func (c *UnseenCounter) Stop() error {
	err := c.job.stop()

	c.mu.Lock()
	c.count = 0
	c.mu.Unlock()

	return err
}

// Count returns the last known unseen count
func (c *UnseenCounter) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

func (c *UnseenCounter) run(ctx context.Context) {
	creds := c.session.Credentials()
	if !creds.IsPresent() {
		return
	}

	unseen, err := c.remote.UnseenNotifications(ctx, creds)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.logger.Warn("Failed to refresh unseen count", "userId", c.userID, "error", err.Error())
		return
	}

	c.mu.Lock()
	c.count = len(unseen)
	c.mu.Unlock()
}
