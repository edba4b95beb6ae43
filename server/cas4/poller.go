package cas4

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// ExpireCallback is invoked when the server keeps rejecting the stored token
type ExpireCallback func(userID string) error

// Poller manages the cluster-aware job polling unseen notifications for one user
type Poller struct {
	userID    string
	remote    hazard.Remote
	session   *hazard.Session
	processor *NotificationProcessor
	logger    hazard.Logger
	expire    ExpireCallback
	job       *periodicJob
	seq       atomic.Uint64

	mu                  sync.RWMutex
	lastPoll            time.Time
	lastSuccess         time.Time
	consecutiveFailures int
	authFailures        int
	lastError           string
}

// NewPoller creates a new poller instance
func NewPoller(
	userID string,
	interval time.Duration,
	remote hazard.Remote,
	session *hazard.Session,
	processor *NotificationProcessor,
	scheduler JobScheduler,
	expire ExpireCallback,
	logger hazard.Logger,
) *Poller {
	p := &Poller{
		userID:    userID,
		remote:    remote,
		session:   session,
		processor: processor,
		logger:    logger,
		expire:    expire,
	}
	p.job = newPeriodicJob(scheduler, fmt.Sprintf("cas4_poll_%s", userID), interval, p.run)
	return p
}

// Start begins the polling job. Only one server instance runs it in a cluster.
func (p *Poller) Start() error {
	if err := p.job.start(); err != nil {
		return err
	}
	p.logger.Info("Poller started", "userId", p.userID, "interval", p.job.interval.String())
	return nil
}

// Stop cancels the polling job. A poll still in flight is discarded.
func (p *Poller) Stop() error {
	if !p.job.running() {
		return nil
	}
	if err := p.job.stop(); err != nil {
		p.logger.Error("Failed to close cluster job", "userId", p.userID, "error", err.Error())
		return err
	}
	p.logger.Info("Poller stopped", "userId", p.userID)
	return nil
}

// Running reports whether the job is scheduled
func (p *Poller) Running() bool {
	return p.job.running()
}

// run executes one poll cycle
func (p *Poller) run(ctx context.Context) {
	creds := p.session.Credentials()
	if !creds.IsPresent() {
		return
	}

	seq := p.seq.Add(1)

	p.mu.Lock()
	p.lastPoll = time.Now()
	p.mu.Unlock()

	unseen, err := p.remote.UnseenNotifications(ctx, creds)
	if ctx.Err() != nil {
		p.logger.Debug("Discarding poll response after stop", "userId", p.userID, "seq", seq)
		return
	}
	if err != nil {
		p.handlePollError(err)
		return
	}

	p.processor.Apply(ctx, seq, unseen)

	p.mu.Lock()
	p.lastSuccess = time.Now()
	p.consecutiveFailures = 0
	p.authFailures = 0
	p.lastError = ""
	p.mu.Unlock()

	p.logger.Debug("Poll cycle completed", "userId", p.userID, "seq", seq, "unseen", len(unseen))
}

// handlePollError records a failure and expires the session once the server
// rejected the token MaxConsecutiveAuthFailures times in a row
func (p *Poller) handlePollError(err error) {
	errMsg := err.Error()

	p.logger.Error("Fetch notifications failed",
		"userId", p.userID,
		"error", errMsg)

	p.mu.Lock()
	p.consecutiveFailures++
	p.lastError = errMsg
	if errors.Is(err, hazard.ErrUnauthorized) {
		p.authFailures++
	} else {
		p.authFailures = 0
	}
	authFailures := p.authFailures
	if authFailures >= hazard.MaxConsecutiveAuthFailures {
		p.authFailures = 0
	}
	p.mu.Unlock()

	if authFailures < hazard.MaxConsecutiveAuthFailures {
		return
	}

	p.logger.Error("Server keeps rejecting credentials, expiring session",
		"userId", p.userID,
		"consecutiveAuthFailures", authFailures)

	// Expiring clears the session, which stops this job; run it off the job goroutine
	go func() {
		if p.expire != nil {
			expireErr := p.expire(p.userID)
			if expireErr == nil {
				return
			}
			p.logger.Error("Failed to expire session",
				"userId", p.userID,
				"error", expireErr.Error())
		}

		if stopErr := p.Stop(); stopErr != nil {
			p.logger.Error("Failed to stop poller",
				"userId", p.userID,
				"error", stopErr.Error())
		}
	}()
}

// PollStatus is a snapshot of the poller's health
type PollStatus struct {
	LastPollTime        time.Time
	LastSuccessTime     time.Time
	ConsecutiveFailures int
	LastError           string
}

// Status returns the poller's health
func (p *Poller) Status() PollStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return PollStatus{
		LastPollTime:        p.lastPoll,
		LastSuccessTime:     p.lastSuccess,
		ConsecutiveFailures: p.consecutiveFailures,
		LastError:           p.lastError,
	}
}
