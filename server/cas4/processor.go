package cas4

import (
	"context"
	"sync"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// Escalator is the part of the escalation engine the processor drives
type Escalator interface {
	Arm(ctx context.Context, n hazard.Notification)
	Disarm()
}

// NotificationProcessor keeps the single active notification of a user
type NotificationProcessor struct {
	engine Escalator
	logger hazard.Logger

	// applyMu serializes Apply so arm and disarm calls keep poll order
	applyMu sync.Mutex

	mu      sync.RWMutex
	lastSeq uint64
	active  *hazard.Notification
}

// NewNotificationProcessor creates a processor driving engine
func NewNotificationProcessor(engine Escalator, logger hazard.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		engine: engine,
		logger: logger,
	}
}

// Apply processes the response of poll number seq. Responses that are not
// newer than the last applied one are discarded and Apply returns false.
func (p *NotificationProcessor) Apply(ctx context.Context, seq uint64, unseen []hazard.Notification) bool {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	p.mu.Lock()
	if seq <= p.lastSeq {
		p.mu.Unlock()
		p.logger.Debug("Discarding stale poll response", "seq", seq, "lastSeq", p.lastSeq)
		return false
	}
	p.lastSeq = seq

	newest, ok := selectNewest(unseen)
	if !ok {
		p.active = nil
		p.mu.Unlock()

		p.engine.Disarm()
		return true
	}

	changed := p.active == nil || p.active.ID != newest.ID
	p.active = &newest
	p.mu.Unlock()

	if changed {
		p.logger.Debug("New active notification", "notificationId", newest.ID, "level", string(newest.Level))
		p.engine.Arm(ctx, newest)
	}

	return true
}

// Active returns a copy of the active notification, or nil
func (p *NotificationProcessor) Active() *hazard.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.active == nil {
		return nil
	}
	n := *p.active
	return &n
}

// Reset forgets the active notification and disarms the engine
func (p *NotificationProcessor) Reset() {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	p.engine.Disarm()
}

// selectNewest picks the notification with the greatest CreatedAt. The first
// one in the list wins ties.
func selectNewest(list []hazard.Notification) (hazard.Notification, bool) {
	if len(list) == 0 {
		return hazard.Notification{}, false
	}

	newest := list[0]
	for _, n := range list[1:] {
		if n.CreatedAt.After(newest.CreatedAt) {
			newest = n
		}
	}
	return newest, true
}
