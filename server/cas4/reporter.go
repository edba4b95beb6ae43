package cas4

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cas-4/mattermost-plugin-cas4/server/geofence"
	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// MyPositionTitle labels the user's own marker
const MyPositionTitle = "My position"

// PositionReporter forwards location callbacks to the telemetry endpoint on
// a distance-or-time trigger and keeps the home marker up to date.
type PositionReporter struct {
	userID          string
	session         *hazard.Session
	telemetry       hazard.Telemetry
	logger          hazard.Logger
	minDisplacement float64
	interval        time.Duration
	now             func() time.Time
	fallback        *periodicJob

	// dispatch runs a telemetry send triggered by a callback. The default runs
	// it inline with the callback context.
	dispatch func(ctx context.Context, send func(ctx context.Context))

	mu           sync.Mutex
	marker       *geofence.Marker
	region       geofence.Region
	lastReported *hazard.PositionSample
	lastReportAt time.Time
	pending      *hazard.PositionSample
}

// NewPositionReporter creates a reporter for one Mattermost user
func NewPositionReporter(
	userID string,
	session *hazard.Session,
	telemetry hazard.Telemetry,
	scheduler JobScheduler,
	minDisplacement float64,
	interval time.Duration,
	logger hazard.Logger,
) *PositionReporter {
	r := &PositionReporter{
		userID:          userID,
		session:         session,
		telemetry:       telemetry,
		logger:          logger,
		minDisplacement: minDisplacement,
		interval:        interval,
		now:             time.Now,
		dispatch:        func(ctx context.Context, send func(ctx context.Context)) { send(ctx) },
	}
	r.fallback = newPeriodicJob(scheduler, fmt.Sprintf("cas4_report_%s", userID), interval, r.flushPending)
	return r
}

// Start schedules the fallback report job
func (r *PositionReporter) Start() error {
	return r.fallback.start()
}

// Stop cancels the fallback job and drops any pending sample
func (r *PositionReporter) Stop() error {
	err := r.fallback.stop()

	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()

	return err
}

// Handle processes one location callback
func (r *PositionReporter) Handle(ctx context.Context, sample hazard.PositionSample) {
	r.mu.Lock()
	coord := sample.Coordinate()
	r.marker = &geofence.Marker{Coordinate: coord, Title: MyPositionTitle}
	if r.region.IsZero() {
		r.region = geofence.RegionAround(coord, geofence.HomeDelta)
	}

	creds := r.session.Credentials()
	if !creds.IsPresent() {
		r.mu.Unlock()
		return
	}

	if !r.shouldReportLocked(sample) {
		pending := sample
		r.pending = &pending
		r.mu.Unlock()
		return
	}
	r.pending = nil
	r.mu.Unlock()

	r.dispatch(ctx, func(ctx context.Context) {
		r.send(ctx, creds, sample)
	})
}

func (r *PositionReporter) shouldReportLocked(sample hazard.PositionSample) bool {
	if r.lastReported == nil {
		return true
	}
	return geofence.Distance(r.lastReported.Coordinate(), sample.Coordinate()) >= r.minDisplacement
}

// flushPending runs on the fallback job and sends the pending sample once
// the last report is at least one interval old.
func (r *PositionReporter) flushPending(ctx context.Context) {
	r.mu.Lock()
	if r.pending == nil || r.now().Sub(r.lastReportAt) < r.interval {
		r.mu.Unlock()
		return
	}
	sample := *r.pending
	r.pending = nil
	r.mu.Unlock()

	creds := r.session.Credentials()
	if !creds.IsPresent() {
		return
	}

	r.send(ctx, creds, sample)
}

func (r *PositionReporter) send(ctx context.Context, creds hazard.Credentials, sample hazard.PositionSample) {
	if err := r.telemetry.ReportPosition(ctx, creds, sample); err != nil {
		r.logger.Error("Error on updating position",
			"userId", r.userID,
			"error", err.Error())
		return
	}

	r.mu.Lock()
	reported := sample
	r.lastReported = &reported
	r.lastReportAt = r.now()
	r.mu.Unlock()

	r.logger.Debug("Position reported",
		"userId", r.userID,
		"movingActivity", string(sample.MovingActivity))
}

// Marker returns the user's own marker, or nil before the first callback
func (r *PositionReporter) Marker() *geofence.Marker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.marker == nil {
		return nil
	}
	m := *r.marker
	return &m
}

// Region returns the home viewport
func (r *PositionReporter) Region() geofence.Region {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.region
}

// LastReportTime returns when the last report succeeded
func (r *PositionReporter) LastReportTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastReportAt
}

// HasPending reports whether a sample waits for the fallback job
func (r *PositionReporter) HasPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}
