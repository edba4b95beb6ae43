package cas4

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/plugin"
	"github.com/mattermost/mattermost/server/public/pluginapi/cluster"
)

// Job represents a scheduled job that can be closed
type Job interface {
	Close() error
}

// JobScheduler is an interface for scheduling cluster-aware jobs
type JobScheduler interface {
	Schedule(
		jobID string,
		nextWaitInterval cluster.NextWaitInterval,
		callback func(),
	) (Job, error)
}

// ClusterJobScheduler is the production implementation that uses Mattermost's cluster job system
type ClusterJobScheduler struct {
	api plugin.API
}

// NewClusterJobScheduler creates a new cluster job scheduler
func NewClusterJobScheduler(api plugin.API) *ClusterJobScheduler {
	return &ClusterJobScheduler{
		api: api,
	}
}

// Schedule creates a new cluster-aware scheduled job
func (s *ClusterJobScheduler) Schedule(
	jobID string,
	nextWaitInterval cluster.NextWaitInterval,
	callback func(),
) (Job, error) {
	return cluster.Schedule(s.api, jobID, nextWaitInterval, callback)
}

// periodicJob owns one fixed-interval cluster job together with the context
// handed to every run. Stopping cancels the context before closing the job so
// that a run still in flight discards its result.
type periodicJob struct {
	scheduler JobScheduler
	jobID     string
	interval  time.Duration
	run       func(ctx context.Context)

	mu     sync.Mutex
	job    Job
	cancel context.CancelFunc
}

func newPeriodicJob(scheduler JobScheduler, jobID string, interval time.Duration, run func(ctx context.Context)) *periodicJob {
	return &periodicJob{
		scheduler: scheduler,
		jobID:     jobID,
		interval:  interval,
		run:       run,
	}
}

func (j *periodicJob) start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.job != nil {
		return fmt.Errorf("job %s already running", j.jobID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	job, err := j.scheduler.Schedule(j.jobID, j.nextWaitInterval, func() {
		if ctx.Err() != nil {
			return
		}
		j.run(ctx)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule cluster job %s: %w", j.jobID, err)
	}

	j.job = job
	j.cancel = cancel
	return nil
}

func (j *periodicJob) stop() error {
	j.mu.Lock()
	job, cancel := j.job, j.cancel
	j.job, j.cancel = nil, nil
	j.mu.Unlock()

	if job == nil {
		return nil
	}

	cancel()
	if err := job.Close(); err != nil {
		return fmt.Errorf("failed to close cluster job %s: %w", j.jobID, err)
	}
	return nil
}

func (j *periodicJob) running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.job != nil
}

// nextWaitInterval is called by the cluster job scheduler to determine how long to wait
// until the next run. The metadata.LastFinished is automatically set by the cluster scheduler.
func (j *periodicJob) nextWaitInterval(now time.Time, metadata cluster.JobMetadata) time.Duration {
	// For the first run, execute immediately
	if metadata.LastFinished.IsZero() {
		return 0
	}

	sinceLastFinished := now.Sub(metadata.LastFinished)
	if sinceLastFinished < j.interval {
		return j.interval - sinceLastFinished
	}

	return 0
}
