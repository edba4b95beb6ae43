package cas4

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/pluginapi/cluster"

	"github.com/cas-4/mattermost-plugin-cas4/server/escalation"
	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// fakeScheduler records scheduled jobs so tests can fire them by hand
type fakeScheduler struct {
	mu          sync.Mutex
	jobs        map[string]*fakeJob
	scheduleErr error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: make(map[string]*fakeJob)}
}

func (s *fakeScheduler) Schedule(jobID string, next cluster.NextWaitInterval, callback func()) (Job, error) {
	if s.scheduleErr != nil {
		return nil, s.scheduleErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &fakeJob{id: jobID, next: next, callback: callback}
	s.jobs[jobID] = job
	return job, nil
}

// fire runs the job callback once and reports whether an open job existed
func (s *fakeScheduler) fire(jobID string) bool {
	s.mu.Lock()
	job := s.jobs[jobID]
	s.mu.Unlock()

	if job == nil || job.isClosed() {
		return false
	}
	job.callback()
	return true
}

func (s *fakeScheduler) job(jobID string) *fakeJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[jobID]
}

func (s *fakeScheduler) open() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, job := range s.jobs {
		if !job.isClosed() {
			ids = append(ids, id)
		}
	}
	return ids
}

type fakeJob struct {
	id       string
	next     cluster.NextWaitInterval
	callback func()

	mu     sync.Mutex
	closed bool
}

func (j *fakeJob) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}

func (j *fakeJob) isClosed() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closed
}

// memoryStore is an in-memory hazard.CredentialStore
type memoryStore struct {
	mu    sync.Mutex
	creds hazard.Credentials
}

func (m *memoryStore) Save(creds hazard.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	return nil
}

func (m *memoryStore) Load() (hazard.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = hazard.Credentials{}
	return nil
}

// fakeMessenger records everything the bot would have posted
type fakeMessenger struct {
	mu       sync.Mutex
	banners  []escalation.Banner
	cleared  []string
	sounds   []string
	deleted  []string
	messages []string
}

func (f *fakeMessenger) ShowBanner(_ string, banner escalation.Banner) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banners = append(f.banners, banner)
	return fmt.Sprintf("banner-%d", len(f.banners)), nil
}

func (f *fakeMessenger) ClearBanner(handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, handle)
	return nil
}

func (f *fakeMessenger) PostSound(_ string, fileName string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sounds = append(f.sounds, fileName)
	return fmt.Sprintf("sound-%d", len(f.sounds)), nil
}

func (f *fakeMessenger) DeletePost(postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, postID)
	return nil
}

func (f *fakeMessenger) PostMessage(_ string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeMessenger) bannerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.banners)
}

func (f *fakeMessenger) sentMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

// recordingEscalator counts arm and disarm calls
type recordingEscalator struct {
	mu       sync.Mutex
	armed    []string
	disarmed int
}

func (r *recordingEscalator) Arm(_ context.Context, n hazard.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = append(r.armed, n.ID)
}

func (r *recordingEscalator) Disarm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disarmed++
}

func unseenAt(id string, createdAt int64) hazard.Notification {
	return hazard.Notification{
		ID:        id,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
		Level:     hazard.LevelOne,
		Alert:     hazard.Alert{ID: "a" + id, Texts: []string{"t1", "t2", "t3"}},
	}
}

var testCreds = hazard.Credentials{Token: "token-abc", UserID: "7"}
