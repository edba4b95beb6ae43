package main

import (
	"context"
	"sync"
	"testing"

	"github.com/mattermost/mattermost/server/public/plugin/plugintest"
	"github.com/stretchr/testify/mock"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// stubAgent is a scriptable hazard.Agent
type stubAgent struct {
	userID string

	mu          sync.Mutex
	started     int
	stopped     int
	startErr    error
	loginErr    error
	listErr     error
	detailErr   error
	loggedIn    bool
	samples     []hazard.PositionSample
	permissions []bool
	dismissed   int
	active      *hazard.Notification
	lastEmail   string
	lastID      string
}

var _ hazard.Agent = (*stubAgent)(nil)

func (s *stubAgent) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	return s.startErr
}

func (s *stubAgent) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
	return nil
}

func (s *stubAgent) GetUserID() string { return s.userID }

func (s *stubAgent) GetStatus() hazard.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return hazard.Status{LoggedIn: s.loggedIn}
}

func (s *stubAgent) Login(_ context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastEmail = email
	if email == "" || password == "" {
		return hazard.ErrMissingLoginFields
	}
	if s.loginErr != nil {
		return s.loginErr
	}
	s.loggedIn = true
	return nil
}

func (s *stubAgent) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = false
	return nil
}

func (s *stubAgent) ReportPosition(_ context.Context, sample hazard.PositionSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
}

func (s *stubAgent) ReportPermission(granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions = append(s.permissions, granted)
}

func (s *stubAgent) ActiveNotification() *hazard.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *stubAgent) DismissActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed++
}

func (s *stubAgent) Notifications(context.Context) ([]hazard.Notification, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return []hazard.Notification{{ID: "1"}, {ID: "2"}}, nil
}

func (s *stubAgent) NotificationDetail(_ context.Context, id string) (*hazard.NotificationDetail, error) {
	s.mu.Lock()
	s.lastID = id
	s.mu.Unlock()
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return &hazard.NotificationDetail{Notification: hazard.Notification{ID: id}}, nil
}

func (s *stubAgent) Alerts(context.Context) ([]hazard.Alert, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return []hazard.Alert{{ID: "3"}}, nil
}

func (s *stubAgent) AlertDetail(_ context.Context, id string) (*hazard.AlertDetail, error) {
	s.mu.Lock()
	s.lastID = id
	s.mu.Unlock()
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return &hazard.AlertDetail{Alert: hazard.Alert{ID: id}}, nil
}

func (s *stubAgent) HomeView() hazard.HomeView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := hazard.HomeView{Active: s.active}
	if s.active != nil {
		view.Headline = "headline " + s.active.ID
	}
	return view
}

// allowLogs accepts any log call on api
func allowLogs(api *plugintest.API) {
	for _, level := range []string{"LogDebug", "LogInfo", "LogWarn", "LogError"} {
		for n := 1; n <= 11; n += 2 {
			args := make([]interface{}, n)
			for i := range args {
				args[i] = mock.Anything
			}
			api.On(level, args...).Maybe()
		}
	}
}

// newTestPlugin returns a plugin whose agents are stubs, created on demand
func newTestPlugin(t *testing.T) (*Plugin, *plugintest.API, map[string]*stubAgent) {
	t.Helper()

	api := &plugintest.API{}
	allowLogs(api)

	agents := make(map[string]*stubAgent)
	var mu sync.Mutex

	p := &Plugin{registry: hazard.NewRegistry()}
	p.SetAPI(api)
	p.newAgent = func(userID string) (hazard.Agent, error) {
		mu.Lock()
		defer mu.Unlock()
		agent, ok := agents[userID]
		if !ok {
			agent = &stubAgent{userID: userID}
			agents[userID] = agent
		}
		return agent, nil
	}

	return p, api, agents
}
