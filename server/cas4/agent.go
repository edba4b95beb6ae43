package cas4

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattermost/mattermost/server/public/plugin"

	"github.com/cas-4/mattermost-plugin-cas4/server/escalation"
	"github.com/cas-4/mattermost-plugin-cas4/server/geofence"
	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// Messages sent to the user by the bot
const (
	SessionExpiredMessage    = "Your CAS4 session has expired. Log in again to keep receiving hazard alerts."
	PermissionDeniedMessage  = "Background location permission not granted"
	NotifiedPositionTitle    = "Notified position"
	deviceTokenNamespaceSeed = "cas4-mattermost-device"
)

var deviceTokenNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(deviceTokenNamespaceSeed))

// DeviceToken derives the push token registered for a Mattermost user. It is
// stable across logins.
func DeviceToken(mattermostUserID string) string {
	return uuid.NewSHA1(deviceTokenNamespace, []byte(mattermostUserID)).String()
}

// Messenger is the bot-side delivery surface an agent needs
type Messenger interface {
	escalation.BannerPresenter
	SoundPoster
	PostMessage(userID, message string) error
}

// Dependencies wires an agent. API is required unless Store and Scheduler are
// both set; Remote and Telemetry default to clients built from settings.
type Dependencies struct {
	API       plugin.API
	Store     hazard.CredentialStore
	Scheduler JobScheduler
	Remote    hazard.Remote
	Telemetry hazard.Telemetry
	Sounds    escalation.SoundLoader
	Messenger Messenger
	Gate      escalation.Gate

	// Location returns the user's timezone
	Location func() *time.Location

	// DetailURL links a banner to the notification detail view
	DetailURL func(notificationID string) string

	Logger hazard.Logger
}

// Agent runs the hazard-alert pipeline of one Mattermost user
type Agent struct {
	userID     string
	settings   hazard.Settings
	remote     hazard.Remote
	messenger  Messenger
	logger     hazard.Logger
	location   func() *time.Location
	session    *hazard.Session
	engine     *escalation.Engine
	processor  *NotificationProcessor
	poller     *Poller
	counter    *UnseenCounter
	reporter   *PositionReporter
	reconciler *SeenReconciler

	background sync.WaitGroup

	mu          sync.Mutex
	running     bool
	unsubscribe func()

	loopMu      sync.Mutex
	loopsActive bool
}

var _ hazard.Agent = (*Agent)(nil)

// New creates an agent for a Mattermost user
func New(mattermostUserID string, settings hazard.Settings, deps Dependencies) (*Agent, error) {
	if mattermostUserID == "" {
		return nil, fmt.Errorf("mattermost user ID is required")
	}
	if deps.Messenger == nil {
		return nil, fmt.Errorf("messenger is required")
	}
	if deps.API == nil && (deps.Store == nil || deps.Scheduler == nil) {
		return nil, fmt.Errorf("plugin API is required")
	}

	settings = settings.WithDefaults()

	logger := deps.Logger
	if logger == nil {
		logger = hazard.NopLogger{}
	}

	store := deps.Store
	if store == nil {
		store = NewStateStore(deps.API, mattermostUserID)
	}

	scheduler := deps.Scheduler
	if scheduler == nil {
		scheduler = NewClusterJobScheduler(deps.API)
	}

	remote := deps.Remote
	if remote == nil {
		remote = NewAPIClient(settings.APIURL, settings.RequestTimeout(), logger)
	}

	telemetry := deps.Telemetry
	if telemetry == nil {
		telemetry = NewTelemetryClient(settings.TelemetryURL, settings.RequestTimeout())
	}

	sounds := deps.Sounds
	if sounds == nil {
		sounds = NewAssetSoundLoader(settings.AssetsURL, settings.RequestTimeout(), mattermostUserID, deps.Messenger)
	}

	location := deps.Location
	if location == nil {
		location = func() *time.Location { return time.UTC }
	}

	a := &Agent{
		userID:    mattermostUserID,
		settings:  settings,
		remote:    remote,
		messenger: deps.Messenger,
		logger:    logger,
		location:  location,
	}

	a.session = hazard.NewSession(store, logger)
	a.engine = escalation.NewEngine(escalation.Config{
		UserID:    mattermostUserID,
		Banners:   deps.Messenger,
		Sounds:    sounds,
		Gate:      deps.Gate,
		Location:  location,
		DetailURL: deps.DetailURL,
		Logger:    logger,
	})
	a.processor = NewNotificationProcessor(a.engine, logger)
	a.poller = NewPoller(mattermostUserID, settings.PollInterval(), remote, a.session, a.processor, scheduler, a.expireSession, logger)
	a.counter = NewUnseenCounter(mattermostUserID, settings.UnseenCountInterval(), remote, a.session, scheduler, logger)
	a.reporter = NewPositionReporter(mattermostUserID, a.session, telemetry, scheduler,
		settings.MinDisplacementMeters, settings.ReportInterval(), logger)
	a.reporter.dispatch = func(_ context.Context, send func(ctx context.Context)) {
		if !a.goBackground(send) {
			a.logger.Debug("Dropping position report of a stopped agent", "userId", a.userID)
		}
	}
	a.reconciler = NewSeenReconciler(remote, logger)

	return a, nil
}

// Start restores the stored session and starts the loops when logged in
func (a *Agent) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return fmt.Errorf("agent already running")
	}

	creds := a.session.Restore()
	a.unsubscribe = a.session.Subscribe(a.onCredentials)
	a.running = true

	if creds.IsPresent() {
		if err := a.startLoops(); err != nil {
			return err
		}
	}

	a.logger.Info("CAS4 agent started", "userId", a.userID, "loggedIn", creds.IsPresent())
	return nil
}

// Stop cancels every loop and releases banner and audio resources
func (a *Agent) Stop() error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	err := a.stopLoops()
	a.engine.Teardown()
	a.background.Wait()

	a.logger.Info("CAS4 agent stopped", "userId", a.userID)
	return err
}

// goBackground runs fn on its own goroutine with a context bounded by the
// request timeout. It returns false without running fn once the agent is
// stopped.
func (a *Agent) goBackground(fn func(ctx context.Context)) bool {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return false
	}
	a.background.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.settings.RequestTimeout())
		defer cancel()
		fn(ctx)
	}()
	return true
}

// onCredentials restarts or stops the loops whenever the session changes
func (a *Agent) onCredentials(creds hazard.Credentials) {
	if err := a.stopLoops(); err != nil {
		a.logger.Warn("Failed to stop loops", "userId", a.userID, "error", err.Error())
	}

	if !creds.IsPresent() {
		a.processor.Reset()
		return
	}

	if err := a.startLoops(); err != nil {
		a.logger.Error("Failed to start loops", "userId", a.userID, "error", err.Error())
	}
}

func (a *Agent) startLoops() error {
	a.loopMu.Lock()
	defer a.loopMu.Unlock()

	if a.loopsActive {
		return nil
	}

	if err := a.poller.Start(); err != nil {
		return fmt.Errorf("failed to start poller: %w", err)
	}
	if err := a.counter.Start(); err != nil {
		_ = a.poller.Stop()
		return fmt.Errorf("failed to start unseen counter: %w", err)
	}
	if err := a.reporter.Start(); err != nil {
		_ = a.poller.Stop()
		_ = a.counter.Stop()
		return fmt.Errorf("failed to start position reporter: %w", err)
	}

	a.loopsActive = true
	return nil
}

func (a *Agent) stopLoops() error {
	a.loopMu.Lock()
	defer a.loopMu.Unlock()

	if !a.loopsActive {
		return nil
	}
	a.loopsActive = false

	var firstErr error
	for _, stop := range []func() error{a.poller.Stop, a.counter.Stop, a.reporter.Stop} {
		if err := stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// expireSession clears credentials the server no longer accepts and prompts
// the user to log in again
func (a *Agent) expireSession(userID string) error {
	if err := a.session.Clear(); err != nil {
		return err
	}

	if err := a.messenger.PostMessage(userID, SessionExpiredMessage); err != nil {
		a.logger.Warn("Failed to send session expired message", "userId", userID, "error", err.Error())
	}
	return nil
}

// GetUserID returns the Mattermost user this agent serves
func (a *Agent) GetUserID() string {
	return a.userID
}

// GetStatus returns the current operational status
func (a *Agent) GetStatus() hazard.Status {
	poll := a.poller.Status()
	return hazard.Status{
		LoggedIn:            a.session.Credentials().IsPresent(),
		Polling:             a.poller.Running(),
		LastPollTime:        poll.LastPollTime,
		LastSuccessTime:     poll.LastSuccessTime,
		ConsecutiveFailures: poll.ConsecutiveFailures,
		LastError:           poll.LastError,
		UnseenCount:         a.counter.Count(),
		LastReportTime:      a.reporter.LastReportTime(),
	}
}

// Login authenticates against the server and stores the credentials. Device
// registration afterwards is best effort.
func (a *Agent) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return hazard.ErrMissingLoginFields
	}

	creds, err := a.remote.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := a.session.Set(creds); err != nil {
		return err
	}

	if err := a.remote.RegisterDevice(ctx, creds, DeviceToken(a.userID)); err != nil {
		a.logger.Warn("Error registering this device", "userId", a.userID, "error", err.Error())
	}

	a.logger.Info("User logged in to CAS4", "userId", a.userID, "serverUserId", creds.UserID)
	return nil
}

// Logout clears the stored credentials
func (a *Agent) Logout() error {
	if err := a.session.Clear(); err != nil {
		return err
	}
	a.logger.Info("User logged out of CAS4", "userId", a.userID)
	return nil
}

// ReportPosition handles one location callback. The marker is updated before
// it returns; the telemetry send runs in the background.
func (a *Agent) ReportPosition(ctx context.Context, sample hazard.PositionSample) {
	a.reporter.Handle(ctx, sample)
}

// ReportPermission records the device's background location permission
func (a *Agent) ReportPermission(granted bool) {
	if granted {
		a.logger.Debug("Background location permission granted", "userId", a.userID)
		return
	}

	a.logger.Warn(PermissionDeniedMessage, "userId", a.userID)
	if err := a.messenger.PostMessage(a.userID, PermissionDeniedMessage); err != nil {
		a.logger.Warn("Failed to send permission message", "userId", a.userID, "error", err.Error())
	}
}

// ActiveNotification returns the most recent unseen notification, or nil
func (a *Agent) ActiveNotification() *hazard.Notification {
	return a.processor.Active()
}

// DismissActive removes the banner and stops the audio of the active
// notification. It stays active until the server reports it seen.
func (a *Agent) DismissActive() {
	a.engine.Disarm()
}

func (a *Agent) credentials() (hazard.Credentials, error) {
	creds := a.session.Credentials()
	if !creds.IsPresent() {
		return hazard.Credentials{}, hazard.ErrNotAuthenticated
	}
	return creds, nil
}

// Notifications lists every notification of the user
func (a *Agent) Notifications(ctx context.Context) ([]hazard.Notification, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}
	return a.remote.Notifications(ctx, creds)
}

// NotificationDetail fetches a notification, builds its map and marks it
// seen in the background
func (a *Agent) NotificationDetail(ctx context.Context, id string) (*hazard.NotificationDetail, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}

	n, err := a.remote.Notification(ctx, creds, id)
	if err != nil {
		return nil, err
	}

	var markers []geofence.Marker
	if pos := n.Position.Coordinate; pos.Latitude != 0 || pos.Longitude != 0 {
		markers = append(markers, geofence.Marker{Coordinate: pos, Title: NotifiedPositionTitle})
	}

	detail := &hazard.NotificationDetail{
		Notification: *n,
		Map:          geofence.BuildMapView(a.reporter.Region(), n.Alert.Rings(), markers...),
	}

	seen := *n
	if !a.goBackground(func(ctx context.Context) { a.reconciler.Reconcile(ctx, creds, seen) }) {
		a.logger.Debug("Skipping seen reconcile of a stopped agent", "userId", a.userID, "notificationId", n.ID)
	}

	return detail, nil
}

// Alerts lists the alerts visible to the user
func (a *Agent) Alerts(ctx context.Context) ([]hazard.Alert, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}
	return a.remote.Alerts(ctx, creds)
}

// AlertDetail fetches an alert and builds its map
func (a *Agent) AlertDetail(ctx context.Context, id string) (*hazard.AlertDetail, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}

	alert, err := a.remote.Alert(ctx, creds, id)
	if err != nil {
		return nil, err
	}

	return &hazard.AlertDetail{
		Alert: *alert,
		Map:   geofence.BuildMapView(a.reporter.Region(), alert.Rings()),
	}, nil
}

// HomeView returns the user's marker, viewport and active banner
func (a *Agent) HomeView() hazard.HomeView {
	view := hazard.HomeView{
		Marker: a.reporter.Marker(),
		Region: a.reporter.Region(),
	}

	if active := a.processor.Active(); active != nil {
		view.Active = active
		view.Headline = escalation.Headline(escalation.FormatCreatedAt(active.CreatedAt, a.location()))
	}

	return view
}
