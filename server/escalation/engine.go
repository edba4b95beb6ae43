package escalation

import (
	"context"
	"sync"
	"time"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// BannerPresenter shows and removes banners for a user.
type BannerPresenter interface {
	ShowBanner(userID string, banner Banner) (string, error)
	ClearBanner(handle string) error
}

// Sound is a loaded audio cue.
type Sound interface {
	Play(ctx context.Context) error
	Release() error
}

// SoundLoader fetches audio cues by asset name.
type SoundLoader interface {
	Load(ctx context.Context, name string) (Sound, error)
}

// Gate remembers which notifications already played their audio. Played is
// checked before loading, RecordPlayed is called only once playback succeeded.
type Gate interface {
	Played(userID, notificationID string) bool
	RecordPlayed(userID, notificationID string)
}

// State of the engine
type State int

const (
	Idle State = iota
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

// Config holds the collaborators of an Engine.
type Config struct {
	UserID  string
	Banners BannerPresenter
	Sounds  SoundLoader

	// Gate is optional
	Gate Gate

	// Location returns the user's timezone, UTC when nil
	Location func() *time.Location

	// DetailURL returns the link of a notification, optional
	DetailURL func(notificationID string) string

	Logger hazard.Logger
}

// Engine turns the active notification into a banner and, for users in a
// vehicle, an audio cue. At most one banner and one sound are held at a time.
type Engine struct {
	cfg Config

	mu           sync.Mutex
	state        State
	current      *hazard.Notification
	bannerHandle string
	sound        Sound
}

// NewEngine creates an idle engine
func NewEngine(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = hazard.NopLogger{}
	}
	return &Engine{cfg: cfg}
}

// Arm escalates n. Arming the notification that is already armed does nothing.
func (e *Engine) Arm(ctx context.Context, n hazard.Notification) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Armed && e.current != nil && e.current.ID == n.ID {
		return
	}

	e.releaseLocked()

	e.state = Armed
	armed := n
	e.current = &armed

	e.showBannerLocked(n)
	e.playLocked(ctx, n)
}

func (e *Engine) showBannerLocked(n hazard.Notification) {
	if e.cfg.Banners == nil {
		return
	}

	var loc *time.Location
	if e.cfg.Location != nil {
		loc = e.cfg.Location()
	}
	detailURL := ""
	if e.cfg.DetailURL != nil {
		detailURL = e.cfg.DetailURL(n.ID)
	}

	handle, err := e.cfg.Banners.ShowBanner(e.cfg.UserID, NewBanner(n, loc, detailURL))
	if err != nil {
		e.cfg.Logger.Error("Failed to show banner",
			"userId", e.cfg.UserID,
			"notificationId", n.ID,
			"error", err.Error())
		return
	}
	e.bannerHandle = handle
}

func (e *Engine) playLocked(ctx context.Context, n hazard.Notification) {
	if n.Position.MovingActivity != hazard.ActivityInVehicle {
		return
	}

	digit, ok := n.Level.Digit()
	if !ok {
		return
	}

	if e.cfg.Sounds == nil {
		return
	}

	if e.cfg.Gate != nil && e.cfg.Gate.Played(e.cfg.UserID, n.ID) {
		e.cfg.Logger.Debug("Skipping audio already played for notification",
			"userId", e.cfg.UserID,
			"notificationId", n.ID)
		return
	}

	name := AssetName(n.Alert.ID, digit)
	sound, err := e.cfg.Sounds.Load(ctx, name)
	if err != nil {
		e.cfg.Logger.Error("Failed to load alert sound",
			"userId", e.cfg.UserID,
			"asset", name,
			"error", err.Error())
		return
	}
	e.sound = sound

	if err := sound.Play(ctx); err != nil {
		e.cfg.Logger.Error("Failed to play alert sound",
			"userId", e.cfg.UserID,
			"asset", name,
			"error", err.Error())
		return
	}

	if e.cfg.Gate != nil {
		e.cfg.Gate.RecordPlayed(e.cfg.UserID, n.ID)
	}
}

// Disarm removes the banner and releases the sound.
func (e *Engine) Disarm() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.releaseLocked()
	e.state = Idle
	e.current = nil
}

// Teardown releases every resource. It is safe to call more than once.
func (e *Engine) Teardown() {
	e.Disarm()
}

func (e *Engine) releaseLocked() {
	if e.sound != nil {
		if err := e.sound.Release(); err != nil {
			e.cfg.Logger.Warn("Failed to release alert sound", "userId", e.cfg.UserID, "error", err.Error())
		}
		e.sound = nil
	}

	if e.bannerHandle != "" && e.cfg.Banners != nil {
		if err := e.cfg.Banners.ClearBanner(e.bannerHandle); err != nil {
			e.cfg.Logger.Warn("Failed to clear banner", "userId", e.cfg.UserID, "error", err.Error())
		}
	}
	e.bannerHandle = ""
}

// State returns the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Current returns a copy of the armed notification, or nil when idle
func (e *Engine) Current() *hazard.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	n := *e.current
	return &n
}
