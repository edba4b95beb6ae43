package hazard

import (
	"math"
	"time"

	"github.com/cas-4/mattermost-plugin-cas4/server/geofence"
)

// MovingActivity is the coarse classification of how fast the user moves.
type MovingActivity string

const (
	ActivityStill     MovingActivity = "STILL"
	ActivityWalking   MovingActivity = "WALKING"
	ActivityRunning   MovingActivity = "RUNNING"
	ActivityInVehicle MovingActivity = "IN_VEHICLE"
)

// Speed boundaries in metres per second.
const (
	WalkingMaxSpeed = 1.5
	RunningMaxSpeed = 5.0
)

// ClassifyActivity maps a speed in m/s to a moving activity. Devices report
// negative (or NaN) speeds when they have no estimate; those count as still.
func ClassifyActivity(speed float64) MovingActivity {
	if math.IsNaN(speed) || speed <= 0 {
		return ActivityStill
	}
	switch {
	case speed < WalkingMaxSpeed:
		return ActivityWalking
	case speed < RunningMaxSpeed:
		return ActivityRunning
	default:
		return ActivityInVehicle
	}
}

// Level is the severity of a notification as evaluated by the server.
type Level string

const (
	LevelOne   Level = "ONE"
	LevelTwo   Level = "TWO"
	LevelThree Level = "THREE"
)

// Digit returns the numeric form used to address level-specific assets.
func (l Level) Digit() (string, bool) {
	switch l {
	case LevelOne:
		return "1", true
	case LevelTwo:
		return "2", true
	case LevelThree:
		return "3", true
	default:
		return "", false
	}
}

// Credentials is the authenticated session of one user against the CAS4 server.
type Credentials struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// IsPresent reports whether both halves of the credential pair are set.
func (c Credentials) IsPresent() bool {
	return c.Token != "" && c.UserID != ""
}

// PositionSample is one location callback from the device.
type PositionSample struct {
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Speed          float64        `json:"speed"`
	MovingActivity MovingActivity `json:"movingActivity"`
	RecordedAt     time.Time      `json:"recordedAt"`
}

// NewPositionSample builds a sample and classifies it from its speed.
func NewPositionSample(latitude, longitude, speed float64, at time.Time) PositionSample {
	if math.IsNaN(speed) || speed < 0 {
		speed = 0
	}
	return PositionSample{
		Latitude:       latitude,
		Longitude:      longitude,
		Speed:          speed,
		MovingActivity: ClassifyActivity(speed),
		RecordedAt:     at,
	}
}

// Coordinate returns the sample location.
func (s PositionSample) Coordinate() geofence.Coordinate {
	return geofence.Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// PositionRecord is the server-side position a notification was raised for.
type PositionRecord struct {
	ID             string              `json:"id,omitempty"`
	Coordinate     geofence.Coordinate `json:"coordinate"`
	MovingActivity MovingActivity      `json:"movingActivity"`
}

// Alert is a hazard area published by the server.
type Alert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Level     Level     `json:"level,omitempty"`

	// Areas holds the severity rings, innermost first.
	Areas []string `json:"areas,omitempty"`

	// Texts holds the per-level warning copy: index 0 is text1.
	Texts []string `json:"texts,omitempty"`

	ReachedUsers int `json:"reachedUsers,omitempty"`
}

// TextFor selects the warning copy for the given level.
func (a Alert) TextFor(level Level) string {
	digit, ok := level.Digit()
	if !ok {
		return ""
	}
	idx := int(digit[0] - '1')
	if idx >= len(a.Texts) {
		return ""
	}
	return a.Texts[idx]
}

// Rings decodes every area of the alert.
func (a Alert) Rings() []geofence.Ring {
	return geofence.DecodeRings(a.Areas)
}

// Notification is the server's statement that the user was inside an alert area.
type Notification struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Level     Level          `json:"level"`
	Seen      bool           `json:"seen"`
	Alert     Alert          `json:"alert"`
	Position  PositionRecord `json:"position"`
}

// Text returns the warning copy matching the notification level.
func (n Notification) Text() string {
	return n.Alert.TextFor(n.Level)
}

// NotificationDetail is what the notification detail view renders.
type NotificationDetail struct {
	Notification Notification     `json:"notification"`
	Map          geofence.MapView `json:"map"`
}

// AlertDetail is what the alert detail view renders.
type AlertDetail struct {
	Alert Alert            `json:"alert"`
	Map   geofence.MapView `json:"map"`
}

// HomeView is what the home view renders.
type HomeView struct {
	Marker   *geofence.Marker `json:"marker,omitempty"`
	Region   geofence.Region  `json:"region"`
	Active   *Notification    `json:"active,omitempty"`
	Headline string           `json:"headline,omitempty"`
}

// Status represents the current operational state of one user's agent.
type Status struct {
	// LoggedIn indicates whether credentials are present
	LoggedIn bool `json:"loggedIn"`

	// Polling indicates whether the notification poller is scheduled
	Polling bool `json:"polling"`

	// LastPollTime is the timestamp of the last poll attempt
	LastPollTime time.Time `json:"lastPollTime"`

	// LastSuccessTime is the timestamp of the last successful poll
	LastSuccessTime time.Time `json:"lastSuccessTime"`

	// ConsecutiveFailures is the count of consecutive polling failures
	ConsecutiveFailures int `json:"consecutiveFailures"`

	// LastError contains the error message from the most recent failure
	LastError string `json:"lastError"`

	// UnseenCount is the last unseen notification count
	UnseenCount int `json:"unseenCount"`

	// LastReportTime is the timestamp of the last position report sent
	LastReportTime time.Time `json:"lastReportTime"`
}
