package cas4

import (
	"github.com/cas-4/mattermost-plugin-cas4/server/geofence"
	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// NormalizeAlert converts a wire alert into a hazard.Alert.
// Areas are ordered innermost first. Trailing blank areas are dropped; inner
// blanks keep their position so index 0 is always the primary ring.
func NormalizeAlert(payload AlertPayload) hazard.Alert {
	alert := hazard.Alert{
		ID:           string(payload.ID),
		UserID:       string(payload.UserID),
		CreatedAt:    payload.CreatedAt.Time,
		Level:        hazard.Level(payload.Level),
		ReachedUsers: payload.ReachedUsers,
	}

	second := payload.ExtendedArea
	if second == "" {
		second = payload.AreaLevel2
	}
	areas := []string{payload.Area, second, payload.AreaLevel3}
	for len(areas) > 0 && areas[len(areas)-1] == "" {
		areas = areas[:len(areas)-1]
	}
	if len(areas) > 0 {
		alert.Areas = areas
	}

	if payload.Text1 != "" || payload.Text2 != "" || payload.Text3 != "" {
		alert.Texts = []string{payload.Text1, payload.Text2, payload.Text3}
	}

	return alert
}

// NormalizeNotification converts a wire notification into a hazard.Notification
func NormalizeNotification(payload NotificationPayload) hazard.Notification {
	n := hazard.Notification{
		ID:        string(payload.ID),
		CreatedAt: payload.CreatedAt.Time,
		Level:     hazard.Level(payload.Level),
		Seen:      payload.Seen,
	}

	if payload.Alert != nil {
		n.Alert = NormalizeAlert(*payload.Alert)
	}

	if payload.Position != nil {
		n.Position = hazard.PositionRecord{
			ID: string(payload.Position.ID),
			Coordinate: geofence.Coordinate{
				Latitude:  payload.Position.Latitude,
				Longitude: payload.Position.Longitude,
			},
			MovingActivity: hazard.MovingActivity(payload.Position.MovingActivity),
		}
	} else {
		n.Position = hazard.PositionRecord{
			Coordinate: geofence.Coordinate{
				Latitude:  payload.Latitude,
				Longitude: payload.Longitude,
			},
			MovingActivity: hazard.MovingActivity(payload.MovingActivity),
		}
	}

	return n
}

// NormalizeNotifications converts a list, keeping server order
func NormalizeNotifications(payloads []NotificationPayload) []hazard.Notification {
	notifications := make([]hazard.Notification, 0, len(payloads))
	for _, p := range payloads {
		notifications = append(notifications, NormalizeNotification(p))
	}
	return notifications
}

// NormalizeAlerts converts a list, keeping server order
func NormalizeAlerts(payloads []AlertPayload) []hazard.Alert {
	alerts := make([]hazard.Alert, 0, len(payloads))
	for _, p := range payloads {
		alerts = append(alerts, NormalizeAlert(p))
	}
	return alerts
}
