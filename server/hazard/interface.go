package hazard

import "context"

// Agent runs the hazard-alert pipeline for one Mattermost user.
type Agent interface {
	// Start restores the session and starts the loops when logged in.
	Start() error

	// Stop cancels every loop and releases banner and audio resources.
	Stop() error

	// GetUserID returns the Mattermost user this agent serves.
	GetUserID() string

	// GetStatus returns the current operational status.
	GetStatus() Status

	Login(ctx context.Context, email, password string) error
	Logout() error

	// ReportPosition handles one location callback from the device.
	ReportPosition(ctx context.Context, sample PositionSample)

	// ReportPermission records whether background location is allowed.
	ReportPermission(granted bool)

	ActiveNotification() *Notification

	// DismissActive disarms the escalation for the active notification.
	DismissActive()

	Notifications(ctx context.Context) ([]Notification, error)
	NotificationDetail(ctx context.Context, id string) (*NotificationDetail, error)
	Alerts(ctx context.Context) ([]Alert, error)
	AlertDetail(ctx context.Context, id string) (*AlertDetail, error)

	HomeView() HomeView
}
