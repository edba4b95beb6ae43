package hazard

import "context"

// Remote is the query/mutation endpoint of the CAS4 server. Every call except
// Login is authenticated with creds.
type Remote interface {
	Login(ctx context.Context, email, password string) (Credentials, error)
	RegisterDevice(ctx context.Context, creds Credentials, token string) error

	UnseenNotifications(ctx context.Context, creds Credentials) ([]Notification, error)
	Notifications(ctx context.Context, creds Credentials) ([]Notification, error)
	Notification(ctx context.Context, creds Credentials, id string) (*Notification, error)
	MarkSeen(ctx context.Context, creds Credentials, id string) error

	Alerts(ctx context.Context, creds Credentials) ([]Alert, error)
	Alert(ctx context.Context, creds Credentials, id string) (*Alert, error)
}

// Telemetry accepts position reports.
type Telemetry interface {
	ReportPosition(ctx context.Context, creds Credentials, sample PositionSample) error
}
