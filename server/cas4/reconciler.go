package cas4

import (
	"context"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// SeenReconciler flags a notification as seen the first time its detail is viewed
type SeenReconciler struct {
	remote hazard.Remote
	logger hazard.Logger
}

// NewSeenReconciler creates a reconciler using remote
func NewSeenReconciler(remote hazard.Remote, logger hazard.Logger) *SeenReconciler {
	return &SeenReconciler{
		remote: remote,
		logger: logger,
	}
}

// Reconcile issues the seen mutation when n is still unseen and reports
// whether it did. A failed mutation is logged only; the next poll shows the
// notification as unseen again.
func (r *SeenReconciler) Reconcile(ctx context.Context, creds hazard.Credentials, n hazard.Notification) bool {
	if n.Seen {
		return false
	}

	if err := r.remote.MarkSeen(ctx, creds, n.ID); err != nil {
		r.logger.Warn("Failed to mark notification as seen",
			"notificationId", n.ID,
			"error", err.Error())
	}

	return true
}
