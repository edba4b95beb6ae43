package cas4

import (
	"fmt"
	"strconv"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

const (
	loginMutation = `
mutation Login($input: LoginCredentials!) {
  login(input: $input) { accessToken tokenType userId }
}`

	registerDeviceMutation = `
mutation RegisterDevice($input: RegisterNotificationToken!) {
  registerDevice(input: $input) { id name email }
}`

	notificationUpdateMutation = `
mutation NotificationUpdate($input: NotificationUpdateInput!) {
  notificationUpdate(input: $input) { id seen }
}`

	unseenNotificationsQuery = `{ notifications(seen: false) { id, createdAt, level, seen, alert { id, text1 text2 text3 }, movingActivity } }`

	notificationsQuery = `{ notifications { id, seen, createdAt, level } }`

	notificationDetailQuery = `{ notifications(id: %d) {
  id,
  alert { id, userId, createdAt, area, areaLevel2, areaLevel3, text1, text2, text3, reachedUsers },
  userId, latitude, longitude, movingActivity, level, seen, createdAt
} }`

	alertsQuery = `{ alerts { id, userId, createdAt, area, level } }`

	alertDetailQuery = `{ alerts(id: %d) { id, userId, createdAt, area, areaLevel2, areaLevel3, level, text1, text2, text3, reachedUsers } }`
)

// parseID validates that id is an integer before it is placed in a query
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", hazard.ErrInvalidID, id)
	}
	return n, nil
}
