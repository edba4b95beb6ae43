package escalation

import (
	"fmt"
	"time"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// BannerFooter is the call to action shown under every banner.
const BannerFooter = "Click this banner to know more!"

// Banner is the visual half of an escalation.
type Banner struct {
	NotificationID string
	AlertID        string
	Level          hazard.Level
	Activity       hazard.MovingActivity
	Text           string
	CreatedAt      string
	Headline       string
	DetailURL      string
}

// NewBanner renders the banner for n. Times are shown in loc, UTC when nil.
func NewBanner(n hazard.Notification, loc *time.Location, detailURL string) Banner {
	createdAt := FormatCreatedAt(n.CreatedAt, loc)
	return Banner{
		NotificationID: n.ID,
		AlertID:        n.Alert.ID,
		Level:          n.Level,
		Activity:       n.Position.MovingActivity,
		Text:           n.Text(),
		CreatedAt:      createdAt,
		Headline:       Headline(createdAt),
		DetailURL:      detailURL,
	}
}

// Headline is the first line of the banner.
func Headline(createdAt string) string {
	return fmt.Sprintf("Oh no, you are (or have been) in an alerted area in %s!", createdAt)
}

// FormatCreatedAt renders t as "Tue Oct 07 2025 9:05": weekday, month, day and
// year, then the hour unpadded and the minute zero-padded.
func FormatCreatedAt(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return local.Format("Mon Jan 02 2006") + fmt.Sprintf(" %d:%02d", local.Hour(), local.Minute())
}

// AssetName addresses the audio cue of an alert at a level.
func AssetName(alertID, levelDigit string) string {
	return fmt.Sprintf("alert-%s-text-%s", alertID, levelDigit)
}
