package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattermost/mattermost/server/public/model"

	"github.com/cas-4/mattermost-plugin-cas4/server/escalation"
	"github.com/cas-4/mattermost-plugin-cas4/server/hashtag"
	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// Level colors
const (
	ColorLevelOne   = "#27ae60" // Green 🟢
	ColorLevelTwo   = "#e67e22" // Orange 🟠
	ColorLevelThree = "#c0392b" // Red 🔴
	ColorUnknown    = "#808080" // Gray ⚪
)

// Level emojis
const (
	EmojiLevelOne   = "🟢"
	EmojiLevelTwo   = "🟠"
	EmojiLevelThree = "🔴"
	EmojiUnknown    = "⚪"
)

// maxWarningLen caps the warning copy shown in a banner
const maxWarningLen = 500

// FormatBanner converts an escalation banner into a Mattermost SlackAttachment
// colour coded by level, with the warning copy and a link to the detail view.
func FormatBanner(banner escalation.Banner) *model.SlackAttachment {
	attachment := &model.SlackAttachment{}

	if banner.DetailURL != "" {
		attachment.Text = fmt.Sprintf("#### [%s](%s)", banner.Headline, banner.DetailURL)
	} else {
		attachment.Text = fmt.Sprintf("#### %s", banner.Headline)
	}

	attachment.Color = getLevelColor(banner.Level)

	var fields []*model.SlackAttachmentField

	// 1. Warning copy for the notified level
	if banner.Text != "" {
		fields = append(fields, &model.SlackAttachmentField{
			Title: "Warning",
			Value: truncateText(banner.Text, maxWarningLen),
			Short: false,
		})
	}

	// 2. Level + moving activity (side by side)
	fields = append(fields, &model.SlackAttachmentField{
		Title: "Level",
		Value: formatLevel(banner.Level),
		Short: true,
	})

	if banner.Activity != "" {
		fields = append(fields, &model.SlackAttachmentField{
			Title: "Moving Activity",
			Value: formatActivity(banner.Activity),
			Short: true,
		})
	}

	// 3. Link to the detail view (last field)
	if banner.DetailURL != "" {
		fields = append(fields, &model.SlackAttachmentField{
			Title: "Details",
			Value: fmt.Sprintf("[%s](%s)", escalation.BannerFooter, banner.DetailURL),
			Short: false,
		})
	}

	attachment.Fields = fields

	footer := hashtag.Generate(banner.Level, banner.Activity)
	if banner.DetailURL == "" {
		footer = fmt.Sprintf("%s | %s", footer, escalation.BannerFooter)
	}
	attachment.Footer = footer

	return attachment
}

// FormatSessionPrompt renders a plain bot message, such as the session
// expired notice, as a neutral attachment.
func FormatSessionPrompt(message string) *model.SlackAttachment {
	return &model.SlackAttachment{
		Text:  message,
		Color: ColorUnknown,
	}
}

// getLevelColor returns the color code for a level
func getLevelColor(level hazard.Level) string {
	switch level {
	case hazard.LevelOne:
		return ColorLevelOne
	case hazard.LevelTwo:
		return ColorLevelTwo
	case hazard.LevelThree:
		return ColorLevelThree
	default:
		return ColorUnknown
	}
}

// getLevelEmoji returns the emoji for a level
func getLevelEmoji(level hazard.Level) string {
	switch level {
	case hazard.LevelOne:
		return EmojiLevelOne
	case hazard.LevelTwo:
		return EmojiLevelTwo
	case hazard.LevelThree:
		return EmojiLevelThree
	default:
		return EmojiUnknown
	}
}

func formatLevel(level hazard.Level) string {
	if level == "" {
		return EmojiUnknown + " Unknown"
	}
	return fmt.Sprintf("%s %s", getLevelEmoji(level), level)
}

// formatActivity turns "IN_VEHICLE" into "In vehicle"
func formatActivity(activity hazard.MovingActivity) string {
	text := strings.ToLower(strings.ReplaceAll(string(activity), "_", " "))
	if text == "" {
		return ""
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// truncateText truncates text to maxLen runes, adding "..." if truncated
func truncateText(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	runes := 0
	for i := range text {
		if runes == maxLen {
			return text[:i] + "..."
		}
		runes++
	}
	return text
}
