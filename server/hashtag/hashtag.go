package hashtag

import (
	"strings"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// Generate creates formatted hashtag text for a notification.
//
// Order of hashtags:
// 1. Severity level (#LevelOne, #LevelTwo, #LevelThree)
// 2. Moving activity at the time of the notification (#Still, #InVehicle, ...)
//
// Returns formatted string (e.g., "🏷️ #LevelTwo, #InVehicle")
func Generate(level hazard.Level, activity hazard.MovingActivity) string {
	var allTags []string

	// 1. Level (always first)
	allTags = append(allTags, extractLevelTag(level))

	// 2. Activity, when known
	if tag := extractActivityTag(activity); tag != "" {
		allTags = append(allTags, tag)
	}

	return formatHashtagText(deduplicateTags(allTags))
}

// extractLevelTag turns a level such as "TWO" into "#LevelTwo".
func extractLevelTag(level hazard.Level) string {
	clean := strings.TrimSpace(string(level))
	if clean == "" {
		return "#Alert"
	}
	return "#Level" + camelCase(strings.ToLower(clean))
}

// extractActivityTag turns an activity such as "IN_VEHICLE" into "#InVehicle".
func extractActivityTag(activity hazard.MovingActivity) string {
	words := strings.ToLower(strings.ReplaceAll(string(activity), "_", " "))
	tag := camelCase(words)
	if tag == "" {
		return ""
	}
	return "#" + tag
}

// deduplicateTags removes duplicate tags (case-insensitive) while preserving order.
func deduplicateTags(tags []string) []string {
	seen := make(map[string]bool)
	var uniqueTags []string

	for _, tag := range tags {
		tagLower := strings.ToLower(tag)
		if !seen[tagLower] {
			uniqueTags = append(uniqueTags, tag)
			seen[tagLower] = true
		}
	}

	return uniqueTags
}

// formatHashtagText formats hashtags as comma-separated text with emoji prefix.
func formatHashtagText(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	return "🏷️ " + strings.Join(tags, ", ")
}

// camelCase converts text to CamelCase by capitalizing first letter of each word
// and removing spaces.
func camelCase(text string) string {
	words := strings.Fields(text)
	var result strings.Builder

	for _, word := range words {
		if len(word) > 0 {
			result.WriteString(strings.ToUpper(word[:1]))
			if len(word) > 1 {
				result.WriteString(word[1:])
			}
		}
	}

	return result.String()
}
