package hazard

// Constants for agent behavior and thresholds
const (
	// MaxConsecutiveAuthFailures is the number of consecutive rejected polls
	// after which the stored session is considered expired and cleared.
	MaxConsecutiveAuthFailures = 5

	// MinPollIntervalSeconds is the minimum allowed poll interval
	MinPollIntervalSeconds = 2

	// DefaultPollIntervalSeconds is the unseen notification poll interval
	DefaultPollIntervalSeconds = 10

	// MinReportIntervalSeconds is the minimum fallback report interval
	MinReportIntervalSeconds = 1

	// DefaultReportIntervalSeconds is the default fallback report interval
	DefaultReportIntervalSeconds = 10

	// DefaultMinDisplacementMeters is the distance that triggers an immediate report
	DefaultMinDisplacementMeters = 10.0

	// DefaultRequestTimeoutSeconds bounds every outbound request
	DefaultRequestTimeoutSeconds = 30

	DefaultBotUsername    = "cas4-alerts"
	DefaultBotDisplayName = "CAS4 Alerts"
)
