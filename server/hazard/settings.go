package hazard

import "time"

// Settings is the plugin-wide configuration shared by every agent.
type Settings struct {
	// APIURL is the base URL of the CAS4 server (GraphQL endpoint and assets)
	APIURL string `json:"apiUrl"`

	// TelemetryURL receives position reports
	TelemetryURL string `json:"telemetryUrl"`

	// AssetsURL hosts the audio assets, defaults to APIURL
	AssetsURL string `json:"assetsUrl"`

	PollIntervalSeconds        int     `json:"pollIntervalSeconds"`
	UnseenCountIntervalSeconds int     `json:"unseenCountIntervalSeconds"`
	ReportIntervalSeconds      int     `json:"reportIntervalSeconds"`
	MinDisplacementMeters      float64 `json:"minDisplacementMeters"`
	RequestTimeoutSeconds      int     `json:"requestTimeoutSeconds"`

	BotUsername    string `json:"botUsername"`
	BotDisplayName string `json:"botDisplayName"`
}

// WithDefaults returns a copy with every unset field filled in.
func (s Settings) WithDefaults() Settings {
	if s.AssetsURL == "" {
		s.AssetsURL = s.APIURL
	}
	if s.PollIntervalSeconds == 0 {
		s.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if s.UnseenCountIntervalSeconds == 0 {
		s.UnseenCountIntervalSeconds = DefaultPollIntervalSeconds
	}
	if s.ReportIntervalSeconds == 0 {
		s.ReportIntervalSeconds = DefaultReportIntervalSeconds
	}
	if s.MinDisplacementMeters == 0 {
		s.MinDisplacementMeters = DefaultMinDisplacementMeters
	}
	if s.RequestTimeoutSeconds == 0 {
		s.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if s.BotUsername == "" {
		s.BotUsername = DefaultBotUsername
	}
	if s.BotDisplayName == "" {
		s.BotDisplayName = DefaultBotDisplayName
	}
	return s
}

func (s Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

func (s Settings) UnseenCountInterval() time.Duration {
	return time.Duration(s.UnseenCountIntervalSeconds) * time.Second
}

func (s Settings) ReportInterval() time.Duration {
	return time.Duration(s.ReportIntervalSeconds) * time.Second
}

func (s Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}
