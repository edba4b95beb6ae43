package hazard

import (
	"fmt"
	"net/url"
)

// ValidateSettings checks a defaulted configuration.
func ValidateSettings(s Settings) error {
	if err := validateURL("apiUrl", s.APIURL); err != nil {
		return err
	}
	if err := validateURL("telemetryUrl", s.TelemetryURL); err != nil {
		return err
	}
	if err := validateURL("assetsUrl", s.AssetsURL); err != nil {
		return err
	}

	if s.PollIntervalSeconds < MinPollIntervalSeconds {
		return fmt.Errorf("poll interval must be at least %d seconds (got %d)",
			MinPollIntervalSeconds, s.PollIntervalSeconds)
	}
	if s.UnseenCountIntervalSeconds < MinPollIntervalSeconds {
		return fmt.Errorf("unseen count interval must be at least %d seconds (got %d)",
			MinPollIntervalSeconds, s.UnseenCountIntervalSeconds)
	}
	if s.ReportIntervalSeconds < MinReportIntervalSeconds {
		return fmt.Errorf("report interval must be at least %d seconds (got %d)",
			MinReportIntervalSeconds, s.ReportIntervalSeconds)
	}
	if s.MinDisplacementMeters < 0 {
		return fmt.Errorf("minimum displacement cannot be negative (got %v)", s.MinDisplacementMeters)
	}
	if s.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("request timeout must be at least 1 second (got %d)", s.RequestTimeoutSeconds)
	}
	if s.BotUsername == "" {
		return fmt.Errorf("missing required field 'botUsername'")
	}

	return nil
}

// validateURL checks that the URL is absolute http(s) with a host
func validateURL(field, rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("missing required field '%s'", field)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s format: %w", field, err)
	}

	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("%s must use http or https (got %q)", field, parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%s must include a hostname", field)
	}

	return nil
}
