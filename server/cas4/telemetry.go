package cas4

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// TelemetryClient posts position samples to the alert daemon
type TelemetryClient struct {
	http *resty.Client
	url  string
}

var _ hazard.Telemetry = (*TelemetryClient)(nil)

// NewTelemetryClient creates a client posting to url
func NewTelemetryClient(url string, timeout time.Duration) *TelemetryClient {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &TelemetryClient{
		http: client,
		url:  url,
	}
}

// ReportPosition sends one sample. Anything but HTTP 200 is an error that
// carries the response body.
func (c *TelemetryClient) ReportPosition(ctx context.Context, creds hazard.Credentials, sample hazard.PositionSample) error {
	body := TelemetryRequest{
		Latitude:       sample.Latitude,
		Longitude:      sample.Longitude,
		Login:          creds.Token,
		UID:            creds.UserID,
		MovingActivity: string(sample.MovingActivity),
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("position report failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("position report rejected (HTTP %d): %s",
			resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}

	return nil
}
